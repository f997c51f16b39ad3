// Package config implements C2, the machine descriptor: per-axis travel,
// steps-per-mm, acceleration and velocity limits, and the mm<->step and
// axis-projected-limit conversions every other component calls into.
package config

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/itohio/cncmotion/pkg/cnc/vec"
	"github.com/itohio/cncmotion/pkg/logger"
)

// ErrInvalidConfig indicates a Config field violates its invariant (must
// be a positive value) at construction time.
var ErrInvalidConfig = errors.New("cnc/config: invalid configuration")

// Config is the immutable machine descriptor (C2's CNCConfig). It is
// mutated only at construction; every method is a pure read.
type Config struct {
	XMaxTravel, YMaxTravel, ZMaxTravel float32 // mm
	AMaxTravel, BMaxTravel             float32 // degrees, rotary travel limits

	XStepsPerMM, YStepsPerMM, ZStepsPerMM float32

	MinimumJunctionSpeed float32 // mm/min
	MinimumFeedRate      float32 // mm/min
	JunctionDeviation    float32 // mm

	XMaxRate, YMaxRate, ZMaxRate                float32 // mm/min
	XAcceleration, YAcceleration, ZAcceleration float32 // mm/min^2

	HomingFeedRate float32 // mm/min
	HomingSeekRate float32 // mm/min

	RapidOverride float32 // 1.0 == 100%
}

// Default returns the machine-sane defaults for every field, the single
// place the "config duplication" design note resolves its Open Question
// in favor of: a plain struct and one Default, not a parallel module of
// package-level consts.
func Default() Config {
	return Config{
		XMaxTravel: 400.0,
		YMaxTravel: 300.0,
		ZMaxTravel: 500.0,
		AMaxTravel: 360.0,
		BMaxTravel: 360.0,

		XStepsPerMM: 10,
		YStepsPerMM: 10,
		ZStepsPerMM: 10,

		MinimumJunctionSpeed: 0.0,
		MinimumFeedRate:      1.0,
		JunctionDeviation:    0.01,

		XMaxRate: 500.0,
		YMaxRate: 500.0,
		ZMaxRate: 500.0,

		XAcceleration: 10.0 * 60 * 60,
		YAcceleration: 10.0 * 60 * 60,
		ZAcceleration: 10.0 * 60 * 60,

		HomingFeedRate: 50.0,
		HomingSeekRate: 500.0,

		RapidOverride: 1.0,
	}
}

// New validates cfg and returns it wrapped in an immutable *Config.
func New(cfg Config) (*Config, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	c := cfg
	logger.Log.Debug().
		Float64("x_steps_per_mm", float64(c.XStepsPerMM)).
		Float64("y_steps_per_mm", float64(c.YStepsPerMM)).
		Float64("z_steps_per_mm", float64(c.ZStepsPerMM)).
		Msg("cnc config constructed")
	return &c, nil
}

func validate(c Config) error {
	positive := []float32{
		c.XMaxTravel, c.YMaxTravel, c.ZMaxTravel,
		c.XStepsPerMM, c.YStepsPerMM, c.ZStepsPerMM,
		c.MinimumFeedRate,
		c.XMaxRate, c.YMaxRate, c.ZMaxRate,
		c.XAcceleration, c.YAcceleration, c.ZAcceleration,
		c.HomingFeedRate, c.HomingSeekRate,
		c.RapidOverride,
	}
	for _, v := range positive {
		if v <= 0 {
			return fmt.Errorf("%w: all travel/rate/acceleration/steps-per-mm fields must be positive", ErrInvalidConfig)
		}
	}
	if c.MinimumJunctionSpeed < 0 || c.JunctionDeviation < 0 {
		return fmt.Errorf("%w: minimum junction speed and junction deviation must be non-negative", ErrInvalidConfig)
	}
	return nil
}

// StepPosToMMPos converts a step-grid position expressed in plane's frame
// to a millimeter position in the same frame.
func (c *Config) StepPosToMMPos(orig vec.Step3, plane vec.CanonPlane) vec.Vec3 {
	d := plane.ToPlaneStep(orig, vec.PlaneXY)
	dest := vec.NewVec3(
		float32(d.X)/c.XStepsPerMM,
		float32(d.Y)/c.YStepsPerMM,
		float32(d.Z)/c.ZStepsPerMM,
	)
	if plane == vec.PlaneXY {
		return dest
	}
	return vec.PlaneXY.ToPlane(dest, plane)
}

// MMPosToStepPos converts a millimeter position expressed in plane's
// frame to the nearest step-grid position in the same frame, rounding to
// the nearest integer step.
func (c *Config) MMPosToStepPos(orig vec.Vec3, plane vec.CanonPlane) vec.Step3 {
	d := plane.ToPlane(orig, vec.PlaneXY)
	dest := vec.NewStep3(
		roundToInt32(d.X*c.XStepsPerMM),
		roundToInt32(d.Y*c.YStepsPerMM),
		roundToInt32(d.Z*c.ZStepsPerMM),
	)
	if plane == vec.PlaneXY {
		return dest
	}
	return vec.PlaneXY.ToPlaneStep(dest, plane)
}

// MMToSteps converts a scalar distance or velocity expressed in mm along
// unitVec (in plane's frame) to the equivalent magnitude expressed in
// steps. unitVec must be a unit vector: MMToSteps panics (mirroring the
// original's `assert!`) if ‖unitVec‖ strays 1e-5 or more from 1.
func (c *Config) MMToSteps(unitVec vec.Vec3, plane vec.CanonPlane, mm float32) float32 {
	if d := unitVec.Magnitude() - 1; math32.Abs(d) >= 1e-5 {
		panic(fmt.Sprintf("cnc/config: MMToSteps requires a unit vector, got magnitude %v", unitVec.Magnitude()))
	}
	if mm == 0 {
		return 0
	}

	scaled := unitVec.MulC(mm)
	steps := c.MMPosToStepPos(scaled, plane)

	// Rescale to unit-meter range before squaring to avoid overflow on
	// large step counts, then scale the resulting magnitude back.
	a := float32(steps.X) / 1000
	b := float32(steps.Y) / 1000
	d := float32(steps.Z) / 1000
	length := math32.Sqrt(a*a + b*b + d*d)
	return length * 1000
}

// GetValidVelocity clamps rate to the applicable rapid rate ceiling and
// the configured minimum feed rate floor.
func (c *Config) GetValidVelocity(rate, rapidRate float32) float32 {
	nominal := math32.Min(rate, rapidRate)
	return math32.Max(nominal, c.MinimumFeedRate)
}

// GetMaxVelocity returns the maximum velocity achievable along dir, the
// per-direction axis-projected limit described in §9 of the design
// notes: dir need not be normalized, only its sign per axis matters for
// identifying unconstrained axes.
func (c *Config) GetMaxVelocity(dir vec.Vec3) float32 {
	u := dir.Unit()
	return limitByAxis(c.XMaxRate, c.YMaxRate, c.ZMaxRate, u)
}

// GetMaxAcceleration is GetMaxVelocity's acceleration counterpart.
func (c *Config) GetMaxAcceleration(dir vec.Vec3) float32 {
	u := dir.Unit()
	return limitByAxis(c.XAcceleration, c.YAcceleration, c.ZAcceleration, u)
}

// limitByAxis turns three per-axis maxima into a single direction-
// dependent limit: for each axis with a nonzero unit-vector component,
// limit_axis / |component|; zero-component axes are unconstrained.
// The result is the minimum across axes.
func limitByAxis(maxX, maxY, maxZ float32, unit vec.Vec3) float32 {
	axisLimit := func(maxV, component float32) float32 {
		if component == 0 {
			return math32.MaxFloat32
		}
		return math32.Abs(maxV / component)
	}
	x := axisLimit(maxX, unit.X)
	y := axisLimit(maxY, unit.Y)
	z := axisLimit(maxZ, unit.Z)
	return math32.Min(x, math32.Min(y, z))
}

// CalcMaxJunctionSpeedSqr computes the maximum allowable entry speed
// squared at the junction between prevUnit and unit, by the centripetal-
// acceleration approximation (C8, §4.6).
func (c *Config) CalcMaxJunctionSpeedSqr(prevUnit, unit vec.Vec3) float32 {
	cosTheta := -prevUnit.Dot(unit)
	if cosTheta > 0.999999 {
		return c.MinimumJunctionSpeed * c.MinimumJunctionSpeed
	}
	if cosTheta < -0.999999 {
		return math32.MaxFloat32
	}

	junctionUnit := unit.Sub(prevUnit).Unit()
	junctionAcceleration := c.GetMaxAcceleration(junctionUnit)

	sinThetaD2 := math32.Sqrt(0.5 * (1 - cosTheta))

	minSqr := c.MinimumJunctionSpeed * c.MinimumJunctionSpeed
	velocitySqr := (junctionAcceleration * c.JunctionDeviation * sinThetaD2) / (1 - sinThetaD2)

	return math32.Max(minSqr, velocitySqr)
}

// GetNominalSpeed returns the feed after overrides, clamped to the
// applicable rapid rate and the configured minimum feed rate.
//
// NOTE: this reproduces the original upstream behaviour verbatim,
// including an apparent double-application of RapidOverride in the
// non-override branch when isRapidMotion is false and isNoFeedOverride
// is also false — see the Open Questions in SPEC_FULL.md. Do not "fix"
// this without confirming intended semantics against the source
// controller.
func (c *Config) GetNominalSpeed(rapidRate, programmedRate float32, isRapidMotion, isNoFeedOverride bool) float32 {
	nominal := programmedRate
	if isRapidMotion {
		nominal *= c.RapidOverride
	} else {
		if !isNoFeedOverride {
			nominal *= c.RapidOverride
		}
		nominal = math32.Min(nominal, rapidRate)
	}
	return math32.Max(nominal, c.MinimumFeedRate)
}

func roundToInt32(v float32) int32 {
	if v < 0 {
		return int32(v - 0.5)
	}
	return int32(v + 0.5)
}
