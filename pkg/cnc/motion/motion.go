// Package motion implements C7, the linear-motion adapter: it drives a
// line3d.Line3D rasterization in lockstep with a velocity profile (an
// SCurve or a Trapezoidal ramp), producing a (step, velocity) pair per
// grid point. Neither adapter cares about direction: callers are
// expected to apply sign themselves, matching the step sequence's own
// magnitude-only semantics.
package motion

import (
	"github.com/itohio/cncmotion/pkg/cnc/line3d"
	"github.com/itohio/cncmotion/pkg/cnc/scurve"
	"github.com/itohio/cncmotion/pkg/cnc/trapezoidal"
	"github.com/itohio/cncmotion/pkg/cnc/vec"
)

// Profile is the common shape both adapters satisfy: produce the next
// step and its instantaneous velocity, or report the motion has ended.
type Profile interface {
	NextProfile() (vec.Step3, float32, bool)
}

// jerkForSCurve is the fixed jerk limit the original controller hardcodes
// for every S-curve linear move; only acceleration and velocity vary per
// move.
const jerkForSCurve float32 = 3.0

// SCurveProfile drives a Line3D rasterization at the velocity schedule
// of a jerk-limited double-S profile over the move's total distance.
type SCurveProfile struct {
	line    line3d.Line3D
	scurve  scurve.SCurve
	index   float32
	percent float32
}

// NewSCurveProfile builds an S-curve-paced linear move of distance
// units (e.g. mm) along steps (a per-axis step count, sign ignored).
// maxAcceleration/maxVelocity/enterVelocity/endVelocity share distance's
// unit of length over the caller's chosen unit of time.
func NewSCurveProfile(distance float32, steps vec.Step3, maxAcceleration, maxVelocity, enterVelocity, endVelocity float32) SCurveProfile {
	distance = absf(distance)
	steps = steps.Abs()
	maxAcceleration = absf(maxAcceleration)
	maxVelocity = absf(maxVelocity)
	enterVelocity = absf(enterVelocity)
	endVelocity = absf(endVelocity)

	line := line3d.New(vec.NewStep3(0, 0, 0), steps)

	sc := scurve.New(
		scurve.Constraints{MaxJerk: jerkForSCurve, MaxAcceleration: maxAcceleration, MaxVelocity: maxVelocity},
		scurve.StartConditions{Q0: 0, Q1: distance, V0: enterVelocity, V1: endVelocity},
	)

	percent := sc.Params.TimeIntervals.TotalDuration() / float32(line.Len()+1)

	return SCurveProfile{
		line:    line,
		scurve:  sc,
		index:   1, // skip the enter point; the caller is already there
		percent: percent,
	}
}

// NextProfile returns the next step and the velocity the S-curve
// schedule assigns to it, or (zero, 0, false) once the move is complete.
func (m *SCurveProfile) NextProfile() (vec.Step3, float32, bool) {
	p, ok := m.line.Next()
	if !ok {
		return vec.Step3{}, 0, false
	}
	velocity := m.scurve.Params.EvalVelocity(m.index * m.percent)
	m.index++
	return p, velocity, true
}

// TrapezoidalProfile drives a Line3D rasterization at the velocity
// schedule of a trapezoidal ramp sized to the move's step count.
type TrapezoidalProfile struct {
	line line3d.Line3D
	trap trapezoidal.Trapezoidal
}

// NewTrapezoidalProfile builds a trapezoidal-paced linear move over
// steps (sign ignored).
func NewTrapezoidalProfile(steps vec.Step3, targetAccel, maxVelocity, enterVelocity, endVelocity float32) TrapezoidalProfile {
	line := line3d.New(vec.NewStep3(0, 0, 0), steps.Abs())

	cond := trapezoidal.Conditions{
		EnterVelocity: enterVelocity,
		EndVelocity:   endVelocity,
		TargetAccel:   targetAccel,
	}
	trap := trapezoidal.New(&cond, &maxVelocity, uint32(line.Len()))

	return TrapezoidalProfile{line: line, trap: trap}
}

// NextProfile returns the next step and its instantaneous velocity
// (the reciprocal of the ramp's delay), or (zero, 0, false) as soon as
// either the ramp or the line is exhausted.
func (m *TrapezoidalProfile) NextProfile() (vec.Step3, float32, bool) {
	velocity, ok := m.trap.NextVelocity()
	if !ok {
		return vec.Step3{}, 0, false
	}
	p, ok := m.line.Next()
	if !ok {
		return vec.Step3{}, 0, false
	}
	return p, velocity, true
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
