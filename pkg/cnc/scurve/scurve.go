// Package scurve implements C6, the seven-segment jerk-limited (double-S)
// velocity profile described in "Trajectory Planning for Automatic
// Machines and Robots" §3.4. It solves for the profile's time intervals
// given start/end position and velocity plus jerk/acceleration/velocity
// limits, then evaluates position, velocity and acceleration as closed-
// form piecewise functions of elapsed time.
package scurve

import (
	"github.com/chewxy/math32"

	coremath "github.com/itohio/cncmotion/pkg/core/math"
)

// Constraints are the desired jerk/acceleration/velocity limits in
// consistent units. The S-curve solver may end up using lower actual
// peak acceleration or velocity than these limits; the achieved values
// are reported in Parameters.
type Constraints struct {
	MaxJerk         float32
	MaxAcceleration float32
	MaxVelocity     float32
}

// StartConditions are the boundary position/velocity pair the profile
// must connect.
type StartConditions struct {
	Q0 float32 // start position
	Q1 float32 // end position
	V0 float32 // start velocity
	V1 float32 // end velocity
}

// DefaultStartConditions mirrors the zero-to-one unit move at rest.
func DefaultStartConditions() StartConditions {
	return StartConditions{Q0: 0, Q1: 1, V0: 0, V1: 0}
}

func (s StartConditions) h() float32 { return s.Q1 - s.Q0 }

// TimeIntervals are the seven segments' durations, collapsed to the
// five independent values the closed forms need.
type TimeIntervals struct {
	TJ1 float32 // constant-jerk duration during acceleration
	TJ2 float32 // constant-jerk duration during deceleration
	TA  float32 // acceleration period
	TV  float32 // constant-velocity period
	TD  float32 // deceleration period
}

// TotalDuration is the profile's full duration.
func (t TimeIntervals) TotalDuration() float32 { return t.TA + t.TD + t.TV }

func (t TimeIntervals) maxAccelerationNotReached() bool {
	return t.TA < 2*t.TJ1 || t.TD < 2*t.TJ2
}

// Parameters is the fully solved profile: time intervals plus the
// jerk/acceleration/velocity values actually achieved.
type Parameters struct {
	TimeIntervals TimeIntervals
	JMax, JMin    float32
	ALimA         float32 // peak acceleration during the acceleration phase
	ALimD         float32 // peak (negative) acceleration during the deceleration phase
	VLim          float32 // peak velocity
	Conditions    StartConditions
}

type input struct {
	constraints Constraints
	start       StartConditions
}

// SCurve is a solved double-S velocity profile ready for evaluation at
// any elapsed time via EvalPosition/EvalVelocity/EvalAcceleration.
type SCurve struct {
	Params Parameters
}

// New solves a double-S profile for the given constraints and boundary
// conditions.
func New(constraints Constraints, start StartConditions) SCurve {
	in := input{constraints: constraints, start: start}
	times := in.calcIntervals()
	return SCurve{Params: newParameters(times, in)}
}

func newParameters(times TimeIntervals, p input) Parameters {
	aLimA := p.constraints.MaxJerk * times.TJ1
	aLimD := -p.constraints.MaxJerk * times.TJ2
	vLim := p.start.V0 + (times.TA-times.TJ1)*aLimA
	return Parameters{
		TimeIntervals: times,
		JMax:          p.constraints.MaxJerk,
		JMin:          -p.constraints.MaxJerk,
		ALimA:         aLimA,
		ALimD:         aLimD,
		VLim:          vLim,
		Conditions:    p.start,
	}
}

// EvalPosition evaluates position at elapsed time t, clamping to the
// boundary positions outside [0, TotalDuration].
func (params Parameters) EvalPosition(t float32) float32 {
	p := params
	times := p.TimeIntervals
	switch {
	case t < 0:
		return p.Conditions.Q0
	case t <= times.TJ1:
		return p.Conditions.Q0 + p.Conditions.V0*t + p.JMax*cube(t)/6.0
	case t <= times.TA-times.TJ1:
		return p.Conditions.Q0 + p.Conditions.V0*t +
			p.ALimA/6.0*(3*coremath.SQR(t)-3*times.TJ1*t+coremath.SQR(times.TJ1))
	case t <= times.TA:
		return p.Conditions.Q0 + (p.VLim+p.Conditions.V0)*times.TA/2.0 -
			p.VLim*(times.TA-t) - p.JMin*cube(times.TA-t)/6.0
	case t <= times.TA+times.TV:
		return p.Conditions.Q0 + (p.VLim+p.Conditions.V0)*times.TA/2.0 +
			p.VLim*(t-times.TA)
	case t <= times.TotalDuration()-times.TD+times.TJ2:
		dt := t - times.TotalDuration() + times.TD
		return p.Conditions.Q1 - (p.VLim+p.Conditions.V1)*times.TD/2.0 +
			p.VLim*dt - p.JMax*cube(dt)/6.0
	case t <= times.TotalDuration()-times.TJ2:
		dt := t - times.TotalDuration() + times.TD
		return p.Conditions.Q1 - (p.VLim+p.Conditions.V1)*times.TD/2.0 +
			p.VLim*dt + p.ALimD/6.0*(3*coremath.SQR(dt)-3*times.TJ2*dt+coremath.SQR(times.TJ2))
	case t <= times.TotalDuration():
		dt := times.TotalDuration() - t
		return p.Conditions.Q1 - p.Conditions.V1*dt - p.JMax*cube(dt)/6.0
	default:
		return p.Conditions.Q1
	}
}

// EvalVelocity evaluates velocity at elapsed time t, clamping to the
// boundary velocities outside [0, TotalDuration].
func (params Parameters) EvalVelocity(t float32) float32 {
	p := params
	times := p.TimeIntervals
	switch {
	case t < 0:
		return p.Conditions.V0
	case t <= times.TJ1:
		return p.Conditions.V0 + p.JMax*coremath.SQR(t)/2.0
	case t <= times.TA-times.TJ1:
		return p.Conditions.V0 + p.ALimA*(t-times.TJ1/2.0)
	case t <= times.TA:
		return p.VLim + p.JMin*coremath.SQR(times.TA-t)/2.0
	case t <= times.TA+times.TV:
		return p.VLim
	case t <= times.TotalDuration()-times.TD+times.TJ2:
		dt := t - times.TotalDuration() + times.TD
		return p.VLim - p.JMax*coremath.SQR(dt)/2.0
	case t <= times.TotalDuration()-times.TJ2:
		dt := t - times.TotalDuration() + times.TD - times.TJ2/2.0
		return p.VLim + p.ALimD*dt
	case t <= times.TotalDuration():
		return p.Conditions.V1 + p.JMax*coremath.SQR(times.TotalDuration()-t)/2.0
	default:
		return p.Conditions.V1
	}
}

// EvalAcceleration evaluates acceleration at elapsed time t, returning 0
// outside [0, TotalDuration].
func (params Parameters) EvalAcceleration(t float32) float32 {
	p := params
	times := p.TimeIntervals
	switch {
	case t < 0:
		return 0
	case t <= times.TJ1:
		return p.JMax * t
	case t <= times.TA-times.TJ1:
		return p.ALimA
	case t <= times.TA:
		return -p.JMin * (times.TA - t)
	case t <= times.TA+times.TV:
		return 0
	case t <= times.TotalDuration()-times.TD+times.TJ2:
		return -p.JMax * (t - times.TotalDuration() + times.TD)
	case t <= times.TotalDuration()-times.TJ2:
		return p.ALimD
	case t <= times.TotalDuration():
		return -p.JMax * (times.TotalDuration() - t)
	default:
		return 0
	}
}

func (in input) isAMaxNotReached() bool {
	return (in.constraints.MaxVelocity-in.start.V0)*in.constraints.MaxJerk < coremath.SQR(in.constraints.MaxAcceleration)
}

func (in input) isAMinNotReached() bool {
	return (in.constraints.MaxVelocity-in.start.V1)*in.constraints.MaxJerk < coremath.SQR(in.constraints.MaxAcceleration)
}

func (in input) calcIntervals() TimeIntervals {
	return in.calcTimesCase1()
}

func (in input) calcTimesCase1() TimeIntervals {
	var times TimeIntervals
	newIn := in

	if in.isAMaxNotReached() {
		times.TJ1 = math32.Sqrt((newIn.constraints.MaxVelocity - in.start.V0) / newIn.constraints.MaxJerk)
		times.TA = 2 * times.TJ1
	} else {
		times.TJ1 = newIn.constraints.MaxAcceleration / newIn.constraints.MaxJerk
		times.TA = times.TJ1 + (newIn.constraints.MaxVelocity-in.start.V0)/newIn.constraints.MaxAcceleration
	}

	if in.isAMinNotReached() {
		times.TJ2 = math32.Sqrt((newIn.constraints.MaxVelocity - in.start.V1) / newIn.constraints.MaxJerk)
		times.TD = 2 * times.TJ2
	} else {
		times.TJ2 = newIn.constraints.MaxAcceleration / newIn.constraints.MaxJerk
		times.TD = times.TJ2 + (newIn.constraints.MaxVelocity-in.start.V1)/newIn.constraints.MaxAcceleration
	}

	times.TV = in.start.h()/newIn.constraints.MaxVelocity -
		times.TA/2.0*(1+in.start.V0/newIn.constraints.MaxVelocity) -
		times.TD/2.0*(1+in.start.V1/newIn.constraints.MaxVelocity)

	if times.TV <= 0 {
		return in.calcTimesCase2(0)
	}
	if times.maxAccelerationNotReached() {
		newIn.constraints.MaxAcceleration *= 0.5
		if newIn.constraints.MaxAcceleration > 0.01 {
			return newIn.calcTimesCase2(0)
		}
		newIn.constraints.MaxAcceleration = 0
	}
	in.handleNegativeAccelerationTime(&times, newIn)
	return times
}

func (in input) calcTimesCase2(recursionDepth int32) TimeIntervals {
	recursionDepth++
	times := in.getTimesCase2()
	newIn := in

	if times.maxAccelerationNotReached() {
		newIn.constraints.MaxAcceleration *= 0.5
		if newIn.constraints.MaxAcceleration > 0.01 {
			return newIn.calcTimesCase2(recursionDepth)
		}
		newIn.constraints.MaxAcceleration = 0
	}
	in.handleNegativeAccelerationTime(&times, newIn)
	if recursionDepth != 1 {
		newIn.constraints.MaxAcceleration *= 2
	}
	return newIn.calcTimesCase2Precise(recursionDepth)
}

func (in input) getTimesCase2() TimeIntervals {
	a, j := in.constraints.MaxAcceleration, in.constraints.MaxJerk
	v0, v1, h := in.start.V0, in.start.V1, in.start.h()

	tJ1 := a / j
	tJ2 := a / j
	delta := coremath.SQR(coremath.SQR(a))/coremath.SQR(j) + 2*(coremath.SQR(v0)+coremath.SQR(v1)) +
		a*(4*h-2*a/j*(v0+v1))
	tA := (coremath.SQR(a)/j - 2*v0 + math32.Sqrt(delta)) / (2 * a)
	tD := (coremath.SQR(a)/j - 2*v1 + math32.Sqrt(delta)) / (2 * a)

	return TimeIntervals{TJ1: tJ1, TJ2: tJ2, TA: tA, TV: 0, TD: tD}
}

func (in input) calcTimesCase2Precise(recursionDepth int32) TimeIntervals {
	recursionDepth++
	times := in.getTimesCase2()
	newIn := in

	if times.maxAccelerationNotReached() {
		newIn.constraints.MaxAcceleration *= 0.99
		if newIn.constraints.MaxAcceleration > 0.01 {
			return newIn.calcTimesCase2Precise(recursionDepth)
		}
		newIn.constraints.MaxAcceleration = 0
	}
	in.handleNegativeAccelerationTime(&times, newIn)
	return times
}

func (in input) handleNegativeAccelerationTime(times *TimeIntervals, newIn input) {
	v0, v1, j, h := in.start.V0, in.start.V1, newIn.constraints.MaxJerk, in.start.h()

	if times.TA < 0 {
		times.TJ1 = 0
		times.TA = 0
		times.TD = 2 * h / (v0 + v1)
		times.TJ2 = (j*h - math32.Sqrt(j*(j*coremath.SQR(h)+coremath.SQR(v0+v1)*(v1-v0)))) / (j * (v1 + v0))
	}
	if times.TD < 0 {
		times.TJ2 = 0
		times.TD = 0
		times.TA = 2 * h / (v0 + v1)
		times.TJ2 = (j*h - math32.Sqrt(j*(j*coremath.SQR(h)-coremath.SQR(v0+v1)*(v1-v0)))) / (j * (v1 + v0))
	}
}

func cube(v float32) float32 { return v * v * v }
