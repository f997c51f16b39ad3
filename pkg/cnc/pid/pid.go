// Package pid implements C9, an incremental (velocity-form) PID
// controller: each Compute call returns an absolute output derived from
// the previous output plus a clamped delta, rather than recomputing the
// output from scratch.
package pid

import coremath "github.com/itohio/cncmotion/pkg/core/math"

// deltaClamp bounds the per-call output delta, independent of the gains
// in use.
const deltaClamp float32 = 200

// PID holds the controller's setpoint, gains and the two-sample error
// history the incremental formula needs.
type PID struct {
	setpoint float32

	kp, ki, kd float32

	eLast, ePrev float32

	lastOutput    float32
	haveLastOutput bool
}

// New builds a PID controller with the given setpoint and gains.
func New(setpoint, kp, ki, kd float32) *PID {
	return &PID{setpoint: setpoint, kp: kp, ki: ki, kd: kd}
}

// SetPoint changes the controller's target value.
func (p *PID) SetPoint(setpoint float32) {
	p.setpoint = setpoint
}

// Tune updates the controller's gains. Per the upstream behavior, a
// negative gain is rejected silently (the existing gains are kept)
// rather than returning an error.
func (p *PID) Tune(kp, ki, kd float32) {
	if kp < 0 || ki < 0 || kd < 0 {
		return
	}
	p.kp, p.ki, p.kd = kp, ki, kd
}

// Compute takes the current process value and returns the controller's
// new output. The first call seeds the internal "last output" to input
// itself, so the first delta is applied relative to the measured value
// rather than to an arbitrary zero.
func (p *PID) Compute(input float32) float32 {
	delta := p.incremental(input)
	delta = coremath.Clamp(delta, -deltaClamp, deltaClamp)

	base := input
	if p.haveLastOutput {
		base = p.lastOutput
	}
	out := base + delta

	p.lastOutput = out
	p.haveLastOutput = true
	return out
}

// incremental computes delta = Kp*(e[t]-e[t-1]) + Ki*e[t] +
// Kd*(e[t]-2*e[t-1]+e[t-2]) and rolls the error history forward.
func (p *PID) incremental(realOutput float32) float32 {
	err := p.setpoint - realOutput

	delta := p.kp*(err-p.eLast) + p.ki*err + p.kd*(err-2*p.eLast+p.ePrev)

	p.ePrev = p.eLast
	p.eLast = err
	return delta
}
