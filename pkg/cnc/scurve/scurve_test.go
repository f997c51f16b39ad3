package scurve

import (
	"testing"

	"github.com/chewxy/math32"
)

func approxEqual(t *testing.T, got, want, tol float32, msg string) {
	t.Helper()
	if math32.Abs(got-want) > tol {
		t.Errorf("%s: got %v, want %v (tol %v)", msg, got, want, tol)
	}
}

func TestSCurveBoundaryConditions(t *testing.T) {
	c := Constraints{MaxJerk: 30, MaxAcceleration: 10, MaxVelocity: 10}
	s := StartConditions{Q0: 0, Q1: 10, V0: 0, V1: 0}
	sc := New(c, s)

	p := sc.Params
	approxEqual(t, p.EvalPosition(-1), s.Q0, 1e-4, "position before start")
	approxEqual(t, p.EvalVelocity(-1), s.V0, 1e-4, "velocity before start")
	approxEqual(t, p.EvalAcceleration(-1), 0, 1e-4, "acceleration before start")

	dur := p.TimeIntervals.TotalDuration()
	approxEqual(t, p.EvalPosition(dur+1), s.Q1, 1e-4, "position after end")
	approxEqual(t, p.EvalVelocity(dur+1), s.V1, 1e-4, "velocity after end")
	approxEqual(t, p.EvalAcceleration(dur+1), 0, 1e-4, "acceleration after end")

	approxEqual(t, p.EvalPosition(0), s.Q0, 1e-3, "position at t=0")
	approxEqual(t, p.EvalPosition(dur), s.Q1, 1e-2, "position at total duration")
}

func TestSCurveReachesTargetPosition(t *testing.T) {
	c := Constraints{MaxJerk: 50, MaxAcceleration: 20, MaxVelocity: 15}
	s := StartConditions{Q0: 5, Q1: -5, V0: 0, V1: 0}
	sc := New(c, s)

	dur := sc.Params.TimeIntervals.TotalDuration()
	if dur <= 0 {
		t.Fatalf("total duration = %v, want > 0", dur)
	}
	approxEqual(t, sc.Params.EvalPosition(dur), s.Q1, 1e-1, "final position")
}

func TestSCurveVelocityNeverExceedsLimit(t *testing.T) {
	c := Constraints{MaxJerk: 30, MaxAcceleration: 10, MaxVelocity: 10}
	s := StartConditions{Q0: 0, Q1: 20, V0: 0, V1: 0}
	sc := New(c, s)

	dur := sc.Params.TimeIntervals.TotalDuration()
	steps := 200
	for i := 0; i <= steps; i++ {
		tt := dur * float32(i) / float32(steps)
		v := sc.Params.EvalVelocity(tt)
		if v > c.MaxVelocity+1e-2 {
			t.Errorf("velocity %v at t=%v exceeds max %v", v, tt, c.MaxVelocity)
		}
	}
}

func TestDefaultStartConditions(t *testing.T) {
	s := DefaultStartConditions()
	if s.Q0 != 0 || s.Q1 != 1 || s.V0 != 0 || s.V1 != 0 {
		t.Errorf("DefaultStartConditions() = %+v", s)
	}
}
