package pid

import "testing"

func TestFirstComputeSeedsFromInput(t *testing.T) {
	p := New(10, 1, 0, 0)
	// err = setpoint - input = 10 - 0 = 10; delta = kp*err = 10.
	// base seeds to input (0) since there is no previous output.
	out := p.Compute(0)
	want := float32(10)
	if out != want {
		t.Errorf("Compute(0) = %v, want %v", out, want)
	}
}

func TestDeltaIsClampedTo200(t *testing.T) {
	p := New(10000, 1, 0, 0)
	out := p.Compute(0)
	// err = 10000, delta clamps to 200, base (input) = 0.
	want := float32(200)
	if out != want {
		t.Errorf("Compute(0) = %v, want %v", out, want)
	}

	out2 := p.Compute(0)
	// second call: err unchanged at 10000 (setpoint-input), e_last was
	// 10000 from the prior call, so delta = kp*(10000-10000) = 0,
	// clamped unaffected; output = lastOutput(200) + 0.
	if out2 != 200 {
		t.Errorf("Compute(0) second call = %v, want 200", out2)
	}
}

func TestSetPointAndTune(t *testing.T) {
	p := New(0, 1, 1, 1)
	p.SetPoint(5)
	if p.setpoint != 5 {
		t.Errorf("setpoint = %v, want 5", p.setpoint)
	}

	p.Tune(2, 3, 4)
	if p.kp != 2 || p.ki != 3 || p.kd != 4 {
		t.Errorf("gains = (%v,%v,%v), want (2,3,4)", p.kp, p.ki, p.kd)
	}

	// Negative gains are rejected silently, leaving prior gains intact.
	p.Tune(-1, 0, 0)
	if p.kp != 2 || p.ki != 3 || p.kd != 4 {
		t.Errorf("gains after invalid Tune = (%v,%v,%v), want unchanged (2,3,4)", p.kp, p.ki, p.kd)
	}
}

func TestConvergesTowardSetpoint(t *testing.T) {
	p := New(100, 0.5, 0.1, 0.05)
	output := float32(0)
	for i := 0; i < 200; i++ {
		output = p.Compute(output)
	}
	diff := output - 100
	if diff < -5 || diff > 5 {
		t.Errorf("output did not converge near setpoint: got %v, want close to 100", output)
	}
}
