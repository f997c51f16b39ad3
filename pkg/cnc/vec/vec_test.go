package vec

import "testing"

func TestVec2Wedge(t *testing.T) {
	a := NewVec2(1, 0)
	b := NewVec2(0, 1)
	if got := a.Wedge(b); got != 1 {
		t.Errorf("Wedge() = %v, want 1", got)
	}
	if got := b.Wedge(a); got != -1 {
		t.Errorf("Wedge() = %v, want -1", got)
	}
}

func TestVec3Distance(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(3, 4, 0)
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}

func TestVec3MaxElement(t *testing.T) {
	v := NewVec3(-6, 4, 6).Abs()
	if got := v.MaxElement(); got != 6 {
		t.Errorf("MaxElement() = %v, want 6", got)
	}
}

func TestStep3Abs(t *testing.T) {
	s := NewStep3(-3, 4, -5)
	abs := s.Abs()
	if abs.X != 3 || abs.Y != 4 || abs.Z != 5 {
		t.Errorf("Abs() = %+v, want {3 4 5}", abs)
	}
	if abs.MaxElement() != 5 {
		t.Errorf("MaxElement() = %v, want 5", abs.MaxElement())
	}
}

func TestSignOf(t *testing.T) {
	s := SignOf(NewStep3(-3, 0, 5))
	if s.X != -1 || s.Y != 1 || s.Z != 1 {
		t.Errorf("SignOf() = %+v, want {-1 1 1}", s)
	}
}

func TestCanonPlaneInverse(t *testing.T) {
	v := NewVec3(1, 2, 3)
	planes := []CanonPlane{PlaneXY, PlaneYZ, PlaneXZ}
	for _, p := range planes {
		mapped := PlaneXY.ToPlane(v, p)
		back := p.ToPlane(mapped, PlaneXY)
		if back != v {
			t.Errorf("plane %v: round-trip = %+v, want %+v", p, back, v)
		}
	}
}

func TestCanonPlaneIdentity(t *testing.T) {
	v := NewVec3(1, 2, 3)
	if got := PlaneXY.ToPlane(v, PlaneXY); got != v {
		t.Errorf("identity ToPlane = %+v, want %+v", got, v)
	}
}

func TestCanonPlaneStepRoundTrip(t *testing.T) {
	s := NewStep3(10, -20, 30)
	mapped := PlaneXY.ToPlaneStep(s, PlaneYZ)
	back := PlaneYZ.ToPlaneStep(mapped, PlaneXY)
	if back != s {
		t.Errorf("round-trip = %+v, want %+v", back, s)
	}
}
