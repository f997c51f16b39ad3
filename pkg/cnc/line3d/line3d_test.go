package line3d

import (
	"testing"

	"github.com/itohio/cncmotion/pkg/cnc/vec"
)

func collect(l Line3D) []vec.Step3 {
	var out []vec.Step3
	for {
		p, ok := l.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

func TestLine3DDiagonal(t *testing.T) {
	l := New(vec.NewStep3(0, 0, 0), vec.NewStep3(6, 6, 6))
	if l.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", l.Len())
	}
	want := []vec.Step3{
		vec.NewStep3(1, 1, 1),
		vec.NewStep3(2, 2, 2),
		vec.NewStep3(3, 3, 3),
		vec.NewStep3(4, 4, 4),
		vec.NewStep3(5, 5, 5),
		vec.NewStep3(6, 6, 6),
	}
	assertSeqEqual(t, collect(l), want)
}

func TestLine3DZOnly(t *testing.T) {
	l := New(vec.NewStep3(0, 0, 0), vec.NewStep3(0, 0, 6))
	want := []vec.Step3{
		vec.NewStep3(0, 0, 1),
		vec.NewStep3(0, 0, 2),
		vec.NewStep3(0, 0, 3),
		vec.NewStep3(0, 0, 4),
		vec.NewStep3(0, 0, 5),
		vec.NewStep3(0, 0, 6),
	}
	assertSeqEqual(t, collect(l), want)
}

func TestLine3DReverseDiagonal(t *testing.T) {
	l := New(vec.NewStep3(6, 4, 0), vec.NewStep3(0, 1, 0))
	want := []vec.Step3{
		vec.NewStep3(5, 4, 0),
		vec.NewStep3(4, 3, 0),
		vec.NewStep3(3, 3, 0),
		vec.NewStep3(2, 2, 0),
		vec.NewStep3(1, 2, 0),
		vec.NewStep3(0, 1, 0),
	}
	assertSeqEqual(t, collect(l), want)
}

func TestLine3DZeroLength(t *testing.T) {
	l := New(vec.NewStep3(3, 3, 3), vec.NewStep3(3, 3, 3))
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	if _, ok := l.Next(); ok {
		t.Fatalf("expected no points for a zero-length line")
	}
}

func assertSeqEqual(t *testing.T, got, want []vec.Step3) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("sequence length = %d, want %d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
