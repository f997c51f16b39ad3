// Package line3d implements C3, a 3-D extension of Bresenham's algorithm:
// a lazy, pull-based, finite sequence of step-grid points between two
// integer endpoints.
package line3d

import "github.com/itohio/cncmotion/pkg/cnc/vec"

// Line3D is a single-use, non-restartable iterator over the grid points
// lying closest to the true line between start and end, in the style of
// the arc/line iterator-as-producer design note: a value-typed stateful
// object with a "produce next or end" operation, no callbacks, no
// per-element allocation.
type Line3D struct {
	d vec.Step3 // absolute per-axis deltas
	s vec.Step3 // per-axis sign, +1 or -1
	dm int32    // driving-axis length

	out    vec.Step3
	i      int32
	errOft vec.Step3
}

// New builds a Line3D that will yield the dm points between start
// (exclusive) and end (inclusive), where dm = max(|Δx|,|Δy|,|Δz|).
func New(start, end vec.Step3) Line3D {
	delta := end.Sub(start)
	d := delta.Abs()
	dm := d.MaxElement()

	return Line3D{
		d:  d,
		s:  vec.SignOf(delta),
		dm: dm,
		i:  dm,
		out: start,
		errOft: vec.NewStep3(dm/2, dm/2, dm/2),
	}
}

// Len returns the total number of points this Line3D will yield.
func (l *Line3D) Len() int { return int(l.dm) }

// Next produces the next grid point, or (zero, false) once the sequence
// is exhausted. The zero-length case (dm == 0) yields nothing on the
// first call; single-axis moves never suspend the driving axis.
func (l *Line3D) Next() (vec.Step3, bool) {
	if l.i == 0 {
		return vec.Step3{}, false
	}

	l.errOft = l.errOft.Sub(l.d)
	if l.errOft.X < 0 {
		l.errOft.X += l.dm
		l.out.X += l.s.X
	}
	if l.errOft.Y < 0 {
		l.errOft.Y += l.dm
		l.out.Y += l.s.Y
	}
	if l.errOft.Z < 0 {
		l.errOft.Z += l.dm
		l.out.Z += l.s.Z
	}

	l.i--
	return l.out, true
}
