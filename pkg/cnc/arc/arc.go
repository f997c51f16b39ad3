// Package arc implements C4, the arc interpolator: a lazy, finite chord
// sequence for a G2/G3 arc (radius-mode or center-mode), decomposed via
// an incremental small-angle rotation with periodic exact-trig
// correction, satisfying rs274ngc's arc requirements.
package arc

import (
	"github.com/chewxy/math32"
	"github.com/itohio/cncmotion/pkg/cnc/vec"
	coremath "github.com/itohio/cncmotion/pkg/core/math"
)

// AngularTravelEpsilon accounts for floating point issues when
// offset-based arcs commanded as full circles get interpreted as
// extremely small arcs near machine epsilon due to round-off. Must be
// greater than float32 epsilon (~1.19e-7) but not much greater.
const AngularTravelEpsilon float32 = 5e-07

// NCorrection is the number of small-angle-approximation iterations
// performed before a full sin/cos correction of the radius vector.
const NCorrection int32 = 12

// DefaultTolerance is the default maximum normal distance (mm) from a
// chord segment to the true arc.
const DefaultTolerance float32 = 0.0002

// calcInfo caches the per-arc plan computed on the first call to Next,
// together with the iterator's running state.
type calcInfo struct {
	angularTravel    float32
	segments         uint32
	thetaPerSegment  float32
	linearPerSegment float32
	sinT, cosT       float32

	cntSegments uint32
	completed   bool
	count       int32
}

// Arc is a single-use, non-restartable iterator over chord points
// approximating a circular arc. Direction (CW/CCW) affects only the sign
// of the angular travel; no other logic branches on it.
type Arc struct {
	origC    vec.Vec3 // original current position, kept for periodic correction
	t        vec.Vec3 // target
	center   vec.Vec2
	r        float32
	turnCCW  bool

	c    vec.Vec3 // current position, advances each Next call
	info *calcInfo
}

// NewRadiusMode builds an Arc from a G-code-style R word: current and
// target positions plus a signed radius (negative meaning "more than
// 180 degrees of travel").
func NewRadiusMode(current, target vec.Vec3, radius float32, turnCCW bool) Arc {
	t := target.Plane().Sub(current.Plane())
	x, y := t.X, t.Y
	r := math32.Abs(radius)

	hX2divD := 4.0*r*r - x*x - y*y
	hX2divD = math32.Sqrt(hX2divD) / coremath.Pytag(x, y)
	if !turnCCW {
		hX2divD = -hX2divD
	}
	if radius < 0 {
		hX2divD = -hX2divD
	}

	oi := 0.5 * (x - y*hX2divD)
	oj := 0.5 * (y + x*hX2divD)
	center := current.Plane().Add(vec.NewVec2(oi, oj))

	return Arc{
		origC:   current,
		c:       current,
		t:       target,
		center:  center,
		r:       r,
		turnCCW: turnCCW,
	}
}

// NewCenterMode builds an Arc from a G-code-style I/J/K center offset
// (relative to current).
func NewCenterMode(current, target vec.Vec3, centerOffset vec.Vec2, turnCCW bool) Arc {
	center := current.Plane().Add(centerOffset)
	r := centerOffset.Magnitude()

	return Arc{
		origC:   current,
		t:       target,
		center:  center,
		r:       r,
		turnCCW: turnCCW,
		c:       current,
	}
}

// CheckCenterMode returns the magnitude of the radius mismatch between
// current and target for a center-mode arc: |‖target−centre‖ −
// ‖current−centre‖|. Callers are responsible for rejecting arcs whose
// mismatch exceeds their own tolerance (historically 0.002mm); this
// helper does not enforce one.
func CheckCenterMode(current, target vec.Vec3, centerOffset vec.Vec2) float32 {
	center := current.Plane().Add(centerOffset)
	t := target.Plane().Sub(center)
	targetR := t.Magnitude()
	r := centerOffset.Magnitude()
	return math32.Abs(targetR - r)
}

// Compensate applies cutter-radius compensation to a straight move from
// start to end: end is treated as the programmed toolpath point, and the
// returned point is where the cutter center must actually travel so the
// tool's edge (at the given radius) tracks the programmed line, offset to
// the left or right of the direction of travel per sideIsLeft.
func Compensate(start, end vec.Vec2, radius float32, sideIsLeft bool) vec.Vec2 {
	d := end.Sub(start)
	distance := coremath.Pytag(d.X, d.Y)

	theta := math32.Acos(radius / distance)

	neg := start.Sub(end)
	alpha := math32.Atan2(neg.Y, neg.X)
	if sideIsLeft {
		alpha -= theta
	} else {
		alpha += theta
	}

	return vec.NewVec2(
		end.X+radius*math32.Cos(alpha),
		end.Y+radius*math32.Sin(alpha),
	)
}

// Radius returns the arc's radius.
func (a *Arc) Radius() float32 { return a.r }

// Center returns the arc's circle centre in the working plane.
func (a *Arc) Center() vec.Vec2 { return a.center }

func (a *Arc) getRadianTravelByCCW() float32 {
	rv := a.c.Plane().Sub(a.center)
	rtv := a.t.Plane().Sub(a.center)

	angularTravel := math32.Atan2(rv.Wedge(rtv), rv.Dot(rtv))

	const tau = 2 * math32.Pi
	if !a.turnCCW {
		if angularTravel >= -AngularTravelEpsilon {
			angularTravel -= tau
		}
	} else {
		if angularTravel <= AngularTravelEpsilon {
			angularTravel += tau
		}
	}
	return angularTravel
}

func (a *Arc) getSegmentsAndAngularTravel() (uint32, float32) {
	angularTravel := a.getRadianTravelByCCW()
	radius := a.r

	k := math32.Sqrt(DefaultTolerance * (2*radius - DefaultTolerance))
	t := math32.Abs(angularTravel*radius) / k
	segments := uint32(math32.Floor(0.5 * t))

	return segments, angularTravel
}

// circleFormular rotates start about the origin by the angle whose
// cos/sin are given, via the standard 2-D rotation matrix.
func circleFormular(start vec.Vec2, cos, sin float32) (float32, float32) {
	return start.X*cos - start.Y*sin, start.Y*cos + start.X*sin
}

// Next produces the next chord point, or (zero, false) once the arc is
// exhausted. The sequence does not include the start point; its last
// element equals the target exactly.
func (a *Arc) Next() (vec.Vec3, bool) {
	if a.info == nil {
		segments, angularTravel := a.getSegmentsAndAngularTravel()
		if segments == 0 {
			a.info = &calcInfo{segments: 0}
		} else {
			thetaPerSegment := angularTravel / float32(segments)
			linearPerSegment := (a.t.Linear() - a.c.Linear()) / float32(segments)

			// Taylor expansion: cosδ ≈ 1 - δ²/2, sinδ ≈ δ - δ³/6. With
			// Δ = 2 - δ², cosδ = Δ/2 and sinδ = δ(4+Δ)/6.
			cosT2 := 2.0 - thetaPerSegment*thetaPerSegment
			sinT := thetaPerSegment * 0.16666667 * (cosT2 + 4.0)
			cosT := cosT2 * 0.5

			a.info = &calcInfo{
				angularTravel:    angularTravel,
				segments:         segments,
				thetaPerSegment:  thetaPerSegment,
				linearPerSegment: linearPerSegment,
				sinT:             sinT,
				cosT:             cosT,
				cntSegments:      1,
			}
		}
	}
	info := a.info

	if info.completed {
		return vec.Vec3{}, false
	}
	if info.segments == 0 {
		info.completed = true
		return a.t, true
	}
	if info.cntSegments >= info.segments {
		info.completed = true
		return a.t, true
	}

	var rAxis0, rAxis1 float32
	if info.count < NCorrection {
		rv := a.c.Plane().Sub(a.center)
		rAxis0, rAxis1 = circleFormular(rv, info.cosT, info.sinT)
		info.count++
	} else {
		// Every NCorrection segments, recompute exactly from the
		// original start radius vector rather than compounding the
		// small-angle approximation further.
		delta := float32(info.cntSegments) * info.thetaPerSegment
		cosTi := math32.Cos(delta)
		sinTi := math32.Sin(delta)

		rv := a.origC.Plane().Sub(a.center)
		rAxis0, rAxis1 = circleFormular(rv, cosTi, sinTi)
		info.count = 0
	}

	next := vec.FromPlane(a.center.Add(vec.NewVec2(rAxis0, rAxis1)), a.c.Linear()+info.linearPerSegment)
	a.c = next
	info.cntSegments++

	return next, true
}

