// Package vec provides the 2-D/3-D coordinate tuples and the canonical
// working-plane mapper shared by every other CNC core component (C1).
//
// Unlike the array-backed, pointer-chained Vector2D/Vector3D found
// elsewhere in this module's ancestry, Vec2/Vec3/Step3 are plain values:
// every method takes a value receiver and returns a new value. There are
// no aliasing invariants to honor because there is no mutable state to
// alias.
package vec

import "github.com/chewxy/math32"

// Vec2 is a 2-D float32 coordinate tuple, used for working-plane math
// (the plane a G2/G3 arc's circle lies in).
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3-D float32 coordinate tuple in millimeters.
type Vec3 struct {
	X, Y, Z float32
}

// Step3 is a 3-D signed integer step-grid coordinate tuple.
type Step3 struct {
	X, Y, Z int32
}

func NewVec2(x, y float32) Vec2         { return Vec2{X: x, Y: y} }
func NewVec3(x, y, z float32) Vec3      { return Vec3{X: x, Y: y, Z: z} }
func NewStep3(x, y, z int32) Step3      { return Step3{X: x, Y: y, Z: z} }
func ZeroVec3() Vec3                    { return Vec3{} }

// --- Vec2 ---

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Neg() Vec2       { return Vec2{-v.X, -v.Y} }
func (v Vec2) MulC(c float32) Vec2 { return Vec2{v.X * c, v.Y * c} }
func (v Vec2) DivC(c float32) Vec2 { return Vec2{v.X / c, v.Y / c} }

func (v Vec2) Dot(o Vec2) float32 { return v.X*o.X + v.Y*o.Y }

// Wedge is the 2-D exterior ("cross") product, used to get a signed
// angle via atan2 without resorting to a full 3-D cross product.
func (v Vec2) Wedge(o Vec2) float32 { return v.X*o.Y - v.Y*o.X }

func (v Vec2) SumSqr() float32      { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Magnitude() float32   { return math32.Sqrt(v.SumSqr()) }
func (v Vec2) DistanceSqr(o Vec2) float32 { return v.Sub(o).SumSqr() }
func (v Vec2) Distance(o Vec2) float32    { return math32.Sqrt(v.DistanceSqr(o)) }

func (v Vec2) Abs() Vec2 { return Vec2{math32.Abs(v.X), math32.Abs(v.Y)} }

// Unit returns the unit vector colinear with v. Callers must not pass the
// zero vector; that is a precondition violation per the per-direction
// limits design note.
func (v Vec2) Unit() Vec2 { return v.DivC(v.Magnitude()) }

// --- Vec3 ---

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Neg() Vec3       { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) MulC(c float32) Vec3 { return Vec3{v.X * c, v.Y * c, v.Z * c} }
func (v Vec3) DivC(c float32) Vec3 { return Vec3{v.X / c, v.Y / c, v.Z / c} }

func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) SumSqr() float32         { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vec3) Magnitude() float32      { return math32.Sqrt(v.SumSqr()) }
func (v Vec3) DistanceSqr(o Vec3) float32 { return v.Sub(o).SumSqr() }
func (v Vec3) Distance(o Vec3) float32    { return math32.Sqrt(v.DistanceSqr(o)) }

func (v Vec3) Abs() Vec3 {
	return Vec3{math32.Abs(v.X), math32.Abs(v.Y), math32.Abs(v.Z)}
}

// MaxElement returns the largest of the three components, as-is (no
// implicit abs — callers that need the largest magnitude call Abs first,
// matching how the line rasterizer derives its driving axis).
func (v Vec3) MaxElement() float32 {
	m := v.X
	if v.Y > m {
		m = v.Y
	}
	if v.Z > m {
		m = v.Z
	}
	return m
}

// Unit returns the unit vector colinear with v. Callers must not pass the
// zero vector.
func (v Vec3) Unit() Vec3 { return v.DivC(v.Magnitude()) }

// Plane returns the XY components as a Vec2, dropping the linear axis.
func (v Vec3) Plane() Vec2 { return Vec2{v.X, v.Y} }

// Linear returns the Z component, the helical/linear axis in the
// canonical frame.
func (v Vec3) Linear() float32 { return v.Z }

// FromPlane builds a Vec3 from a working-plane Vec2 and a linear offset.
func FromPlane(plane Vec2, linear float32) Vec3 {
	return Vec3{plane.X, plane.Y, linear}
}

// --- Step3 ---

func (s Step3) Add(o Step3) Step3 { return Step3{s.X + o.X, s.Y + o.Y, s.Z + o.Z} }
func (s Step3) Sub(o Step3) Step3 { return Step3{s.X - o.X, s.Y - o.Y, s.Z - o.Z} }

func (s Step3) Abs() Step3 {
	return Step3{absI32(s.X), absI32(s.Y), absI32(s.Z)}
}

func (s Step3) MaxElement() int32 {
	m := s.X
	if s.Y > m {
		m = s.Y
	}
	if s.Z > m {
		m = s.Z
	}
	return m
}

// ToVec3 converts a step-grid point to a float32 coordinate tuple, with
// no scaling applied (see CNCConfig for the steps-per-mm conversion).
func (s Step3) ToVec3() Vec3 {
	return Vec3{float32(s.X), float32(s.Y), float32(s.Z)}
}

func absI32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}

func signI32(a int32) int32 {
	if a < 0 {
		return -1
	}
	return 1
}

// SignOf returns the per-axis sign (+1/-1) of each component, used by the
// line rasterizer and the linear-motion adapter to derive step direction.
func SignOf(s Step3) Step3 {
	return Step3{signI32(s.X), signI32(s.Y), signI32(s.Z)}
}
