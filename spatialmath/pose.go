// Package spatialmath provides the rigid-body poses used to transform raw
// scanner points into the shared world frame each scan is registered into.
package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Orientation is a unit quaternion rotation. The zero value is not a valid
// Orientation; use NewZeroOrientation.
type Orientation struct {
	q quat.Number
}

// NewZeroOrientation returns the identity rotation.
func NewZeroOrientation() Orientation {
	return Orientation{q: quat.Number{Real: 1}}
}

// NewOrientationFromQuat builds an Orientation from a quaternion, which need
// not already be normalized.
func NewOrientationFromQuat(w, x, y, z float64) Orientation {
	q := quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
	return Orientation{q: quat.Scale(1/quat.Abs(q), q)}
}

// Quat returns the underlying unit quaternion.
func (o Orientation) Quat() quat.Number {
	return o.q
}

// Rotate applies the orientation's rotation to v.
func (o Orientation) Rotate(v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	conj := quat.Conj(o.q)
	r := quat.Mul(quat.Mul(o.q, p), conj)
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Compose returns the rotation equivalent to applying o first, then next.
func (o Orientation) Compose(next Orientation) Orientation {
	return Orientation{q: quat.Mul(next.q, o.q)}
}

// Pose is a rigid-body transform: a translation and a rotation, applied
// rotation-then-translation when mapping a point from local to parent
// coordinates.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
	Transform(r3.Vector) r3.Vector
}

type pose struct {
	point       r3.Vector
	orientation Orientation
}

// NewPose returns a Pose translating by point and rotating by orientation.
func NewPose(point r3.Vector, orientation Orientation) Pose {
	return &pose{point: point, orientation: orientation}
}

// NewPoseFromPoint returns a Pose with no rotation.
func NewPoseFromPoint(point r3.Vector) Pose {
	return &pose{point: point, orientation: NewZeroOrientation()}
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return &pose{orientation: NewZeroOrientation()}
}

func (p *pose) Point() r3.Vector {
	return p.point
}

func (p *pose) Orientation() Orientation {
	return p.orientation
}

// Transform maps a point from this pose's local frame into its parent frame.
func (p *pose) Transform(v r3.Vector) r3.Vector {
	return p.orientation.Rotate(v).Add(p.point)
}

// Compose returns the pose equivalent to chaining a and b: a point in b's
// local frame is mapped through b and then through a into a's parent frame.
func Compose(a, b Pose) Pose {
	return &pose{
		point:       a.Transform(b.Point()),
		orientation: b.Orientation().Compose(a.Orientation()),
	}
}
