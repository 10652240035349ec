// Package scene is the in-memory object graph the exporter reads: objects
// with transforms and parents, typed data blocks, instancing groups,
// companion texts and per-object export properties.
package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// RotationMode is "QUATERNION" or an Euler order such as "XYZ".
type RotationMode string

const (
	RotationQuaternion RotationMode = "QUATERNION"
	RotationXYZ        RotationMode = "XYZ"
)

type Object struct {
	Name string

	Location           mgl64.Vec3
	RotationMode       RotationMode
	RotationEuler      mgl64.Vec3
	RotationQuaternion mgl64.Quat
	Scale              mgl64.Vec3

	Parent   *Object
	Children []*Object

	// Data is nil for empties.
	Data       Data
	DupliGroup *Group
	UsersGroup []string

	Props     Properties
	Animation *Action
}

func NewObject(name string, data Data) *Object {
	return &Object{
		Name:               name,
		RotationMode:       RotationXYZ,
		RotationQuaternion: mgl64.QuatIdent(),
		Scale:              mgl64.Vec3{1, 1, 1},
		Data:               data,
		Props:              DefaultProperties(),
	}
}

func (o *Object) AddChild(child *Object) {
	if child.Parent != nil {
		child.Parent.removeChild(child)
	}
	child.Parent = o
	o.Children = append(o.Children, child)
}

func (o *Object) removeChild(child *Object) {
	for i, c := range o.Children {
		if c == child {
			o.Children = append(o.Children[:i], o.Children[i+1:]...)
			return
		}
	}
}

// Rotation returns the local rotation as a quaternion whatever the mode.
func (o *Object) Rotation() mgl64.Quat {
	if o.RotationMode == RotationQuaternion {
		return o.RotationQuaternion
	}
	return EulerToQuat(o.RotationEuler, o.RotationMode)
}

// EulerToQuat composes per-axis rotations. For order "ABC" the A rotation
// is applied first, so the result is C * B * A.
func EulerToQuat(e mgl64.Vec3, order RotationMode) mgl64.Quat {
	if order == "" || order == RotationQuaternion {
		order = RotationXYZ
	}
	q := mgl64.QuatIdent()
	for _, axis := range strings.ToUpper(string(order)) {
		var r mgl64.Quat
		switch axis {
		case 'X':
			r = mgl64.QuatRotate(e[0], mgl64.Vec3{1, 0, 0})
		case 'Y':
			r = mgl64.QuatRotate(e[1], mgl64.Vec3{0, 1, 0})
		case 'Z':
			r = mgl64.QuatRotate(e[2], mgl64.Vec3{0, 0, 1})
		default:
			continue
		}
		q = r.Mul(q)
	}
	return q
}

// MatrixLocal is translation * rotation * scale.
func (o *Object) MatrixLocal() mgl64.Mat4 {
	t := mgl64.Translate3D(o.Location[0], o.Location[1], o.Location[2])
	r := o.Rotation().Mat4()
	s := mgl64.Scale3D(o.Scale[0], o.Scale[1], o.Scale[2])
	return t.Mul4(r).Mul4(s)
}

func (o *Object) MatrixWorld() mgl64.Mat4 {
	m := o.MatrixLocal()
	for p := o.Parent; p != nil; p = p.Parent {
		m = p.MatrixLocal().Mul4(m)
	}
	return m
}

func (o *Object) InGroup(name string) bool {
	for _, g := range o.UsersGroup {
		if g == name {
			return true
		}
	}
	return false
}

// IsGroupRoot reports whether every ancestor of o belongs to g, i.e. the
// group instance can reach o without leaving the group.
func (o *Object) IsGroupRoot(g *Group) bool {
	for p := o.Parent; p != nil; p = p.Parent {
		if !p.InGroup(g.Name) {
			return false
		}
	}
	return true
}

// Walk visits o and its descendants, parents first.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}
