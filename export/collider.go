package export

import (
	"github.com/flywave/go3d/vec3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// ColliderMaker builds the collider record for a collider object. The
// record is attached to the object's parent.
type ColliderMaker interface {
	MakeCollider(m *Model, obj *scene.Object) (mu.Collider, error)
}

// DefaultColliderMaker reads the collider settings from the object's
// properties. Mesh colliders use Meshes for their geometry.
type DefaultColliderMaker struct {
	Meshes MeshMaker
	Logger *zap.Logger
}

func toVec3(v [3]float64) vec3.T {
	return vec3.T{float32(v[0]), float32(v[1]), float32(v[2])}
}

func toSpring(s scene.Spring) mu.Spring {
	return mu.Spring{Spring: float32(s.Spring), Damper: float32(s.Damper), TargetPosition: float32(s.TargetPosition)}
}

func toFriction(f scene.Friction) mu.Friction {
	return mu.Friction{
		ExtremumSlip:   float32(f.ExtremumSlip),
		ExtremumValue:  float32(f.ExtremumValue),
		AsymptoteSlip:  float32(f.AsymptoteSlip),
		AsymptoteValue: float32(f.AsymptoteValue),
		Stiffness:      float32(f.Stiffness),
	}
}

func (c DefaultColliderMaker) MakeCollider(m *Model, obj *scene.Object) (mu.Collider, error) {
	p := &obj.Props
	switch p.Collider {
	case scene.ColliderMesh:
		col := &mu.MeshCollider{IsTrigger: p.IsTrigger, Convex: true}
		if _, ok := obj.Data.(*scene.Mesh); ok && c.Meshes != nil {
			mesh, err := c.Meshes.MakeMesh(m, obj)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to build collision mesh for %q", obj.Name)
			}
			col.Mesh = mesh
		} else {
			if c.Logger != nil {
				c.Logger.Warn("mesh collider without mesh data", zap.String("object", obj.Name))
			}
			col.Mesh = &mu.Mesh{}
		}
		return col, nil
	case scene.ColliderSphere:
		return &mu.SphereCollider{IsTrigger: p.IsTrigger, Radius: float32(p.Radius), Center: toVec3(p.Center)}, nil
	case scene.ColliderCapsule:
		return &mu.CapsuleCollider{
			IsTrigger: p.IsTrigger,
			Radius:    float32(p.Radius),
			Height:    float32(p.Height),
			Direction: p.Direction.Axis(),
			Center:    toVec3(p.Center),
		}, nil
	case scene.ColliderBox:
		return &mu.BoxCollider{IsTrigger: p.IsTrigger, Size: toVec3(p.Size), Center: toVec3(p.Center)}, nil
	case scene.ColliderWheel:
		return &mu.WheelCollider{
			Mass:               float32(p.Mass),
			Radius:             float32(p.Radius),
			SuspensionDistance: float32(p.SuspensionDistance),
			Center:             toVec3(p.Center),
			SuspensionSpring:   toSpring(p.SuspensionSpring),
			ForwardFriction:    toFriction(p.ForwardFriction),
			SidewaysFriction:   toFriction(p.SideFriction),
		}, nil
	}
	return nil, errors.Errorf("Unknown collider kind %q on %q", p.Collider, obj.Name)
}
