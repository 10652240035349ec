package export

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// Empties display along +Z, the engine looks along its +Z which is the
// tool's +Y: turn attachment nodes +90 degrees about local X.
var attachNodeFix = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})

// Lights and cameras point along local -Z in the tool: turn them -90
// degrees about local X.
var forwardFix = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})

// roleFixes holds the per-role correction; roles not listed get none.
// Attachment nodes are Empties and get attachNodeFix from the empty step.
var roleFixes = map[Role]mgl64.Quat{
	RoleLight:  forwardFix,
	RoleCamera: forwardFix,
}

// convertTransform copies the local transform. Axis conversion happens
// when the tree is written.
func convertTransform(obj *scene.Object) mu.Transform {
	return mu.Transform{
		Name:          StripNNN(obj.Name),
		LocalPosition: obj.Location,
		LocalRotation: obj.Rotation(),
		LocalScale:    obj.Scale,
	}
}

// applyFix right-multiplies the node rotation, i.e. rotates in local space.
func applyFix(t *mu.Transform, fix mgl64.Quat) {
	t.LocalRotation = t.LocalRotation.Mul(fix)
}
