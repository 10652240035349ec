package export

import (
	"strings"

	"github.com/flywave/go-muexport/scene"
)

// Role is what an object becomes in the output tree.
type Role int

const (
	RoleEmpty Role = iota
	RoleRenderableMesh
	RoleLight
	RoleCamera
	RoleGroupInstance
	RoleColliderOwner
	RoleSkip
)

var roleNames = [...]string{
	RoleEmpty:          "Empty",
	RoleRenderableMesh: "RenderableMesh",
	RoleLight:          "Light",
	RoleCamera:         "Camera",
	RoleGroupInstance:  "GroupInstance",
	RoleColliderOwner:  "ColliderOwner",
	RoleSkip:           "Skip",
}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return "Unknown"
	}
	return roleNames[r]
}

// Classify decides the role of an object reached by the traversal.
func Classify(obj *scene.Object) Role {
	if obj.Data == nil {
		if obj.DupliGroup != nil {
			return RoleGroupInstance
		}
		return RoleEmpty
	}
	if obj.Props.HasCollider() {
		return RoleColliderOwner
	}
	switch obj.Data.(type) {
	case *scene.Mesh:
		return RoleRenderableMesh
	case *scene.Light:
		return RoleLight
	case *scene.Camera:
		return RoleCamera
	}
	return RoleSkip
}

// exportable is false for objects whose data kind is unknown; those are
// pruned with their whole subtree.
func exportable(obj *scene.Object) bool {
	if obj.Data == nil {
		return true
	}
	switch obj.Data.(type) {
	case *scene.Mesh, *scene.Light, *scene.Camera:
		return true
	}
	return false
}

const attachNodePrefix = "node_"

func isAttachNodeName(name string) bool {
	return strings.HasPrefix(name, attachNodePrefix)
}

func isOffsetMarker(name string) bool {
	switch name {
	case CoMOffset, CoPOffset, CoLOffset:
		return true
	}
	return false
}
