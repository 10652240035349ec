package export

import "github.com/flywave/go-muexport/scene"

// Capturer lets a model type claim children that are recorded on the
// model instead of being built into the tree.
type Capturer interface {
	MaybeCapture(m *Model, child *scene.Object) bool
}

// childCapture claims children by their own model type.
type childCapture map[scene.ModelType]func(m *Model, child *scene.Object) bool

func (c childCapture) MaybeCapture(m *Model, child *scene.Object) bool {
	fn, ok := c[child.Props.ModelType]
	return ok && fn(m, child)
}

// captureInternal keeps the first internal space. Later ones are still
// claimed so they never reach the tree.
func captureInternal(m *Model, child *scene.Object) bool {
	if m.Internal == nil {
		m.Internal = child
	}
	return true
}

func captureProp(m *Model, child *scene.Object) bool {
	m.Props = append(m.Props, child)
	return true
}

var capturers = map[scene.ModelType]Capturer{
	scene.ModelNone:     childCapture{},
	scene.ModelPart:     childCapture{scene.ModelInternal: captureInternal},
	scene.ModelProp:     childCapture{},
	scene.ModelInternal: childCapture{scene.ModelProp: captureProp},
}

// capturerFor is keyed by the root object's own type, so an untyped root
// captures nothing.
func capturerFor(t scene.ModelType) Capturer {
	if c, ok := capturers[t]; ok {
		return c
	}
	return childCapture{}
}

// resolveModelType picks the object's type, then the scene default, then
// the configured fallback.
func resolveModelType(obj *scene.Object, sceneType, fallback scene.ModelType) scene.ModelType {
	for _, t := range []scene.ModelType{obj.Props.ModelType, sceneType, fallback} {
		if t != "" && t != scene.ModelNone {
			return t
		}
	}
	return scene.ModelNone
}
