// Package export compiles a scene object hierarchy into a Mu model and its
// companion .cfg.
package export

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// Offset marker names. An empty with one of these names records its
// model-relative position in the part config.
const (
	CoMOffset = "CoMOffset"
	CoPOffset = "CoPOffset"
	CoLOffset = "CoLOffset"
)

// Model is everything produced by one export: the object tree, the
// interned resource tables and the data the config emitter needs.
type Model struct {
	Name string
	Type scene.ModelType
	// Inverse is the inverse world matrix of the exported root.
	Inverse mgl64.Mat4
	Root    *mu.Object

	Materials []*mu.Material
	Textures  []*mu.Texture

	materialIndex map[string]int
	textureIndex  map[string]int

	Nodes    []*AttachNode
	Props    []*scene.Object
	Internal *scene.Object
	Offsets  map[string]mgl64.Vec3

	// ObjectPaths indexes every emitted node by its "/" joined path.
	ObjectPaths map[string]*mu.Object

	SkinVolume float64
	ExtVolume  float64

	Timing Timing
	log    *zap.Logger
}

func newModel(name string, typ scene.ModelType, inverse mgl64.Mat4) *Model {
	return &Model{
		Name:          name,
		Type:          typ,
		Inverse:       inverse,
		materialIndex: map[string]int{},
		textureIndex:  map[string]int{},
		Offsets:       map[string]mgl64.Vec3{},
		ObjectPaths:   map[string]*mu.Object{},
	}
}

func (m *Model) logger() *zap.Logger {
	if m.log == nil {
		return zap.NewNop()
	}
	return m.log
}

// Offset returns the recorded offset marker position, if any.
func (m *Model) Offset(name string) (mgl64.Vec3, bool) {
	v, ok := m.Offsets[name]
	return v, ok
}

// Mu returns the serializable model with tables sorted by index.
func (m *Model) Mu() *mu.Mu {
	mats := append([]*mu.Material(nil), m.Materials...)
	sort.SliceStable(mats, func(i, j int) bool { return mats[i].Index < mats[j].Index })
	texs := append([]*mu.Texture(nil), m.Textures...)
	sort.SliceStable(texs, func(i, j int) bool { return texs[i].Index < texs[j].Index })
	return &mu.Mu{
		Name:      m.Name,
		Root:      m.Root,
		Materials: mats,
		Textures:  texs,
	}
}

// localPosition is the translation of o relative to the exported root.
func (m *Model) localPosition(o *scene.Object) mgl64.Vec3 {
	return m.Inverse.Mul4(o.MatrixWorld()).Col(3).Vec3()
}
