package mu

import (
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Mu is a complete model: the object tree plus its material and texture
// tables. Materials and Textures must already be sorted by index.
type Mu struct {
	Name      string
	Root      *Object
	Materials []*Material
	Textures  []*Texture
}

type Transform struct {
	Name          string
	LocalPosition mgl64.Vec3
	LocalRotation mgl64.Quat
	LocalScale    mgl64.Vec3
}

func (t *Transform) write(w *Writer) {
	w.String(t.Name)
	w.Vector64(t.LocalPosition)
	w.Quaternion(t.LocalRotation)
	w.Vector64(t.LocalScale)
}

type TagAndLayer struct {
	Tag   string
	Layer int32
}

func (t *TagAndLayer) write(w *Writer) {
	w.Entry(EntryTagAndLayer)
	w.String(t.Tag)
	w.Int(t.Layer)
}

// Object is one node of the emitted tree.
type Object struct {
	Transform   Transform
	TagAndLayer *TagAndLayer
	Collider    Collider
	SharedMesh  *Mesh
	Renderer    *Renderer
	Animation   *Animation
	Camera      *Camera
	Light       *Light
	Children    []*Object
}

func NewObject(t Transform) *Object {
	return &Object{Transform: t}
}

func (o *Object) AddChild(child *Object) {
	o.Children = append(o.Children, child)
}

// Walk visits o and every descendant depth first, parents before children.
func (o *Object) Walk(fn func(*Object)) {
	fn(o)
	for _, c := range o.Children {
		c.Walk(fn)
	}
}

func (o *Object) write(w *Writer) {
	w.Entry(EntryChildTransformStart)
	o.Transform.write(w)
	if o.TagAndLayer != nil {
		o.TagAndLayer.write(w)
	}
	if o.Collider != nil {
		o.Collider.write(w)
	}
	if o.SharedMesh != nil {
		w.Entry(EntryMeshFilter)
		o.SharedMesh.write(w)
	}
	if o.Renderer != nil {
		w.Entry(EntryMeshRenderer)
		o.Renderer.write(w)
	}
	if o.Animation != nil {
		w.Entry(EntryAnimation)
		o.Animation.write(w)
	}
	if o.Camera != nil {
		w.Entry(EntryCamera)
		o.Camera.write(w)
	}
	if o.Light != nil {
		w.Entry(EntryLight)
		o.Light.write(w)
	}
	for _, c := range o.Children {
		c.write(w)
	}
	w.Entry(EntryChildTransformEnd)
}

func (m *Mu) Write(out io.Writer) error {
	if m.Root == nil {
		return errors.Errorf("Model %q has no root object", m.Name)
	}
	w := NewWriter(out)
	w.Int(ModelBinary)
	w.Int(FileVersion)
	w.String(m.Name)
	m.Root.write(w)
	if len(m.Materials) > 0 {
		w.Entry(EntryMaterials)
		w.Int(int32(len(m.Materials)))
		for _, mat := range m.Materials {
			mat.write(w)
		}
	}
	if len(m.Textures) > 0 {
		w.Entry(EntryTextures)
		w.Int(int32(len(m.Textures)))
		for _, tex := range m.Textures {
			w.String(tex.Name)
			w.Int(int32(tex.Type))
		}
	}
	return w.Flush()
}

func (m *Mu) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	if err := m.Write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "Failed to write model to %q", path)
	}
	return errors.Wrapf(f.Close(), "Failed to close %q", path)
}
