package mu

import "github.com/flywave/go3d/vec2"

// VectorProperty is a color or vector slot (always four components).
type VectorProperty struct {
	Name  string
	Value [4]float32
}

type FloatProperty struct {
	Name  string
	Value float32
}

// MatTex references a texture table entry from a material slot.
type MatTex struct {
	Index  int32
	Scale  vec2.T
	Offset vec2.T
}

type TextureProperty struct {
	Name string
	Tex  MatTex
}

// Material buckets keep their insertion order.
type Material struct {
	Name       string
	Index      int32
	ShaderName string
	Colors     []VectorProperty
	Vectors    []VectorProperty
	Floats2    []FloatProperty
	Floats3    []FloatProperty
	Textures   []TextureProperty
}

func (m *Material) PropertyCount() int {
	return len(m.Colors) + len(m.Vectors) + len(m.Floats2) + len(m.Floats3) + len(m.Textures)
}

func (m *Material) write(w *Writer) {
	w.String(m.Name)
	w.String(m.ShaderName)
	w.Int(int32(m.PropertyCount()))
	for _, p := range m.Colors {
		w.String(p.Name)
		w.Int(int32(PropColor))
		w.Color(p.Value)
	}
	for _, p := range m.Vectors {
		w.String(p.Name)
		w.Int(int32(PropVector))
		w.Floats(p.Value[0], p.Value[1], p.Value[2], p.Value[3])
	}
	for _, p := range m.Floats2 {
		w.String(p.Name)
		w.Int(int32(PropFloat2))
		w.Float(p.Value)
	}
	for _, p := range m.Floats3 {
		w.String(p.Name)
		w.Int(int32(PropFloat3))
		w.Float(p.Value)
	}
	for _, p := range m.Textures {
		w.String(p.Name)
		w.Int(int32(PropTexture))
		w.Int(p.Tex.Index)
		w.Vector2(p.Tex.Scale)
		w.Vector2(p.Tex.Offset)
	}
}

type Texture struct {
	Name  string
	Type  TextureType
	Index int32
}
