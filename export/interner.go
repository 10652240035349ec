package export

import (
	"github.com/flywave/go3d/vec2"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// internTexture registers the slot's image on first sight and returns a
// reference carrying this use's tiling. Index is the table size at
// insertion, so indices follow first-use order.
func internTexture(m *Model, slot *scene.TextureSlot) mu.MatTex {
	idx, ok := m.textureIndex[slot.Tex]
	if !ok {
		typ := mu.TextureDefault
		if slot.NormalMap {
			typ = mu.TextureNormalMap
		}
		idx = len(m.Textures)
		m.Textures = append(m.Textures, &mu.Texture{Name: slot.Tex, Type: typ, Index: int32(idx)})
		m.textureIndex[slot.Tex] = idx
	}
	return mu.MatTex{
		Index:  int32(idx),
		Scale:  vec2.T{float32(slot.Scale[0]), float32(slot.Scale[1])},
		Offset: vec2.T{float32(slot.Offset[0]), float32(slot.Offset[1])},
	}
}

func vectorProps(in []scene.VectorProperty) []mu.VectorProperty {
	var out []mu.VectorProperty
	for _, p := range in {
		v := mu.VectorProperty{Name: p.Name}
		for i := range p.Value {
			v.Value[i] = float32(p.Value[i])
		}
		out = append(out, v)
	}
	return out
}

func floatProps(in []scene.FloatProperty) []mu.FloatProperty {
	var out []mu.FloatProperty
	for _, p := range in {
		out = append(out, mu.FloatProperty{Name: p.Name, Value: float32(p.Value)})
	}
	return out
}

// internMaterial returns the table entry for mat, building it (and
// interning its textures) the first time the name is seen.
func internMaterial(m *Model, mat *scene.Material) *mu.Material {
	if idx, ok := m.materialIndex[mat.Name]; ok {
		return m.Materials[idx]
	}
	out := &mu.Material{
		Name:       mat.Name,
		Index:      int32(len(m.Materials)),
		ShaderName: mat.ShaderName,
		Colors:     vectorProps(mat.Colors),
		Vectors:    vectorProps(mat.Vectors),
		Floats2:    floatProps(mat.Floats2),
		Floats3:    floatProps(mat.Floats3),
	}
	for i := range mat.Textures {
		slot := &mat.Textures[i]
		out.Textures = append(out.Textures, mu.TextureProperty{Name: slot.Name, Tex: internTexture(m, slot)})
	}
	m.materialIndex[mat.Name] = int(out.Index)
	m.Materials = append(m.Materials, out)
	return out
}

// makeRenderer lists one material index per mesh slot, so a material
// shared by several submeshes appears once for each. Slots without a
// material or shader are skipped. No renderer is produced when nothing
// is left.
func makeRenderer(m *Model, mesh *scene.Mesh, opts *Options) *mu.Renderer {
	r := &mu.Renderer{CastShadows: opts.CastShadows, ReceiveShadows: opts.ReceiveShadows}
	for _, mat := range mesh.Materials {
		if mat == nil || mat.ShaderName == "" {
			continue
		}
		r.Materials = append(r.Materials, internMaterial(m, mat).Index)
	}
	if len(r.Materials) == 0 {
		return nil
	}
	return r
}
