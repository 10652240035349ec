package mu

import (
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
)

// Mesh is the engine-side mesh: one vertex table and one index list per
// submesh. Triangle winding must already be in the engine's order.
type Mesh struct {
	Verts     []vec3.T
	UVs       []vec2.T
	UV2s      []vec2.T
	Normals   []vec3.T
	Tangents  []vec4.T
	Colors    [][4]float32
	Submeshes [][]int32
}

func (m *Mesh) write(w *Writer) {
	w.Entry(EntryMeshStart)
	w.Int(int32(len(m.Verts)))
	w.Int(int32(len(m.Submeshes)))
	w.Entry(EntryMeshVerts)
	w.Vectors(m.Verts)
	if len(m.UVs) > 0 {
		w.Entry(EntryMeshUV)
		for i := range m.UVs {
			w.Vector2(m.UVs[i])
		}
	}
	if len(m.UV2s) > 0 {
		w.Entry(EntryMeshUV2)
		for i := range m.UV2s {
			w.Vector2(m.UV2s[i])
		}
	}
	if len(m.Normals) > 0 {
		w.Entry(EntryMeshNormals)
		w.Vectors(m.Normals)
	}
	if len(m.Tangents) > 0 {
		w.Entry(EntryMeshTangents)
		for i := range m.Tangents {
			w.Tangent(m.Tangents[i])
		}
	}
	if len(m.Colors) > 0 {
		w.Entry(EntryMeshVertexColors)
		for i := range m.Colors {
			w.Color(m.Colors[i])
		}
	}
	for _, sub := range m.Submeshes {
		w.Entry(EntryMeshTriangles)
		w.Int(int32(len(sub)))
		w.Ints(sub)
	}
	w.Entry(EntryMeshEnd)
}

// Renderer references materials by table index.
type Renderer struct {
	CastShadows    bool
	ReceiveShadows bool
	Materials      []int32
}

func (r *Renderer) write(w *Writer) {
	w.Bool(r.CastShadows)
	w.Bool(r.ReceiveShadows)
	w.Int(int32(len(r.Materials)))
	w.Ints(r.Materials)
}
