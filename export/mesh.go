package export

import (
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// MeshMaker turns an object's geometry into an engine mesh.
type MeshMaker interface {
	MakeMesh(m *Model, obj *scene.Object) (*mu.Mesh, error)
}

// DefaultMeshMaker copies the already triangulated vertex data and
// flips triangle winding for the left-handed target.
type DefaultMeshMaker struct{}

func (DefaultMeshMaker) MakeMesh(m *Model, obj *scene.Object) (*mu.Mesh, error) {
	src, ok := obj.Data.(*scene.Mesh)
	if !ok {
		return nil, errors.Errorf("Object %q has no mesh data", obj.Name)
	}
	return convertMesh(src)
}

func convertMesh(src *scene.Mesh) (*mu.Mesh, error) {
	out := &mu.Mesh{
		Verts:    append([]vec3.T(nil), src.Vertices...),
		UVs:      append([]vec2.T(nil), src.UVs...),
		UV2s:     append([]vec2.T(nil), src.UV2s...),
		Normals:  append([]vec3.T(nil), src.Normals...),
		Tangents: append([]vec4.T(nil), src.Tangents...),
		Colors:   append([][4]float32(nil), src.Colors...),
	}
	nverts := uint32(len(src.Vertices))
	for si, sub := range src.Submeshes {
		if len(sub)%3 != 0 {
			return nil, errors.Errorf("Mesh %q submesh %d has %d indices, not a triangle list", src.Name, si, len(sub))
		}
		tris := make([]int32, len(sub))
		for i := 0; i < len(sub); i += 3 {
			a, b, c := sub[i], sub[i+1], sub[i+2]
			if a >= nverts || b >= nverts || c >= nverts {
				return nil, errors.Errorf("Mesh %q submesh %d references a vertex past %d", src.Name, si, nverts)
			}
			tris[i], tris[i+1], tris[i+2] = int32(a), int32(c), int32(b)
		}
		out.Submeshes = append(out.Submeshes, tris)
	}
	return out, nil
}
