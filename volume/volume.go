// Package volume measures exported geometry: the summed mesh volume and
// the volume of the model-space bounding box.
package volume

import (
	"math"

	"github.com/flywave/go3d/float64/vec3"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/flywave/go-muexport/scene"
)

func transform(m mgl64.Mat4, v [3]float32) vec3.T {
	p := m.Mul4x1(mgl64.Vec4{float64(v[0]), float64(v[1]), float64(v[2]), 1})
	return vec3.T{p[0], p[1], p[2]}
}

// MeshVolume is the signed volume enclosed by the triangles of mesh after
// applying m. Closed meshes with outward winding give a positive value.
func MeshVolume(mesh *scene.Mesh, m mgl64.Mat4) float64 {
	pts := make([]vec3.T, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		pts[i] = transform(m, v)
	}
	n := len(pts)
	var vol float64
	for _, sub := range mesh.Submeshes {
		for i := 0; i+2 < len(sub); i += 3 {
			if int(sub[i]) >= n || int(sub[i+1]) >= n || int(sub[i+2]) >= n {
				continue
			}
			a, b, c := pts[sub[i]], pts[sub[i+1]], pts[sub[i+2]]
			cross := vec3.Cross(&b, &c)
			vol += vec3.Dot(&a, &cross)
		}
	}
	return vol / 6
}

// ModelVolume walks the meshes below root in root-local space. skin is
// the summed absolute mesh volume, ext the volume of their bounding box.
func ModelVolume(root *scene.Object) (skin, ext float64) {
	inverse := root.MatrixWorld().Inv()
	box := vec3.MinBox
	empty := true
	root.Walk(func(o *scene.Object) {
		mesh, ok := o.Data.(*scene.Mesh)
		if !ok || len(mesh.Vertices) == 0 {
			return
		}
		local := inverse.Mul4(o.MatrixWorld())
		skin += math.Abs(MeshVolume(mesh, local))
		for _, v := range mesh.Vertices {
			p := transform(local, v)
			box.Extend(&p)
		}
		empty = false
	})
	if empty {
		return 0, 0
	}
	size := vec3.Sub(&box.Max, &box.Min)
	return skin, size[0] * size[1] * size[2]
}
