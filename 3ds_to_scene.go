package asset3d

import (
	"fmt"
	"os"
	"path/filepath"

	tds "github.com/flywave/go-3ds"
	dmat "github.com/flywave/go3d/float64/mat4"
	quat "github.com/flywave/go3d/float64/quaternion"
	dvec3 "github.com/flywave/go3d/float64/vec3"
	dvec4 "github.com/flywave/go3d/float64/vec4"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/scene"
)

// ThreeDsToScene imports 3DS meshes. 3DS is Z-up already. Meshes named by
// an instance node take that node's transform.
type ThreeDsToScene struct {
	baseDir string
	mtls    map[int32]*scene.Material
}

func (cv *ThreeDsToScene) Convert(path string) (*scene.Scene, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	f := tds.OpenFile(path)
	mhs := f.GetMeshs()
	mtls := f.GetMaterials()
	ndMap := make(map[string]*tds.MeshInstanceNode)
	for _, nd := range f.GetMeshInstanceNode() {
		ndMap[nd.InstanceName] = nd
	}
	cv.baseDir = filepath.Dir(path)
	cv.mtls = make(map[int32]*scene.Material)

	sc := scene.New(sceneName(path))
	for i := range mhs {
		m := &mhs[i]
		data, err := cv.convertMesh(m, mtls)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to convert mesh %q", m.Name)
		}
		obj := scene.NewObject(m.Name, data)
		if nd, ok := ndMap[m.Name]; ok {
			setTransform(obj, instanceMatrix(nd))
		}
		sc.AddRoot(obj)
	}
	return sc, nil
}

func (cv *ThreeDsToScene) convertMesh(m *tds.Mesh, mtls []tds.Material) (*scene.Mesh, error) {
	mat := dmat.Ident
	for i, r := range m.Matrix {
		mat[i] = dvec4.T{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])}
	}
	out := &scene.Mesh{Name: m.Name}
	for _, v := range m.Vertices {
		vt := mat.MulVec3(&dvec3.T{float64(v[0]), float64(v[1]), float64(v[2])})
		out.Vertices = append(out.Vertices, vec3.T{float32(vt[0]), float32(vt[1]), float32(vt[2])})
	}
	if len(m.Texcos) == len(m.Vertices) {
		for _, v := range m.Texcos {
			out.UVs = append(out.UVs, vec2.T{v[0], v[1]})
		}
	}

	slots := make(map[int32]int)
	n := uint32(len(out.Vertices))
	for _, face := range m.Faces {
		for _, ix := range face.Index {
			if uint32(ix) >= n {
				return nil, errors.Errorf("face references vertex %d of %d", ix, n)
			}
		}
		slot, ok := slots[face.Material]
		if !ok {
			slot = len(out.Submeshes)
			slots[face.Material] = slot
			out.Submeshes = append(out.Submeshes, nil)
			out.Materials = append(out.Materials, cv.convertMaterial(face.Material, mtls))
		}
		out.Submeshes[slot] = append(out.Submeshes[slot],
			uint32(face.Index[0]), uint32(face.Index[1]), uint32(face.Index[2]))
	}
	return out, nil
}

// cString cuts a fixed size name at its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (cv *ThreeDsToScene) convertMaterial(idx int32, mtls []tds.Material) *scene.Material {
	if mat, ok := cv.mtls[idx]; ok {
		return mat
	}
	name := fmt.Sprintf("material%d", idx)
	var mat *scene.Material
	if idx < 0 || int(idx) >= len(mtls) {
		mat = diffuseMaterial(name, [4]float64{1, 1, 1, 1}, "")
	} else {
		m := &mtls[idx]
		color := [4]float64{float64(m.Diffuse[0]), float64(m.Diffuse[1]), float64(m.Diffuse[2]), 1 - float64(m.Transparency)}
		texPath := cString(m.Texture1Map.Name[:])
		if texPath != "" {
			texPath = resolvePath(cv.baseDir, texPath)
		}
		mat = diffuseMaterial(name, color, texPath)
	}
	cv.mtls[idx] = mat
	return mat
}

// instanceMatrix composes the keyframer transform of an instance node.
func instanceMatrix(nd *tds.MeshInstanceNode) mgl64.Mat4 {
	m := &dmat.T{}
	q := quat.FromVec4(&dvec4.T{float64(nd.Rot[0]), float64(nd.Rot[1]), float64(nd.Rot[2]), float64(nd.Rot[3])})
	t := &dvec3.T{float64(nd.Pos[0]), float64(nd.Pos[1]), float64(nd.Pos[2])}
	s := &dvec3.T{float64(nd.Scl[0]), float64(nd.Scl[1]), float64(nd.Scl[2])}
	m.AssignQuaternion(&q)
	m.ScaleVec3(s)
	m.Translate(t)
	var out mgl64.Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			out[c*4+r] = m[c][r]
		}
	}
	return out
}
