package asset3d

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	mat4d "github.com/flywave/go3d/float64/mat4"
	vec3d "github.com/flywave/go3d/float64/vec3"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	fbx "github.com/flywave/ofbx"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/scene"
)

// FbxToScene imports the meshes of an FBX file. Each mesh becomes a root
// object with its global matrix baked into the vertices, converted from
// Y-up to Z-up.
type FbxToScene struct {
	baseDir string
}

func (cv *FbxToScene) Convert(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fs, err := fbx.Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse fbx")
	}
	cv.baseDir = filepath.Dir(path)

	sc := scene.New(sceneName(path))
	seen := make(map[uint64]bool)
	for _, mh := range fs.Meshes {
		if seen[mh.ID()] {
			continue
		}
		seen[mh.ID()] = true
		data, err := cv.convertMesh(mh)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to convert mesh %q", mh.Name())
		}
		sc.AddRoot(scene.NewObject(mh.Name(), data))
	}
	return sc, nil
}

func yUpToZUp(x, y, z float64) vec3.T {
	return vec3.T{float32(x), float32(-z), float32(y)}
}

func (cv *FbxToScene) convertMesh(mh *fbx.Mesh) (*scene.Mesh, error) {
	g := mh.Geometry
	if g == nil {
		return nil, errors.New("mesh has no geometry")
	}
	gm := fbx.GetGlobalMatrix(mh)
	mary := gm.ToArray()
	matrix := mat4d.FromArray(mary)
	normalMat := mgl64.Mat4(mary).Mat3().Inv().Transpose()

	out := &scene.Mesh{Name: mh.Name()}
	uvs := g.UVs[0]
	batchs := g.Materials
	if len(batchs) == 0 {
		batchs = make([]int, len(g.Faces))
	}
	slots := make(map[int]int)

	for i, face := range g.Faces {
		if len(face) < 3 {
			continue
		}
		batchId := 0
		if i < len(batchs) {
			batchId = batchs[i]
		}
		slot, ok := slots[batchId]
		if !ok {
			var mt *fbx.Material
			if batchId < len(mh.Materials) {
				mt = mh.Materials[batchId]
			}
			slot = len(out.Submeshes)
			slots[batchId] = slot
			out.Submeshes = append(out.Submeshes, nil)
			out.Materials = append(out.Materials, cv.convertMaterial(mt, fmt.Sprintf("%s_%d", mh.Name(), batchId)))
		}

		pts := make([]*vec3d.T, len(face))
		for k, f := range face {
			if f < 0 || f >= len(g.Vertices) {
				return nil, errors.Errorf("face %d references vertex %d of %d", i, f, len(g.Vertices))
			}
			v := g.Vertices[f]
			pts[k] = &vec3d.T{float64(v[0]), float64(v[1]), float64(v[2])}
		}
		for _, tri := range triangulate(face, pts) {
			for _, f := range tri {
				vt := g.Vertices[f]
				p := matrix.MulVec3(&vec3d.T{float64(vt[0]), float64(vt[1]), float64(vt[2])})
				out.Submeshes[slot] = append(out.Submeshes[slot], uint32(len(out.Vertices)))
				out.Vertices = append(out.Vertices, yUpToZUp(p[0], p[1], p[2]))
				if f < len(uvs) {
					out.UVs = append(out.UVs, vec2.T{float32(uvs[f][0]), float32(uvs[f][1])})
				}
				if f < len(g.Normals) {
					n := g.Normals[f]
					wn := normalMat.Mul3x1(mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])}).Normalize()
					out.Normals = append(out.Normals, yUpToZUp(wn[0], wn[1], wn[2]))
				}
			}
		}
	}
	if len(out.UVs) != len(out.Vertices) {
		out.UVs = nil
	}
	if len(out.Normals) != len(out.Vertices) {
		out.Normals = nil
	}
	return out, nil
}

// triangulate splits a polygon of corner indices. Quads are cut along the
// shorter diagonal, other polygons are fanned from the first corner.
func triangulate(face []int, pts []*vec3d.T) [][]int {
	switch len(face) {
	case 3:
		return [][]int{face}
	case 4:
		return quadToTriangles(face, pts)
	case 5:
		return pentagonToTriangles(face)
	}
	tris := make([][]int, 0, len(face)-2)
	for i := 1; i+1 < len(face); i++ {
		tris = append(tris, []int{face[0], face[i], face[i+1]})
	}
	return tris
}

func pentagonToTriangles(pent []int) [][]int {
	return [][]int{
		{pent[0], pent[1], pent[2]},
		{pent[0], pent[2], pent[4]},
		{pent[2], pent[3], pent[4]},
	}
}

func quadToTriangles(quad []int, pts []*vec3d.T) [][]int {
	if distance(pts[0], pts[2]) <= distance(pts[1], pts[3]) {
		return [][]int{
			{quad[0], quad[1], quad[2]},
			{quad[0], quad[2], quad[3]},
		}
	}
	return [][]int{
		{quad[0], quad[1], quad[3]},
		{quad[1], quad[2], quad[3]},
	}
}

func distance(a, b *vec3d.T) float64 {
	d := vec3d.Sub(a, b)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

func (cv *FbxToScene) texturePath(tex *fbx.Texture) string {
	str := strings.ReplaceAll(tex.GetRelativeFileName().String(), "\\", "/")
	_, fileName := filepath.Split(str)
	return filepath.Join(cv.baseDir, fileName)
}

func (cv *FbxToScene) convertMaterial(mt *fbx.Material, name string) *scene.Material {
	if mt == nil {
		return diffuseMaterial(name, [4]float64{1, 1, 1, 1}, "")
	}
	color := [4]float64{float64(mt.DiffuseColor.R), float64(mt.DiffuseColor.G), float64(mt.DiffuseColor.B), 1}
	var diffuse string
	if mt.Textures[0] != nil {
		diffuse = cv.texturePath(mt.Textures[0])
	}
	mat := diffuseMaterial(name, color, diffuse)
	if mt.Textures[1] != nil {
		f := cv.texturePath(mt.Textures[1])
		slot := scene.NewTextureSlot("_BumpMap", sceneName(f))
		slot.NormalMap = true
		slot.Image = probeImage(f)
		mat.Textures = append(mat.Textures, slot)
		mat.ShaderName = "KSP/Bumped"
	}
	return mat
}
