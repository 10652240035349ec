package asset3d

import (
	"os"
	"path/filepath"

	gobj "github.com/flywave/go-obj"
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
)

// ObjToScene imports a Wavefront OBJ file as one mesh object, converted
// from Y-up to Z-up. Faces are grouped into submeshes by material in
// first use order.
type ObjToScene struct {
	currentPath string
}

func (obj *ObjToScene) Convert(path string) (*scene.Scene, error) {
	obj.currentPath = path
	reader := &gobj.ObjReader{}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := reader.Read(file); err != nil {
		return nil, err
	}

	name := sceneName(path)
	mh := &scene.Mesh{Name: name}
	slots := make(map[string]int)
	var order []string
	for _, face := range reader.F {
		if len(face.Corners) < 3 {
			continue
		}
		matName := face.Material
		if matName == "" {
			matName = "default"
		}
		slot, ok := slots[matName]
		if !ok {
			slot = len(mh.Submeshes)
			slots[matName] = slot
			order = append(order, matName)
			mh.Submeshes = append(mh.Submeshes, nil)
		}
		for _, tri := range obj.triangulateFace(face) {
			mh.Submeshes[slot] = obj.addTriangle(mh, mh.Submeshes[slot], tri, reader)
		}
	}
	mh.Materials = obj.createMaterials(reader, order)

	sc := scene.New(name)
	sc.AddRoot(scene.NewObject(name, mh))
	return sc, nil
}

func (obj *ObjToScene) createMaterials(reader *gobj.ObjReader, order []string) []*scene.Material {
	var objMaterials map[string]*gobj.Material
	if reader.MTL != "" {
		mtlPath := reader.MTL
		if !filepath.IsAbs(mtlPath) {
			mtlPath = filepath.Join(filepath.Dir(obj.currentPath), reader.MTL)
		}
		loaded, err := gobj.ReadMaterials(mtlPath)
		if err != nil {
			logger.Warn("material library not loaded", zap.String("path", mtlPath), zap.Error(err))
		} else {
			objMaterials = loaded
		}
	}

	materials := make([]*scene.Material, len(order))
	for i, name := range order {
		objMat := objMaterials[name]
		if objMat == nil {
			materials[i] = diffuseMaterial(name, [4]float64{0.8, 0.8, 0.8, 1}, "")
			continue
		}
		materials[i] = obj.convertMaterial(name, objMat)
	}
	return materials
}

func (obj *ObjToScene) convertMaterial(name string, objMat *gobj.Material) *scene.Material {
	color := [4]float64{1, 1, 1, 1}
	for i := 0; i < 3 && i < len(objMat.Diffuse); i++ {
		color[i] = float64(objMat.Diffuse[i])
	}
	if objMat.Opacity > 0 {
		color[3] = float64(objMat.Opacity)
	}
	mat := diffuseMaterial(name, color, obj.texturePath(objMat.DiffuseTexture))
	if bump := obj.texturePath(objMat.BumpTexture); bump != "" {
		slot := scene.NewTextureSlot("_BumpMap", sceneName(bump))
		slot.NormalMap = true
		slot.Image = probeImage(bump)
		mat.Textures = append(mat.Textures, slot)
		mat.ShaderName = "KSP/Bumped"
	}
	return mat
}

// texturePath resolves a texture next to the OBJ file, falling back to
// its base name when the stored relative path does not exist.
func (obj *ObjToScene) texturePath(texturePath string) string {
	if texturePath == "" {
		return ""
	}
	objDir := filepath.Dir(obj.currentPath)
	fullPath := resolvePath(objDir, texturePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		alt := filepath.Join(objDir, filepath.Base(texturePath))
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return fullPath
}

func (obj *ObjToScene) triangulateFace(face gobj.Face) [][]gobj.FaceCorner {
	if len(face.Corners) == 3 {
		return [][]gobj.FaceCorner{face.Corners}
	}
	var triangles [][]gobj.FaceCorner
	for i := 1; i < len(face.Corners)-1; i++ {
		triangles = append(triangles, []gobj.FaceCorner{face.Corners[0], face.Corners[i], face.Corners[i+1]})
	}
	return triangles
}

func zUp(v vec3.T) vec3.T {
	return vec3.T{v[0], -v[2], v[1]}
}

// addTriangle appends three fresh vertices. Corners without a normal get
// the face normal.
func (obj *ObjToScene) addTriangle(mh *scene.Mesh, sub []uint32, tri []gobj.FaceCorner, reader *gobj.ObjReader) []uint32 {
	var positions [3]vec3.T
	for i, corner := range tri {
		if corner.VertexIndex >= 0 && corner.VertexIndex < len(reader.V) {
			positions[i] = reader.V[corner.VertexIndex]
		}
	}
	flat := obj.calculateNormal(positions[0], positions[1], positions[2])
	for i, corner := range tri {
		sub = append(sub, uint32(len(mh.Vertices)))
		mh.Vertices = append(mh.Vertices, zUp(positions[i]))
		uv := vec2.T{}
		if corner.TexcoordIndex >= 0 && corner.TexcoordIndex < len(reader.VT) {
			uv = reader.VT[corner.TexcoordIndex]
		}
		mh.UVs = append(mh.UVs, uv)
		n := flat
		if corner.NormalIndex >= 0 && corner.NormalIndex < len(reader.VN) {
			n = reader.VN[corner.NormalIndex]
		}
		mh.Normals = append(mh.Normals, zUp(n))
	}
	return sub
}

func (obj *ObjToScene) calculateNormal(v0, v1, v2 vec3.T) vec3.T {
	e1 := vec3.Sub(&v1, &v0)
	e2 := vec3.Sub(&v2, &v0)
	normal := vec3.Cross(&e1, &e2)
	length := normal.Length()
	if length > 0 {
		return vec3.T{normal[0] / length, normal[1] / length, normal[2] / length}
	}
	return vec3.T{0, 1, 0}
}
