// Package asset3d imports scene files into the exporter's object graph.
package asset3d

import (
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/scene"
)

const (
	THREEDS = "3ds"
	DAE     = "dae"
	FBX     = "fbx"
	GLTF    = "gltf"
	GLB     = "glb"
	OBJ     = "obj"
	YAML    = "yaml"
	YML     = "yml"
)

var ErrUnknownFormat = errors.New("unknown scene format")

// SceneConvert reads a file into a scene.
type SceneConvert interface {
	Convert(path string) (*scene.Scene, error)
}

func FormatFactory(format string) SceneConvert {
	switch strings.ToLower(format) {
	case THREEDS:
		return &ThreeDsToScene{}
	case DAE:
		return &DaeToScene{}
	case FBX:
		return &FbxToScene{}
	case GLTF, GLB:
		return &GltfToScene{}
	case OBJ:
		return &ObjToScene{}
	case YAML, YML:
		return &YamlToScene{}
	}
	return nil
}

// FormatOf is the lower-case extension of path without the dot.
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Load picks an importer from the file extension.
func Load(path string) (*scene.Scene, error) {
	cv := FormatFactory(FormatOf(path))
	if cv == nil {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", path)
	}
	sc, err := cv.Convert(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to import %q", path)
	}
	return sc, nil
}

func sceneName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// resolvePath makes a texture reference relative to the scene file's
// directory unless it is absolute.
func resolvePath(dir, ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	if ref == "" || filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(dir, ref)
}

// diffuseMaterial is the material importers build when the source only
// knows a color and an optional diffuse map.
func diffuseMaterial(name string, color [4]float64, texPath string) *scene.Material {
	mat := &scene.Material{
		Name:       name,
		ShaderName: scene.DefaultShader,
		Colors:     []scene.VectorProperty{{Name: "_Color", Value: color}},
	}
	if texPath != "" {
		slot := scene.NewTextureSlot("_MainTex", sceneName(texPath))
		slot.Image = probeImage(texPath)
		mat.Textures = append(mat.Textures, slot)
	}
	return mat
}

// decomposeMat4 splits an affine matrix without shear into translation,
// rotation and scale.
func decomposeMat4(m mgl64.Mat4) (t mgl64.Vec3, r mgl64.Quat, s mgl64.Vec3) {
	t = m.Col(3).Vec3()
	rot := mgl64.Ident4()
	for c := 0; c < 3; c++ {
		col := m.Col(c).Vec3()
		s[c] = col.Len()
		if s[c] == 0 {
			continue
		}
		rot.SetCol(c, col.Mul(1/s[c]).Vec4(0))
	}
	if rot.Det() < 0 {
		s[0] = -s[0]
		rot.SetCol(0, rot.Col(0).Mul(-1))
	}
	return t, mgl64.Mat4ToQuat(rot).Normalize(), s
}

// setTransform stores a local matrix on obj as quaternion TRS.
func setTransform(obj *scene.Object, m mgl64.Mat4) {
	t, r, s := decomposeMat4(m)
	obj.Location = t
	obj.RotationMode = scene.RotationQuaternion
	obj.RotationQuaternion = r
	obj.Scale = s
}
