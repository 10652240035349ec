package asset3d

import (
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/flywave/go-muexport/export"
	"github.com/flywave/go-muexport/scene"
)

const podScene = `
name: pod
fps: 30
active: pod
scene:
  model_type: PART
texts:
  pod.cfg.in: |
    PART
    {
    	name = pod
    }
  strut.cfg: |
    PART
    {
    	name = strut
    	rescaleFactor = 2
    }
images:
  hull: hull.png
materials:
  - name: hull
    shader: KSP/Diffuse
    colors:
      - {name: _Color, value: [1, 0.5, 0.5, 1]}
    textures:
      - {name: _MainTex, tex: hull}
meshes:
  tri:
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    submeshes: [[0, 1, 2]]
    materials: [hull]
lights:
  lamp: {type: SPOT, color: [1, 1, 1], distance: 5, energy: 2, spot_size: 1}
groups:
  - name: strut
    offset: [0, 0, 1]
    objects: [strutMesh]
objects:
  - name: pod
    mesh: tri
    children:
      - name: node_stack_top
        location: [0, 0, 1]
      - name: light
        light: lamp
        rotation_quaternion: [1, 0, 0, 0]
      - name: base
        mesh: tri
        props: {collider: BOX, size: [2, 2, 2]}
      - name: strutRef
        instance: strut
        location: [1, 0, 0]
      - name: spinner
        animation:
          name: spin
          curves:
            - data_path: location
              index: 2
              keys: [{frame: 1, value: 0}, {frame: 31, value: 1}]
  - name: strutMesh
    mesh: tri
  - name: strutPart
    part: {config: strut.cfg}
    location: [5, 0, 0]
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

func TestFormatFactory(t *testing.T) {
	assert.IsType(t, &YamlToScene{}, FormatFactory("YML"))
	assert.IsType(t, &GltfToScene{}, FormatFactory(GLB))
	assert.IsType(t, &ObjToScene{}, FormatFactory(FormatOf("/tmp/model.OBJ")))
	assert.IsType(t, &DaeToScene{}, FormatFactory(DAE))
	assert.IsType(t, &FbxToScene{}, FormatFactory(FBX))
	assert.IsType(t, &ThreeDsToScene{}, FormatFactory(THREEDS))
	assert.Nil(t, FormatFactory("stl"))

	_, err := Load("model.stl")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestYamlScene(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "hull.png"), 4, 2)
	sc, err := Load(writeFile(t, dir, "pod.yaml", podScene))
	require.NoError(t, err)

	assert.Equal(t, "pod", sc.Name)
	assert.Equal(t, 30.0, sc.FPS)
	assert.Equal(t, scene.ModelPart, sc.Props.ModelType)
	require.Len(t, sc.Roots, 3)
	pod := sc.ActiveObject()
	require.NotNil(t, pod)
	assert.Equal(t, "pod", pod.Name)

	mh, ok := pod.Data.(*scene.Mesh)
	require.True(t, ok)
	require.Len(t, mh.Materials, 1)
	slot := mh.Materials[0].Textures[0]
	assert.Equal(t, [2]float64{1, 1}, slot.Scale)
	require.NotNil(t, slot.Image)
	assert.Equal(t, "png", slot.Image.Format)
	assert.Equal(t, 4, slot.Image.Width)
	assert.Equal(t, 2, slot.Image.Height)

	light := sc.Object("light")
	assert.Equal(t, scene.RotationQuaternion, light.RotationMode)
	assert.Equal(t, scene.LightSpot, light.Data.(*scene.Light).Type)

	base := sc.Object("base")
	assert.Equal(t, scene.ColliderBox, base.Props.Collider)
	assert.Equal(t, "Untagged", base.Props.Tag)

	g := sc.Group("strut")
	require.NotNil(t, g)
	assert.Equal(t, g, sc.Object("strutRef").DupliGroup)
	assert.True(t, sc.Object("strutMesh").InGroup("strut"))

	part := sc.Object("strutPart")
	assert.Equal(t, g, part.DupliGroup)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, part.Scale)

	spinner := sc.Object("spinner")
	require.NotNil(t, spinner.Animation)
	assert.Len(t, spinner.Animation.Curve("location", 2).Keys, 2)
}

func TestYamlSceneExports(t *testing.T) {
	dir := t.TempDir()
	sc, err := Load(writeFile(t, dir, "pod.yaml", podScene))
	require.NoError(t, err)

	res, err := export.ExportObject(sc, sc.ActiveObject(), filepath.Join(dir, "pod.mu"), nil)
	require.NoError(t, err)
	assert.FileExists(t, res.MuPath)
	assert.FileExists(t, res.ConfigPath)
	spinner := res.Model.ObjectPaths["pod/spinner"]
	require.NotNil(t, spinner)
	assert.NotNil(t, spinner.Animation)
	assert.NotNil(t, res.Model.Root.Collider)
}

func TestYamlSceneErrors(t *testing.T) {
	cv := &YamlToScene{}
	_, err := cv.Parse([]byte("objects:\n  - name: a\n    mesh: missing\n"))
	assert.Error(t, err)
	_, err = cv.Parse([]byte("objects:\n  - name: a\n  - name: a\n"))
	assert.Error(t, err)
	_, err = cv.Parse([]byte("groups:\n  - name: g\n    objects: [nobody]\n"))
	assert.Error(t, err)
	_, err = cv.Parse([]byte("objects: [unclosed"))
	assert.Error(t, err)
}

func TestProbeImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "panel.bmp")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 3))))
	require.NoError(t, f.Close())

	info := probeImage(path)
	assert.Equal(t, "bmp", info.Format)
	assert.Equal(t, 8, info.Width)
	assert.Equal(t, 3, info.Height)

	missing := probeImage(filepath.Join(dir, "missing.png"))
	assert.Equal(t, filepath.Join(dir, "missing.png"), missing.Path)
	assert.Empty(t, missing.Format)
}

func TestObjImport(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quad.obj", "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n")
	sc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sc.Roots, 1)
	mh := sc.Roots[0].Data.(*scene.Mesh)
	assert.Len(t, mh.Vertices, 6)
	assert.Equal(t, 2, mh.TriangleCount())
	// OBJ +Y is scene +Z
	assert.Equal(t, float32(1), mh.Vertices[2][2])
	require.Len(t, mh.Materials, 1)
	assert.Equal(t, "default", mh.Materials[0].Name)
}

func TestGltfAxes(t *testing.T) {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]uint32{gltf.POSITION: pos},
		}},
	}}
	doc.Nodes = []*gltf.Node{{
		Name:        "wing",
		Mesh:        gltf.Index(0),
		Translation: [3]float32{1, 2, 3},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 2, 3},
		Extras:      map[string]interface{}{"muproperties": map[string]interface{}{"tag": "Icon_Hidden"}},
	}}
	doc.Scenes[0].Nodes = []uint32{0}

	sc, err := (&GltfToScene{}).ConvertFromDoc(doc, "wing")
	require.NoError(t, err)
	wing := sc.Object("wing")
	require.NotNil(t, wing)
	assert.Equal(t, mgl64.Vec3{1, -3, 2}, wing.Location)
	assert.Equal(t, mgl64.Vec3{1, 3, 2}, wing.Scale)
	assert.Equal(t, "Icon_Hidden", wing.Props.Tag)

	mh := wing.Data.(*scene.Mesh)
	require.Len(t, mh.Vertices, 3)
	assert.Equal(t, float32(1), mh.Vertices[2][2])
	assert.Equal(t, [][]uint32{{0, 1, 2}}, mh.Submeshes)
}

func TestGltfMatrixNode(t *testing.T) {
	doc := gltf.NewDocument()
	m := mgl64.Translate3D(1, 2, 3).Mul4(mgl64.HomogRotate3DY(math.Pi / 2))
	var mat [16]float32
	for i, v := range m {
		mat[i] = float32(v)
	}
	doc.Nodes = []*gltf.Node{{Name: "arm", Matrix: mat, Scale: [3]float32{1, 1, 1}, Rotation: [4]float32{0, 0, 0, 1}}}
	doc.Scenes[0].Nodes = []uint32{0}

	sc, err := (&GltfToScene{}).ConvertFromDoc(doc, "arm")
	require.NoError(t, err)
	arm := sc.Object("arm")
	assert.True(t, arm.Location.ApproxEqualThreshold(mgl64.Vec3{1, -3, 2}, 1e-6))
	// glTF +Y turns into scene +Z, the axis the rotation is about.
	x := arm.Rotation().Rotate(mgl64.Vec3{1, 0, 0})
	assert.True(t, x.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-6), "got %v", x)
}

func TestGltfKeys(t *testing.T) {
	act := &scene.Action{Name: "move"}
	times := []float64{0, 1}
	values := []float64{0, 0, 0, 2, 4, 6}
	addKeys(act, gltfChannels[gltf.TRSTranslation], gltf.InterpolationLinear, times, values, 24, 1)

	x := act.Curve("location", 0)
	require.NotNil(t, x)
	require.Len(t, x.Keys, 2)
	assert.Equal(t, 25.0, x.Keys[1].Frame)
	assert.Equal(t, 2.0, x.Keys[1].Value)
	assert.InDelta(t, 2.0/24, x.Keys[0].OutSlope, 1e-12)
	assert.InDelta(t, 2.0/24, x.Keys[1].InSlope, 1e-12)

	// glTF z lands on scene -y.
	y := act.Curve("location", 1)
	assert.Equal(t, -6.0, y.Keys[1].Value)
	assert.Equal(t, 4.0, act.Curve("location", 2).Keys[1].Value)
}

func TestTriangulate(t *testing.T) {
	assert.Len(t, triangulate([]int{0, 1, 2, 3, 4, 5}, nil), 4)
	assert.Len(t, pentagonToTriangles([]int{0, 1, 2, 3, 4}), 3)
}

func TestDecomposeMat4(t *testing.T) {
	m := mgl64.Translate3D(1, 2, 3).
		Mul4(mgl64.HomogRotate3DZ(math.Pi / 2)).
		Mul4(mgl64.Scale3D(2, 3, 4))
	tr, r, s := decomposeMat4(m)
	assert.True(t, tr.ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-9))
	assert.True(t, s.ApproxEqualThreshold(mgl64.Vec3{2, 3, 4}, 1e-9))
	assert.True(t, r.Rotate(mgl64.Vec3{1, 0, 0}).ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-9))
}
