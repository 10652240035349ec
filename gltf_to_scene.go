package asset3d

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/lightspuntual"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
)

// Extras keys understood on nodes, materials and scenes.
const (
	extrasProperties = "muproperties"
	extrasShader     = "mushader"
	extrasTexts      = "mutexts"
	extrasScene      = "muscene"
	extrasFPS        = "fps"
)

// Lights and cameras aim along -Z in both conventions. After the axis
// swap that direction is +Y, this turns it back to -Z.
var gltfForwardFix = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})

// GltfToScene imports glTF 2.0 documents. glTF is Y-up, the scene graph is
// Z-up: (x, y, z) becomes (x, -z, y).
type GltfToScene struct {
	doc     *gltf.Document
	dir     string
	sc      *scene.Scene
	objects map[uint32]*scene.Object
	meshes  map[uint32]*scene.Mesh
	mtls    map[uint32]*scene.Material
	lights  lightspuntual.Lights
}

func (g *GltfToScene) Convert(path string) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, err
	}
	g.dir = filepath.Dir(path)
	return g.ConvertFromDoc(doc, sceneName(path))
}

func (g *GltfToScene) ConvertFromDoc(doc *gltf.Document, name string) (*scene.Scene, error) {
	g.doc = doc
	g.sc = scene.New(name)
	g.objects = make(map[uint32]*scene.Object)
	g.meshes = make(map[uint32]*scene.Mesh)
	g.mtls = make(map[uint32]*scene.Material)
	if v, ok := doc.Extensions[lightspuntual.ExtensionName]; ok {
		if lights, ok := v.(lightspuntual.Lights); ok {
			g.lights = lights
		}
	}

	var roots []uint32
	if len(doc.Scenes) > 0 {
		idx := uint32(0)
		if doc.Scene != nil {
			idx = *doc.Scene
		}
		gs := doc.Scenes[idx]
		roots = gs.Nodes
		if err := g.sceneExtras(gs.Extras); err != nil {
			return nil, err
		}
	} else {
		roots = g.parentless()
	}

	for _, n := range roots {
		obj, err := g.convertNode(n)
		if err != nil {
			return nil, err
		}
		g.sc.AddRoot(obj)
	}
	if err := g.convertAnimations(); err != nil {
		return nil, err
	}
	return g.sc, nil
}

func (g *GltfToScene) parentless() []uint32 {
	child := make(map[uint32]bool)
	for _, nd := range g.doc.Nodes {
		for _, c := range nd.Children {
			child[c] = true
		}
	}
	var roots []uint32
	for i := range g.doc.Nodes {
		if !child[uint32(i)] {
			roots = append(roots, uint32(i))
		}
	}
	return roots
}

// extrasMap normalizes decoded extras to a string keyed map.
func extrasMap(extras interface{}) map[string]interface{} {
	if extras == nil {
		return nil
	}
	if m, ok := extras.(map[string]interface{}); ok {
		return m
	}
	dt, err := json.Marshal(extras)
	if err != nil {
		return nil
	}
	m := map[string]interface{}{}
	if json.Unmarshal(dt, &m) != nil {
		return nil
	}
	return m
}

// decodeExtras re-encodes an extras value into out through YAML, so the
// yaml tags of the scene types apply.
func decodeExtras(v interface{}, out interface{}) error {
	dt, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(dt, out)
}

func (g *GltfToScene) sceneExtras(extras interface{}) error {
	ex := extrasMap(extras)
	if ex == nil {
		return nil
	}
	if v, ok := ex[extrasTexts]; ok {
		if err := decodeExtras(v, &g.sc.Texts); err != nil {
			return errors.Wrapf(err, "Failed to read scene texts")
		}
	}
	if v, ok := ex[extrasScene]; ok {
		if err := decodeExtras(v, &g.sc.Props); err != nil {
			return errors.Wrapf(err, "Failed to read scene properties")
		}
	}
	if v, ok := ex[extrasFPS].(float64); ok && v > 0 {
		g.sc.FPS = v
	}
	return nil
}

func gltfVec(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), -float64(v[2]), float64(v[1])}
}

func gltfScale(v [3]float32) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[2]), float64(v[1])}
}

// gltfQuat converts an (x, y, z, w) rotation.
func gltfQuat(q [4]float32) mgl64.Quat {
	return mgl64.Quat{W: float64(q[3]), V: gltfVec([3]float32{q[0], q[1], q[2]})}
}

// decompose splits a column-major glTF matrix into translation, rotation
// and scale, still in glTF axes.
func decompose(m [16]float32) (t [3]float32, r [4]float32, s [3]float32) {
	var mat mgl64.Mat4
	for i, v := range m {
		mat[i] = float64(v)
	}
	tv, q, sv := decomposeMat4(mat)
	t = [3]float32{float32(tv[0]), float32(tv[1]), float32(tv[2])}
	r = [4]float32{float32(q.V[0]), float32(q.V[1]), float32(q.V[2]), float32(q.W)}
	s = [3]float32{float32(sv[0]), float32(sv[1]), float32(sv[2])}
	return t, r, s
}

var identity16 = [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func hasMatrix(m [16]float32) bool {
	return m != [16]float32{} && m != identity16
}

func (g *GltfToScene) convertNode(idx uint32) (*scene.Object, error) {
	nd := g.doc.Nodes[idx]
	name := nd.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	obj := scene.NewObject(name, nil)
	g.objects[idx] = obj

	t, r, s := nd.Translation, nd.Rotation, nd.Scale
	if hasMatrix(nd.Matrix) {
		t, r, s = decompose(nd.Matrix)
	}
	obj.Location = gltfVec(t)
	obj.RotationMode = scene.RotationQuaternion
	obj.RotationQuaternion = gltfQuat(r)
	obj.Scale = gltfScale(s)

	var err error
	switch {
	case nd.Mesh != nil:
		obj.Data, err = g.convertMesh(*nd.Mesh)
	case nd.Camera != nil:
		obj.Data = g.convertCamera(*nd.Camera)
		obj.RotationQuaternion = obj.RotationQuaternion.Mul(gltfForwardFix)
	default:
		if light := g.nodeLight(nd); light != nil {
			obj.Data = light
			obj.RotationQuaternion = obj.RotationQuaternion.Mul(gltfForwardFix)
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to convert node %q", name)
	}

	if ex := extrasMap(nd.Extras); ex != nil {
		if v, ok := ex[extrasProperties]; ok {
			if err := decodeExtras(v, &obj.Props); err != nil {
				return nil, errors.Wrapf(err, "Failed to read properties of node %q", name)
			}
		}
	}

	for _, c := range nd.Children {
		child, err := g.convertNode(c)
		if err != nil {
			return nil, err
		}
		obj.AddChild(child)
	}
	return obj, nil
}

func (g *GltfToScene) convertMesh(id uint32) (*scene.Mesh, error) {
	if mh, ok := g.meshes[id]; ok {
		return mh, nil
	}
	gm := g.doc.Meshes[id]
	mh := &scene.Mesh{Name: gm.Name}
	for i, ps := range gm.Primitives {
		if ps.Mode != gltf.PrimitiveTriangles {
			logger.Warn("skipping non-triangle primitive",
				zap.String("mesh", gm.Name), zap.Int("primitive", i))
			continue
		}
		if err := g.addPrimitive(mh, ps); err != nil {
			return nil, errors.Wrapf(err, "primitive %d of mesh %q", i, gm.Name)
		}
	}
	g.meshes[id] = mh
	return mh, nil
}

func (g *GltfToScene) addPrimitive(mh *scene.Mesh, ps *gltf.Primitive) error {
	doc := g.doc
	posIdx, ok := ps.Attributes[gltf.POSITION]
	if !ok {
		return errors.New("primitive has no positions")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return errors.Wrapf(err, "Failed to read positions")
	}
	base := uint32(len(mh.Vertices))
	for _, p := range positions {
		v := gltfVec(p)
		mh.Vertices = append(mh.Vertices, vec3.T{float32(v[0]), float32(v[1]), float32(v[2])})
	}

	if idx, ok := ps.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read normals")
		}
		mh.Normals = padVec3(mh.Normals, int(base))
		for _, n := range normals {
			v := gltfVec(n)
			mh.Normals = append(mh.Normals, vec3.T{float32(v[0]), float32(v[1]), float32(v[2])})
		}
	}
	if idx, ok := ps.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read texture coordinates")
		}
		mh.UVs = padVec2(mh.UVs, int(base))
		for _, uv := range uvs {
			mh.UVs = append(mh.UVs, vec2.T{uv[0], 1 - uv[1]})
		}
	}
	if idx, ok := ps.Attributes[gltf.TEXCOORD_1]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read second texture coordinates")
		}
		mh.UV2s = padVec2(mh.UV2s, int(base))
		for _, uv := range uvs {
			mh.UV2s = append(mh.UV2s, vec2.T{uv[0], 1 - uv[1]})
		}
	}
	if idx, ok := ps.Attributes[gltf.COLOR_0]; ok {
		colors, err := modeler.ReadColor(doc, doc.Accessors[idx], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read vertex colors")
		}
		for len(mh.Colors) < int(base) {
			mh.Colors = append(mh.Colors, [4]float32{1, 1, 1, 1})
		}
		for _, c := range colors {
			mh.Colors = append(mh.Colors, [4]float32{
				float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255,
			})
		}
	}

	var indices []uint32
	if ps.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*ps.Indices], nil)
		if err != nil {
			return errors.Wrapf(err, "Failed to read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	sub := make([]uint32, len(indices))
	for i, ix := range indices {
		sub[i] = ix + base
	}
	mh.Submeshes = append(mh.Submeshes, sub)

	var mat *scene.Material
	if ps.Material != nil {
		mat = g.convertMaterial(*ps.Material)
	}
	mh.Materials = append(mh.Materials, mat)
	return nil
}

// padVec3 fills attributes missing from earlier primitives so every
// vertex array stays aligned with Vertices.
func padVec3(s []vec3.T, n int) []vec3.T {
	for len(s) < n {
		s = append(s, vec3.T{})
	}
	return s
}

func padVec2(s []vec2.T, n int) []vec2.T {
	for len(s) < n {
		s = append(s, vec2.T{})
	}
	return s
}

func (g *GltfToScene) convertMaterial(id uint32) *scene.Material {
	if mat, ok := g.mtls[id]; ok {
		return mat
	}
	mt := g.doc.Materials[id]
	name := mt.Name
	if name == "" {
		name = fmt.Sprintf("material%d", id)
	}
	color := [4]float64{1, 1, 1, 1}
	var mainTex *uint32
	if pbr := mt.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			for i := range color {
				color[i] = float64(pbr.BaseColorFactor[i])
			}
		}
		if pbr.BaseColorTexture != nil {
			idx := pbr.BaseColorTexture.Index
			mainTex = &idx
		}
	}
	mat := &scene.Material{
		Name:       name,
		ShaderName: scene.DefaultShader,
		Colors:     []scene.VectorProperty{{Name: "_Color", Value: color}},
	}
	if mainTex != nil {
		mat.Textures = append(mat.Textures, g.textureSlot("_MainTex", *mainTex))
	}
	if mt.NormalTexture != nil && mt.NormalTexture.Index != nil {
		slot := g.textureSlot("_BumpMap", *mt.NormalTexture.Index)
		slot.NormalMap = true
		mat.Textures = append(mat.Textures, slot)
		mat.ShaderName = "KSP/Bumped"
	}
	if ex := extrasMap(mt.Extras); ex != nil {
		if shader, ok := ex[extrasShader].(string); ok {
			mat.ShaderName = shader
		}
	}
	g.mtls[id] = mat
	return mat
}

func (g *GltfToScene) textureSlot(prop string, texIdx uint32) scene.TextureSlot {
	tex := g.doc.Textures[texIdx]
	if tex.Source == nil {
		return scene.NewTextureSlot(prop, fmt.Sprintf("texture%d", texIdx))
	}
	img := g.doc.Images[*tex.Source]
	name := img.Name
	path := ""
	if img.URI != "" && !isDataURI(img.URI) {
		uri, err := url.PathUnescape(img.URI)
		if err != nil {
			uri = img.URI
		}
		path = resolvePath(g.dir, uri)
		if name == "" {
			name = sceneName(path)
		}
	}
	if name == "" {
		name = fmt.Sprintf("image%d", *tex.Source)
	}
	slot := scene.NewTextureSlot(prop, name)
	switch {
	case path != "":
		slot.Image = probeImage(path)
	case img.BufferView != nil:
		view := g.doc.BufferViews[*img.BufferView]
		buffer := g.doc.Buffers[view.Buffer]
		bt := buffer.Data[view.ByteOffset : view.ByteOffset+view.ByteLength]
		info, err := decodeImageInfo(bytes.NewReader(bt), "")
		if err != nil {
			logger.Debug("embedded texture not probed", zap.String("image", name), zap.Error(err))
		} else {
			slot.Image = info
		}
	}
	return slot
}

func (g *GltfToScene) convertCamera(id uint32) *scene.Camera {
	gc := g.doc.Cameras[id]
	cam := &scene.Camera{Name: gc.Name, Type: scene.CameraPersp}
	switch {
	case gc.Perspective != nil:
		cam.Angle = float64(gc.Perspective.Yfov)
		cam.ClipStart = float64(gc.Perspective.Znear)
		cam.ClipEnd = 1000
		if gc.Perspective.Zfar != nil {
			cam.ClipEnd = float64(*gc.Perspective.Zfar)
		}
	case gc.Orthographic != nil:
		cam.Type = scene.CameraOrtho
		cam.ClipStart = float64(gc.Orthographic.Znear)
		cam.ClipEnd = float64(gc.Orthographic.Zfar)
	}
	return cam
}

var gltfLightTypes = map[string]scene.LightType{
	lightspuntual.TypeDirectional: scene.LightSun,
	lightspuntual.TypePoint:       scene.LightPoint,
	lightspuntual.TypeSpot:        scene.LightSpot,
}

func (g *GltfToScene) nodeLight(nd *gltf.Node) *scene.Light {
	v, ok := nd.Extensions[lightspuntual.ExtensionName]
	if !ok {
		return nil
	}
	idx, ok := v.(lightspuntual.LightIndex)
	if !ok || int(idx) >= len(g.lights) {
		return nil
	}
	gl := g.lights[idx]
	typ, ok := gltfLightTypes[gl.Type]
	if !ok {
		logger.Warn("unknown light type", zap.String("light", gl.Name), zap.String("type", gl.Type))
		return nil
	}
	c := gl.ColorOrDefault()
	light := &scene.Light{
		Name:     gl.Name,
		Type:     typ,
		Color:    [3]float64{float64(c[0]), float64(c[1]), float64(c[2])},
		Energy:   float64(gl.IntensityOrDefault()),
		Distance: 10,
	}
	if gl.Range != nil {
		light.Distance = float64(*gl.Range)
	}
	if gl.Spot != nil {
		light.SpotSize = 2 * float64(gl.Spot.OuterConeAngleOrDefault())
	}
	return light
}

// gltfChannel maps one glTF component to a curve of the scene graph.
type gltfChannel struct {
	dataPath string
	index    int
	negate   bool
}

// Components are listed in glTF order. Rotations are stored x, y, z, w
// in glTF and w, x, y, z on curves.
var gltfChannels = map[gltf.TRSProperty][]gltfChannel{
	gltf.TRSTranslation: {{"location", 0, false}, {"location", 2, false}, {"location", 1, true}},
	gltf.TRSRotation: {{"rotation_quaternion", 1, false}, {"rotation_quaternion", 3, false},
		{"rotation_quaternion", 2, true}, {"rotation_quaternion", 0, false}},
	gltf.TRSScale: {{"scale", 0, false}, {"scale", 2, false}, {"scale", 1, false}},
}

// readFloats flattens an accessor of floats into one slice.
func readFloats(doc *gltf.Document, acc *gltf.Accessor) ([]float64, error) {
	data, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, err
	}
	var out []float64
	switch v := data.(type) {
	case []float32:
		for _, f := range v {
			out = append(out, float64(f))
		}
	case [][3]float32:
		for _, f := range v {
			out = append(out, float64(f[0]), float64(f[1]), float64(f[2]))
		}
	case [][4]float32:
		for _, f := range v {
			out = append(out, float64(f[0]), float64(f[1]), float64(f[2]), float64(f[3]))
		}
	default:
		return nil, errors.Errorf("unsupported accessor data %T", data)
	}
	return out, nil
}

func (g *GltfToScene) convertAnimations() error {
	doc := g.doc
	fps := g.sc.FPS
	for ai, anim := range doc.Animations {
		name := anim.Name
		if name == "" {
			name = fmt.Sprintf("animation%d", ai)
		}
		for _, ch := range anim.Channels {
			if ch.Target.Node == nil || ch.Sampler == nil {
				continue
			}
			obj := g.objects[*ch.Target.Node]
			comps, ok := gltfChannels[ch.Target.Path]
			if obj == nil || !ok {
				continue
			}
			if obj.Animation == nil {
				obj.Animation = &scene.Action{Name: name}
			} else if obj.Animation.Name != name {
				logger.Warn("object already animated, channel dropped",
					zap.String("object", obj.Name), zap.String("action", name))
				continue
			}
			sampler := anim.Samplers[*ch.Sampler]
			if sampler.Input == nil || sampler.Output == nil {
				continue
			}
			times, err := readFloats(doc, doc.Accessors[*sampler.Input])
			if err != nil {
				return errors.Wrapf(err, "Failed to read key times of %q", name)
			}
			values, err := readFloats(doc, doc.Accessors[*sampler.Output])
			if err != nil {
				return errors.Wrapf(err, "Failed to read key values of %q", name)
			}
			addKeys(obj.Animation, comps, sampler.Interpolation, times, values, fps, g.sc.FrameStart)
		}
	}
	return nil
}

// addKeys converts sampled glTF keys (seconds) to frame keyed curves with
// slopes per frame.
func addKeys(act *scene.Action, comps []gltfChannel, interp gltf.Interpolation, times, values []float64, fps, start float64) {
	n := len(comps)
	cubic := interp == gltf.InterpolationCubicSpline
	stride := n
	if cubic {
		stride = 3 * n
	}
	count := len(times)
	if len(values) < count*stride {
		count = len(values) / stride
	}
	for c, comp := range comps {
		sign := 1.0
		if comp.negate {
			sign = -1
		}
		value := func(k int) float64 {
			if cubic {
				return sign * values[k*stride+n+c]
			}
			return sign * values[k*stride+c]
		}
		for k := 0; k < count; k++ {
			key := scene.Keyframe{Frame: times[k]*fps + start, Value: value(k)}
			switch {
			case cubic:
				key.InSlope = sign * values[k*stride+c] / fps
				key.OutSlope = sign * values[k*stride+2*n+c] / fps
			case interp == gltf.InterpolationStep:
			default:
				if k > 0 && times[k] > times[k-1] {
					key.InSlope = (value(k) - value(k-1)) / ((times[k] - times[k-1]) * fps)
				}
				if k+1 < count && times[k+1] > times[k] {
					key.OutSlope = (value(k+1) - value(k)) / ((times[k+1] - times[k]) * fps)
				}
			}
			act.AddKey(comp.dataPath, comp.index, key)
		}
	}
}

// isDataURI reports whether a texture reference is inline data.
func isDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}
