package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/flywave/go3d/vec3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

func material(name string, textures ...scene.TextureSlot) *scene.Material {
	return &scene.Material{Name: name, ShaderName: scene.DefaultShader, Textures: textures}
}

// triangle is a one triangle mesh with one submesh per material.
func triangle(name string, mats ...*scene.Material) *scene.Mesh {
	m := &scene.Mesh{
		Name:     name,
		Vertices: []vec3.T{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	}
	if len(mats) == 0 {
		m.Submeshes = [][]uint32{{0, 1, 2}}
	}
	for _, mat := range mats {
		m.Submeshes = append(m.Submeshes, []uint32{0, 1, 2})
		m.Materials = append(m.Materials, mat)
	}
	return m
}

func mustBuild(t *testing.T, obj *scene.Object) *Model {
	t.Helper()
	m, err := Build(scene.New("test"), obj, DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, m.Root)
	return m
}

func TestScenarioMeshWithLight(t *testing.T) {
	root := scene.NewObject("root", triangle("hull", material("hull")))
	light := scene.NewObject("light", &scene.Light{Type: scene.LightPoint, Color: [3]float64{1, 1, 1}, Energy: 2, Distance: 10})
	root.AddChild(light)

	m := mustBuild(t, root)
	assert.NotNil(t, m.Root.SharedMesh)
	require.NotNil(t, m.Root.Renderer)
	require.Len(t, m.Root.Children, 1)

	child := m.Root.Children[0]
	require.NotNil(t, child.Light)
	assert.Equal(t, mu.LightPoint, child.Light.Type)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, child.Light.Color)
	assert.Equal(t, float32(2), child.Light.Intensity)
	assert.Equal(t, float32(10), child.Light.Range)
	assert.Same(t, child, m.ObjectPaths["root/light"])
	assert.Same(t, m.Root, m.ObjectPaths["root"])
}

func TestScenarioSharedMaterial(t *testing.T) {
	root := scene.NewObject("root", triangle("base"))
	for _, name := range []string{"left", "right"} {
		root.AddChild(scene.NewObject(name, triangle(name, material("paint"))))
	}

	m := mustBuild(t, root)
	require.Len(t, m.Materials, 1)
	assert.Nil(t, m.Root.Renderer)
	for _, c := range m.Root.Children {
		require.NotNil(t, c.Renderer)
		assert.Equal(t, []int32{0}, c.Renderer.Materials)
	}
}

func TestRendererSlotPerSubmesh(t *testing.T) {
	paint := material("paint")
	root := scene.NewObject("root", triangle("hull", paint, paint))

	m := mustBuild(t, root)
	require.Len(t, m.Materials, 1)
	require.NotNil(t, m.Root.Renderer)
	assert.Equal(t, []int32{0, 0}, m.Root.Renderer.Materials)
	assert.Len(t, m.Root.SharedMesh.Submeshes, 2)
}

func TestScenarioStackNodeDropped(t *testing.T) {
	root := scene.NewObject("part", nil)
	node := scene.NewObject("node_stack_top", nil)
	node.Location = mgl64.Vec3{0, 0, 1.5}
	root.AddChild(node)

	m := mustBuild(t, root)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, NodeStack, m.Nodes[0].Kind)
	assert.Empty(t, m.Root.Children)
	assert.NotContains(t, m.ObjectPaths, "part/node_stack_top")
	assert.InDeltaSlice(t, []float64{0, 1.5, 0}, m.Nodes[0].Pos[:], 1e-9)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, m.Nodes[0].Dir[:], 1e-9)
}

func TestTransformNodeKept(t *testing.T) {
	root := scene.NewObject("part", nil)
	root.AddChild(scene.NewObject("node_collider.001", nil))

	m := mustBuild(t, root)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, NodeTransform, m.Nodes[0].Kind)
	require.Len(t, m.Root.Children, 1)
	assert.Equal(t, "node_collider", m.Root.Children[0].Transform.Name)
	assert.True(t, m.Root.Children[0].Transform.LocalRotation.ApproxEqual(attachNodeFix))
}

func TestRoleCorrections(t *testing.T) {
	root := scene.NewObject("root", triangle("hull"))
	root.AddChild(scene.NewObject("lamp", &scene.Light{Type: scene.LightSpot, SpotSize: math.Pi / 2}))
	root.AddChild(scene.NewObject("cam", &scene.Camera{Type: scene.CameraPersp, Angle: math.Pi / 3}))
	root.AddChild(scene.NewObject("node_dock", nil))
	root.AddChild(scene.NewObject("frame", nil))

	m := mustBuild(t, root)
	assert.True(t, m.Root.Transform.LocalRotation.ApproxEqual(mgl64.QuatIdent()))
	want := map[string]mgl64.Quat{
		"lamp":      forwardFix,
		"cam":       forwardFix,
		"node_dock": attachNodeFix,
		"frame":     mgl64.QuatIdent(),
	}
	require.Len(t, m.Root.Children, len(want))
	for _, c := range m.Root.Children {
		assert.True(t, c.Transform.LocalRotation.ApproxEqual(want[c.Transform.Name]), c.Transform.Name)
	}
	lamp := m.ObjectPaths["root/lamp"]
	assert.InDelta(t, 90, lamp.Light.SpotAngle, 1e-4)
	cam := m.ObjectPaths["root/cam"]
	assert.InDelta(t, 60, cam.Camera.FOV, 1e-4)
	assert.Equal(t, mu.ClearSkybox, cam.Camera.ClearFlags)
}

func TestTextureInterning(t *testing.T) {
	a := scene.NewTextureSlot("_MainTex", "hull.png")
	b := scene.NewTextureSlot("_MainTex", "hull.png")
	b.Scale = [2]float64{2, 2}
	bump := scene.NewTextureSlot("_BumpMap", "hull_nrm.png")
	bump.NormalMap = true

	root := scene.NewObject("root", triangle("hull", material("a", a), material("b", b, bump)))
	m := mustBuild(t, root)

	require.Len(t, m.Textures, 2)
	assert.Equal(t, mu.TextureDefault, m.Textures[0].Type)
	assert.Equal(t, mu.TextureNormalMap, m.Textures[1].Type)
	require.Len(t, m.Materials, 2)
	ta, tb := m.Materials[0].Textures[0].Tex, m.Materials[1].Textures[0].Tex
	assert.Equal(t, int32(0), ta.Index)
	assert.Equal(t, ta.Index, tb.Index)
	assert.Equal(t, float32(1), ta.Scale[0])
	assert.Equal(t, float32(2), tb.Scale[0])
	assert.Equal(t, int32(1), m.Materials[1].Textures[1].Tex.Index)
}

func TestShaderlessMaterialsGiveNoRenderer(t *testing.T) {
	mat := material("bare")
	mat.ShaderName = ""
	m := mustBuild(t, scene.NewObject("root", triangle("hull", mat, nil)))
	assert.Nil(t, m.Root.Renderer)
	assert.Empty(t, m.Materials)
}

func sampleScene() *scene.Object {
	hull, trim := material("hull", scene.NewTextureSlot("_MainTex", "hull.png")), material("trim", scene.NewTextureSlot("_MainTex", "trim.png"))
	root := scene.NewObject("ship", triangle("body", hull))
	wing := scene.NewObject("wing", triangle("wing", trim, hull))
	wing.Location = mgl64.Vec3{1, 2, 3}
	root.AddChild(wing)
	wing.AddChild(scene.NewObject("tip", triangle("tip", trim)))
	root.AddChild(scene.NewObject("light", &scene.Light{Type: scene.LightSun}))
	return root
}

func TestStableOutput(t *testing.T) {
	var first []byte
	for i := 0; i < 3; i++ {
		m := mustBuild(t, sampleScene())
		assert.Equal(t, "hull", m.Materials[0].Name)
		assert.Equal(t, "trim", m.Materials[1].Name)
		var buf bytes.Buffer
		require.NoError(t, m.Mu().Write(&buf))
		if first == nil {
			first = buf.Bytes()
			continue
		}
		assert.Equal(t, first, buf.Bytes())
	}
}

func TestPathIndexMatchesTree(t *testing.T) {
	m := mustBuild(t, sampleScene())
	count := 0
	var walk func(o *mu.Object, path string)
	walk = func(o *mu.Object, path string) {
		count++
		assert.Same(t, o, m.ObjectPaths[path], path)
		for _, c := range o.Children {
			walk(c, path+"/"+c.Transform.Name)
		}
	}
	walk(m.Root, m.Root.Transform.Name)
	assert.Equal(t, count, len(m.ObjectPaths))
	assert.Contains(t, m.ObjectPaths, "ship/wing/tip")
}

func TestColliderOnParent(t *testing.T) {
	root := scene.NewObject("root", triangle("hull"))
	col := scene.NewObject("col", nil)
	col.Props.Collider = scene.ColliderBox
	col.Props.Size = [3]float64{1, 2, 3}
	root.AddChild(col)
	capsule := scene.NewObject("capsule", nil)
	capsule.Props.Collider = scene.ColliderCapsule
	capsule.Props.Direction = scene.DirZ
	child := scene.NewObject("child", nil)
	child.AddChild(capsule)
	root.AddChild(child)

	m := mustBuild(t, root)
	box, ok := m.Root.Collider.(*mu.BoxCollider)
	require.True(t, ok)
	assert.Equal(t, vec3.T{1, 2, 3}, box.Size)
	require.Len(t, m.Root.Children, 1)
	assert.NotContains(t, m.ObjectPaths, "root/col")
	assert.NotContains(t, m.ObjectPaths, "root/child/capsule")

	caps, ok := m.Root.Children[0].Collider.(*mu.CapsuleCollider)
	require.True(t, ok)
	assert.Equal(t, int32(1), caps.Direction)
}

func TestMeshColliderWithoutMesh(t *testing.T) {
	root := scene.NewObject("root", nil)
	col := scene.NewObject("col", nil)
	col.Props.Collider = scene.ColliderMesh
	root.AddChild(col)

	m := mustBuild(t, root)
	mc, ok := m.Root.Collider.(*mu.MeshCollider)
	require.True(t, ok)
	assert.True(t, mc.Convex)
	assert.Empty(t, mc.Mesh.Verts)
}

func TestUnknownDataPruned(t *testing.T) {
	root := scene.NewObject("root", nil)
	curve := scene.NewObject("curve", &scene.OtherData{Type: "CURVE"})
	curve.AddChild(scene.NewObject("below", triangle("below")))
	root.AddChild(curve)

	m := mustBuild(t, root)
	assert.Empty(t, m.Root.Children)
	assert.Len(t, m.ObjectPaths, 1)
}

func TestUnsupportedRoot(t *testing.T) {
	col := scene.NewObject("col", nil)
	col.Props.Collider = scene.ColliderSphere
	_, err := Build(nil, col, nil)
	require.ErrorIs(t, err, ErrUnsupportedRoot)

	_, err = Build(nil, scene.NewObject("curve", &scene.OtherData{Type: "CURVE"}), nil)
	require.ErrorIs(t, err, ErrUnsupportedRoot)
}

func TestWindingReversed(t *testing.T) {
	m := mustBuild(t, scene.NewObject("root", triangle("hull")))
	assert.Equal(t, [][]int32{{0, 2, 1}}, m.Root.SharedMesh.Submeshes)
}

func groupScene(member *scene.Object) (*scene.Object, *scene.Group) {
	g := &scene.Group{Name: "prefab", Offset: mgl64.Vec3{1, 0, 0}}
	g.Add(member)
	inst := scene.NewObject("instance", nil)
	inst.DupliGroup = g
	root := scene.NewObject("root", nil)
	root.AddChild(inst)
	return root, g
}

func TestGroupInstanceOffset(t *testing.T) {
	member := scene.NewObject("member", triangle("m"))
	member.Location = mgl64.Vec3{5, 0, 0}
	below := scene.NewObject("below", nil)
	member.AddChild(below)
	root, g := groupScene(member)
	g.Add(below)

	m := mustBuild(t, root)
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, member.Location)
	inst := m.ObjectPaths["root/instance"]
	require.NotNil(t, inst)
	require.Len(t, inst.Children, 1)
	assert.Equal(t, mgl64.Vec3{4, 0, 0}, inst.Children[0].Transform.LocalPosition)
	assert.Contains(t, m.ObjectPaths, "root/instance/member/below")
}

func TestGroupOffsetRestoredOnError(t *testing.T) {
	bad := triangle("bad")
	bad.Submeshes = [][]uint32{{0, 1, 7}}
	member := scene.NewObject("member", bad)
	member.Location = mgl64.Vec3{5, 0, 0}
	root, _ := groupScene(member)

	_, err := Build(nil, root, nil)
	require.Error(t, err)
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, member.Location)
}

type panickingMeshes struct{}

func (panickingMeshes) MakeMesh(*Model, *scene.Object) (*mu.Mesh, error) {
	panic("mesh maker failed")
}

func TestGroupOffsetRestoredOnPanic(t *testing.T) {
	member := scene.NewObject("member", triangle("m"))
	member.Location = mgl64.Vec3{5, 0, 0}
	root, _ := groupScene(member)

	opts := DefaultOptions()
	opts.Meshes = panickingMeshes{}
	assert.Panics(t, func() { _, _ = Build(nil, root, opts) })
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, member.Location)
}

func TestOffsetMarkers(t *testing.T) {
	root := scene.NewObject("part", nil)
	root.Location = mgl64.Vec3{10, 10, 10}
	com := scene.NewObject("CoMOffset", nil)
	com.Location = mgl64.Vec3{0, 0.5, 0}
	root.AddChild(com)

	m := mustBuild(t, root)
	v, ok := m.Offset(CoMOffset)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 0.5, 0}, v[:], 1e-9)
	_, ok = m.Offset(CoPOffset)
	assert.False(t, ok)
	assert.Contains(t, m.ObjectPaths, "part/CoMOffset")
}

func TestCaptureByModelType(t *testing.T) {
	part := scene.NewObject("part", nil)
	part.Props.ModelType = scene.ModelPart
	for _, name := range []string{"iva", "iva2"} {
		in := scene.NewObject(name, nil)
		in.Props.ModelType = scene.ModelInternal
		part.AddChild(in)
	}
	m := mustBuild(t, part)
	require.NotNil(t, m.Internal)
	assert.Equal(t, "iva", m.Internal.Name)
	assert.Empty(t, m.Root.Children)

	iva := scene.NewObject("iva", nil)
	iva.Props.ModelType = scene.ModelInternal
	for _, name := range []string{"seat", "panel"} {
		p := scene.NewObject(name, nil)
		p.Props.ModelType = scene.ModelProp
		iva.AddChild(p)
	}
	m = mustBuild(t, iva)
	assert.Equal(t, scene.ModelInternal, m.Type)
	require.Len(t, m.Props, 2)
	assert.Equal(t, "seat", m.Props[0].Name)
}

func TestUntypedRootKeepsInternalChild(t *testing.T) {
	root := scene.NewObject("root", triangle("hull"))
	iva := scene.NewObject("iva", triangle("seat"))
	iva.Props.ModelType = scene.ModelInternal
	root.AddChild(iva)

	// the scene default still names the config section
	m := mustBuild(t, root)
	assert.Equal(t, scene.ModelPart, m.Type)
	assert.Nil(t, m.Internal)
	require.Len(t, m.Root.Children, 1)
	assert.Same(t, m.Root.Children[0], m.ObjectPaths["root/iva"])
}

func TestGroupInstanceMarkers(t *testing.T) {
	member := scene.NewObject("member", triangle("m"))
	g := &scene.Group{Name: "prefab"}
	g.Add(member)
	root := scene.NewObject("root", nil)
	stack := scene.NewObject("node_stack_top", nil)
	stack.DupliGroup = g
	stack.Location = mgl64.Vec3{0, 0, 2}
	com := scene.NewObject("CoMOffset", nil)
	com.DupliGroup = g
	com.Location = mgl64.Vec3{0, 1, 0}
	root.AddChild(stack)
	root.AddChild(com)

	m := mustBuild(t, root)
	require.Len(t, m.Nodes, 1)
	assert.Equal(t, NodeStack, m.Nodes[0].Kind)
	assert.NotContains(t, m.ObjectPaths, "root/node_stack_top")

	v, ok := m.Offset(CoMOffset)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 1, 0}, v[:], 1e-9)
	inst := m.ObjectPaths["root/CoMOffset"]
	require.NotNil(t, inst)
	require.Len(t, inst.Children, 1)
	assert.Contains(t, m.ObjectPaths, "root/CoMOffset/member")
}

func TestAnimationBinding(t *testing.T) {
	root := scene.NewObject("root", nil)
	door := scene.NewObject("door", triangle("door"))
	door.Animation = &scene.Action{Name: "open"}
	door.Animation.AddKey("location", 2, scene.Keyframe{Frame: 1, Value: 0, OutSlope: 0.5})
	door.Animation.AddKey("location", 2, scene.Keyframe{Frame: 25, Value: 1})
	door.Animation.AddKey("rotation_quaternion", 0, scene.Keyframe{Frame: 1, Value: 1})
	door.Animation.AddKey("rotation_euler", 0, scene.Keyframe{Frame: 1, Value: 1})
	root.AddChild(door)

	m := mustBuild(t, root)
	node := m.ObjectPaths["root/door"]
	require.NotNil(t, node.Animation)
	assert.Nil(t, m.Root.Animation)
	require.Len(t, node.Animation.Clips, 1)
	clip := node.Animation.Clips[0]
	assert.Equal(t, "open", clip.Name)
	assert.Equal(t, "open", node.Animation.Clip)
	require.Len(t, clip.Curves, 2)

	loc := clip.Curves[0]
	assert.Equal(t, "", loc.Path)
	assert.Equal(t, "m_LocalPosition.y", loc.Property)
	require.Len(t, loc.Keys, 2)
	assert.Equal(t, float32(0), loc.Keys[0].Time)
	assert.Equal(t, float32(12), loc.Keys[0].OutTangent)
	assert.Equal(t, float32(1), loc.Keys[1].Time)

	rot := clip.Curves[1]
	assert.Equal(t, "m_LocalRotation.w", rot.Property)
	assert.Equal(t, float32(-1), rot.Keys[0].Value)
}

func TestFindPathRoot(t *testing.T) {
	set := &AnimSet{}
	_, ok := FindPathRoot(set)
	assert.False(t, ok)

	set.add("a", Track{Path: "root/arm/hand", Curve: &scene.FCurve{}})
	set.add("b", Track{Path: "root/arm/elbow", Curve: &scene.FCurve{}})
	root, ok := FindPathRoot(set)
	require.True(t, ok)
	assert.Equal(t, "root/arm", root)
	assert.Equal(t, []string{"a", "b"}, set.Names)

	set.add("a", Track{Path: "other", Curve: &scene.FCurve{}})
	_, ok = FindPathRoot(set)
	assert.False(t, ok)
}

func TestStripNNN(t *testing.T) {
	for in, want := range map[string]string{
		"wing.001": "wing",
		"wing.1":   "wing.1",
		"wing.abc": "wing.abc",
		".001":     "",
		"wing":     "wing",
	} {
		assert.Equal(t, want, StripNNN(in), in)
	}
}
