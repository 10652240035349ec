package export

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-muexport/cfgnode"
	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

const partTemplate = `PART
{
	name = testPart
	module = Part
	node_stack_bottom = 0, -1, 0, 0, -1, 0, 2
	node_stack_top = 9, 9, 9, 0, 1, 0, 1
}
`

func partScene() (*scene.Scene, *scene.Object) {
	sc := scene.New("test")
	sc.Texts["pod.cfg.in"] = partTemplate

	root := scene.NewObject("pod", triangle("hull", material("hull")))
	root.Props.ModelType = scene.ModelPart
	top := scene.NewObject("node_stack_top", nil)
	top.Location = mgl64.Vec3{0, 0, 1.5}
	root.AddChild(top)
	root.AddChild(scene.NewObject("node_attach", nil))
	root.AddChild(scene.NewObject("node_dock", nil))
	com := scene.NewObject("CoMOffset", nil)
	com.Location = mgl64.Vec3{0, 0.5, 0}
	root.AddChild(com)

	iva := scene.NewObject("podInternal", nil)
	iva.Props.ModelType = scene.ModelInternal
	iva.Location = mgl64.Vec3{1, 2, 3}
	root.AddChild(iva)
	for _, name := range []string{"seat", "panel.001"} {
		p := scene.NewObject(name, nil)
		p.Props.ModelType = scene.ModelProp
		p.Location = mgl64.Vec3{1, 2, 3}
		p.Scale = mgl64.Vec3{1, 1, 2}
		iva.AddChild(p)
	}
	sc.AddRoot(root)
	return sc, root
}

func TestPartConfig(t *testing.T) {
	sc, root := partScene()
	m, err := Build(sc, root, nil)
	require.NoError(t, err)

	doc, err := cfgnode.Load(partTemplate)
	require.NoError(t, err)
	ok, err := BuildConfig(m, doc)
	require.NoError(t, err)
	require.True(t, ok)

	part := doc.GetNode("PART")
	assert.Equal(t, []string{"0, 0, 0.5"}, part.GetValues("CoMOffset"))
	assert.False(t, part.HasValue("CoPOffset"))

	internals := part.GetNodes("INTERNAL")
	require.Len(t, internals, 1)
	name, _ := internals[0].GetValue("name")
	offset, _ := internals[0].GetValue("offset")
	assert.Equal(t, "podInternal", name)
	assert.Equal(t, "1, 3, 2", offset)
	assert.False(t, internals[0].HasValue("scale"))

	// attach first, then stacks by name, the template's top node loses to
	// the scene's
	var names []string
	for _, v := range part.Values {
		if strings.HasPrefix(v.Name, "node_") {
			names = append(names, v.Name)
		}
	}
	assert.Equal(t, []string{"node_attach", "node_stack_bottom", "node_stack_top"}, names)
	top, _ := part.GetValue("node_stack_top")
	assert.Equal(t, "0, 1.5, 0, 0, 1, 0, 1", top)
	bottom, _ := part.GetValue("node_stack_bottom")
	assert.Equal(t, "0, -1, 0, 0, -1, 0, 2", bottom)

	nodes := part.GetNodes("NODE")
	require.Len(t, nodes, 1)
	dock, _ := nodes[0].GetValue("name")
	assert.Equal(t, "dock", dock)
	method, _ := nodes[0].GetValue("method")
	assert.Equal(t, "FIXED_JOINT", method)
}

func TestInternalConfig(t *testing.T) {
	sc, root := partScene()
	iva := root.Children[len(root.Children)-1]
	sc.Texts["podInternal.cfg.in"] = "INTERNAL\n{\n\tname = podInternal\n}\n"

	m, err := Build(sc, iva, nil)
	require.NoError(t, err)
	doc, err := cfgnode.Load(sc.Texts["podInternal.cfg.in"])
	require.NoError(t, err)
	ok, err := BuildConfig(m, doc)
	require.NoError(t, err)
	require.True(t, ok)

	props := doc.GetNode("INTERNAL").GetNodes("PROP")
	require.Len(t, props, 2)
	name, _ := props[1].GetValue("name")
	assert.Equal(t, "panel", name)
	pos, _ := props[0].GetValue("position")
	assert.Equal(t, "1, 3, 2", pos)
	rot, _ := props[0].GetValue("rotation")
	assert.Equal(t, "0, 0, 0, -1", rot)
	scale, _ := props[0].GetValue("scale")
	assert.Equal(t, "1, 2, 1", scale)
}

func TestPropRotationSwizzled(t *testing.T) {
	iva := scene.NewObject("iva", nil)
	iva.Props.ModelType = scene.ModelInternal
	p := scene.NewObject("dial", nil)
	p.Props.ModelType = scene.ModelProp
	p.RotationMode = scene.RotationQuaternion
	p.RotationQuaternion = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
	iva.AddChild(p)

	m, err := Build(nil, iva, nil)
	require.NoError(t, err)
	doc, err := cfgnode.Load("INTERNAL\n{\n\tname = iva\n}\n")
	require.NoError(t, err)
	ok, err := BuildConfig(m, doc)
	require.NoError(t, err)
	require.True(t, ok)

	props := doc.GetNode("INTERNAL").GetNodes("PROP")
	require.Len(t, props, 1)
	text, _ := props[0].GetValue("rotation")
	rot, err := cfgnode.ParseVector(text)
	require.NoError(t, err)
	// z and y trade places, w flips sign
	h := math.Sqrt2 / 2
	assert.InDeltaSlice(t, []float64{0, h, 0, -h}, rot, 1e-6)
}

func TestConfigMissingSection(t *testing.T) {
	sc, root := partScene()
	m, err := Build(sc, root, nil)
	require.NoError(t, err)
	doc, err := cfgnode.Load("PROP\n{\n}\n")
	require.NoError(t, err)
	ok, err := BuildConfig(m, doc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExportObjectWritesPair(t *testing.T) {
	sc, root := partScene()
	dir := t.TempDir()
	res, err := ExportObject(sc, root, filepath.Join(dir, "pod.mu"), nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "pod.mu"), res.MuPath)
	data, err := os.ReadFile(res.MuPath)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, uint32(mu.ModelBinary), binary.LittleEndian.Uint32(data[0:]))
	assert.Equal(t, uint32(mu.FileVersion), binary.LittleEndian.Uint32(data[4:]))

	assert.Equal(t, filepath.Join(dir, "pod.cfg"), res.ConfigPath)
	text, err := os.ReadFile(res.ConfigPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(text), "PART\n{\n\tname = testPart\n"))
	assert.Contains(t, string(text), "\tINTERNAL\n\t{\n\t\tname = podInternal\n")
}

func TestExportTemplateFile(t *testing.T) {
	root := scene.NewObject("crate", triangle("crate"))
	root.Props.ModelType = scene.ModelProp
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crate.cfg.in"), []byte("PROP\n{\n\tname = crate\n}\n"), 0o644))

	res, err := ExportObject(nil, root, filepath.Join(dir, "crate.mu"), nil)
	require.NoError(t, err)
	text, err := os.ReadFile(res.ConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "PROP\n{\n\tname = crate\n}\n", string(text))
}

func TestExportWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	res, err := ExportObject(nil, scene.NewObject("crate", triangle("crate")), filepath.Join(dir, "crate.mu"), nil)
	require.NoError(t, err)
	assert.Empty(t, res.ConfigPath)
	assert.NoFileExists(t, filepath.Join(dir, "crate.cfg"))
}

func TestExportBrokenTemplate(t *testing.T) {
	sc := scene.New("test")
	sc.Texts["crate.cfg.in"] = "PART\n{\n"
	dir := t.TempDir()
	res, err := ExportObject(sc, scene.NewObject("crate", triangle("crate")), filepath.Join(dir, "crate.mu"), nil)
	require.NoError(t, err)
	assert.Empty(t, res.ConfigPath)
	assert.FileExists(t, res.MuPath)
}
