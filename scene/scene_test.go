package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flywave/go-muexport/cfgnode"
)

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, 1e-9), "want %v got %v", want, got)
}

func TestEulerOrder(t *testing.T) {
	e := mgl64.Vec3{math.Pi / 2, 0, math.Pi / 2}
	q := EulerToQuat(e, RotationXYZ)
	// X first: +Y goes to +Z, then Z leaves it alone.
	assertVec(t, mgl64.Vec3{0, 0, 1}, q.Rotate(mgl64.Vec3{0, 1, 0}))

	q = EulerToQuat(e, "ZYX")
	// Z first: +Y goes to -X, then X leaves it alone.
	assertVec(t, mgl64.Vec3{-1, 0, 0}, q.Rotate(mgl64.Vec3{0, 1, 0}))
}

func TestRotationModes(t *testing.T) {
	o := NewObject("o", nil)
	o.RotationEuler = mgl64.Vec3{0, 0, math.Pi}
	assertVec(t, mgl64.Vec3{-1, 0, 0}, o.Rotation().Rotate(mgl64.Vec3{1, 0, 0}))

	o.RotationMode = RotationQuaternion
	assert.Equal(t, mgl64.QuatIdent(), o.Rotation())
}

func TestMatrixWorld(t *testing.T) {
	parent := NewObject("parent", nil)
	parent.Location = mgl64.Vec3{0, 0, 2}
	parent.Scale = mgl64.Vec3{2, 2, 2}
	child := NewObject("child", nil)
	child.Location = mgl64.Vec3{1, 0, 0}
	parent.AddChild(child)

	p := child.MatrixWorld().Col(3)
	assertVec(t, mgl64.Vec3{2, 0, 2}, p.Vec3())
	assert.Equal(t, parent, child.Parent)
}

func TestAddChildReparents(t *testing.T) {
	a := NewObject("a", nil)
	b := NewObject("b", nil)
	c := NewObject("c", nil)
	a.AddChild(c)
	b.AddChild(c)
	assert.Empty(t, a.Children)
	assert.Equal(t, []*Object{c}, b.Children)
}

func TestIsGroupRoot(t *testing.T) {
	g := &Group{Name: "pod"}
	outside := NewObject("outside", nil)
	top := NewObject("top", nil)
	inner := NewObject("inner", nil)
	stray := NewObject("stray", nil)
	top.AddChild(inner)
	outside.AddChild(stray)
	g.Add(top, inner, stray)

	assert.True(t, top.IsGroupRoot(g))
	assert.True(t, inner.IsGroupRoot(g))
	assert.False(t, stray.IsGroupRoot(g))
	assert.True(t, g.Has(inner))
	assert.False(t, g.Has(outside))
}

func TestLayerMask(t *testing.T) {
	var flags [32]bool
	flags[0] = true
	flags[3] = true
	flags[31] = true
	assert.Equal(t, int32(-2147483639), LayerMask(flags))
	assert.Equal(t, int32(0), LayerMask([32]bool{}))
}

func TestDirectionAxis(t *testing.T) {
	assert.Equal(t, int32(0), DirX.Axis())
	assert.Equal(t, int32(2), DirY.Axis())
	assert.Equal(t, int32(1), DirZ.Axis())
}

func TestSceneLookup(t *testing.T) {
	s := New("craft")
	root := NewObject("root", nil)
	child := NewObject("engine", &Mesh{})
	root.AddChild(child)
	s.AddRoot(root)

	assert.Equal(t, child, s.Object("engine"))
	assert.Nil(t, s.Object("missing"))
	assert.Equal(t, root, s.ActiveObject())
	s.Active = "engine"
	assert.Equal(t, child, s.ActiveObject())
	assert.Len(t, s.Objects(), 2)

	s.Texts["engine.cfg.in"] = "PART {}"
	_, ok := s.Text("engine.cfg.in")
	assert.True(t, ok)
}

func TestPartInstantiate(t *testing.T) {
	cfg, err := cfgnode.Load("PART\n{\n\tname = fuel_tank_1\n\trescaleFactor = 1\n\tscale = 0.5\n}\n")
	require.NoError(t, err)
	part, err := NewPart(cfg.GetNode("PART"))
	require.NoError(t, err)
	assert.Equal(t, "fuel.tank.1", part.Name)
	assert.Equal(t, 0.5, part.Scale)
	assert.Equal(t, 1.0, part.RescaleFactor)

	part.Model = &Group{Name: "part:fuel.tank.1"}
	obj := part.Instantiate(mgl64.Vec3{0, 0, 1}, mgl64.QuatIdent())
	assert.Nil(t, obj.Data)
	assert.Equal(t, part.Model, obj.DupliGroup)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, obj.Scale)

	cfg, err = cfgnode.Load("PART\n{\n\tname = x\n}\n")
	require.NoError(t, err)
	part, err = NewPart(cfg.GetNode("PART"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRescaleFactor, part.RescaleFactor)
}

func TestActionKeys(t *testing.T) {
	a := &Action{Name: "open"}
	a.AddKey("location", 2, Keyframe{Frame: 1, Value: 0})
	a.AddKey("location", 2, Keyframe{Frame: 10, Value: 1})
	a.AddKey("scale", 0, Keyframe{Frame: 1, Value: 1})
	require.Len(t, a.Curves, 2)
	assert.Len(t, a.Curve("location", 2).Keys, 2)
	assert.Nil(t, a.Curve("location", 0))
}
