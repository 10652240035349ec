package export

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

type builder struct {
	model     *Model
	opts      *Options
	capture   Capturer
	meshes    MeshMaker
	colliders ColliderMaker
	log       *zap.Logger
}

// buildStep fills the role specific parts of node. Returning false drops
// the node and its subtree.
type buildStep func(b *builder, obj *scene.Object, node *mu.Object) (bool, error)

var buildSteps map[Role]buildStep

func init() {
	buildSteps = map[Role]buildStep{
		RoleEmpty:          (*builder).buildEmpty,
		RoleGroupInstance:  (*builder).buildEmpty,
		RoleRenderableMesh: (*builder).buildMesh,
		RoleLight:          (*builder).buildLight,
		RoleCamera:         (*builder).buildCamera,
	}
}

func (b *builder) register(path string, node *mu.Object) {
	if prev, ok := b.model.ObjectPaths[path]; ok && prev != node {
		b.log.Debug("object path reused, keeping the later node", zap.String("path", path))
	}
	b.model.ObjectPaths[path] = node
}

// build turns obj into a tree node. A nil node with a nil error means the
// object produced nothing.
func (b *builder) build(obj *scene.Object, prefix string) (*mu.Object, error) {
	role := Classify(obj)
	step, ok := buildSteps[role]
	if !ok {
		b.log.Debug("skipping object", zap.String("object", obj.Name), zap.Stringer("role", role))
		return nil, nil
	}
	node := mu.NewObject(convertTransform(obj))
	node.TagAndLayer = &mu.TagAndLayer{Tag: obj.Props.Tag, Layer: obj.Props.Layer}
	keep, err := step(b, obj, node)
	if err != nil {
		return nil, err
	}
	if !keep {
		return nil, nil
	}
	if fix, ok := roleFixes[role]; ok {
		applyFix(&node.Transform, fix)
	}

	path := node.Transform.Name
	if prefix != "" {
		path = prefix + "/" + path
	}
	b.register(path, node)

	if role == RoleGroupInstance {
		if err := b.buildGroup(obj, obj.DupliGroup, node, path); err != nil {
			return nil, err
		}
	}
	for _, c := range obj.Children {
		if err := b.addChild(node, c, path); err != nil {
			return nil, err
		}
	}
	return node, nil
}

// addChild runs the child scan: model type capture, then collider, then
// pruning, then normal recursion.
func (b *builder) addChild(parent *mu.Object, child *scene.Object, path string) error {
	if b.capture.MaybeCapture(b.model, child) {
		return nil
	}
	if child.Props.HasCollider() {
		col, err := b.colliders.MakeCollider(b.model, child)
		if err != nil {
			return errors.Wrapf(err, "Failed to build collider %q", child.Name)
		}
		if parent.Collider != nil {
			b.log.Debug("collider replaced", zap.String("parent", parent.Transform.Name), zap.String("collider", child.Name))
		}
		parent.Collider = col
		return nil
	}
	if !exportable(child) {
		b.log.Debug("pruning object", zap.String("object", child.Name), zap.String("kind", string(child.Data.Kind())))
		return nil
	}
	node, err := b.build(child, path)
	if err != nil {
		return err
	}
	if node != nil {
		parent.AddChild(node)
	}
	return nil
}

// buildGroup flattens a group instance. Each top level member is built
// with the group offset taken off its position, and the position is put
// back however the build ends.
func (b *builder) buildGroup(obj *scene.Object, g *scene.Group, node *mu.Object, path string) error {
	for _, o := range g.Objects {
		if !o.IsGroupRoot(g) || (o.Parent != nil && o.Parent.InGroup(g.Name)) {
			continue
		}
		if err := b.withOffset(o, g.Offset, func() error {
			return b.addChild(node, o, path)
		}); err != nil {
			return errors.Wrapf(err, "Failed to instance group %q on %q", g.Name, obj.Name)
		}
	}
	return nil
}

func (b *builder) withOffset(o *scene.Object, offset mgl64.Vec3, fn func() error) error {
	saved := o.Location
	o.Location = o.Location.Sub(offset)
	defer func() { o.Location = saved }()
	return fn()
}

// buildEmpty records attach node and offset markers. Group instances are
// empties too and go through the same markers before being flattened.
func (b *builder) buildEmpty(obj *scene.Object, node *mu.Object) (bool, error) {
	name := node.Transform.Name
	switch {
	case isAttachNodeName(name):
		n := NewAttachNode(obj, b.model.Inverse)
		b.model.Nodes = append(b.model.Nodes, n)
		if !n.KeepTransform() {
			return false, nil
		}
		applyFix(&node.Transform, attachNodeFix)
	case isOffsetMarker(name):
		b.model.Offsets[name] = b.model.localPosition(obj)
	}
	return true, nil
}

func (b *builder) buildMesh(obj *scene.Object, node *mu.Object) (bool, error) {
	mesh, err := b.meshes.MakeMesh(b.model, obj)
	if err != nil {
		return false, errors.Wrapf(err, "Failed to build mesh for %q", obj.Name)
	}
	node.SharedMesh = mesh
	node.Renderer = makeRenderer(b.model, obj.Data.(*scene.Mesh), b.opts)
	return true, nil
}

func (b *builder) buildLight(obj *scene.Object, node *mu.Object) (bool, error) {
	l, err := makeLight(obj.Data.(*scene.Light), obj)
	if err != nil {
		return false, err
	}
	node.Light = l
	return true, nil
}

func (b *builder) buildCamera(obj *scene.Object, node *mu.Object) (bool, error) {
	c, err := makeCamera(obj.Data.(*scene.Camera), obj)
	if err != nil {
		return false, err
	}
	node.Camera = c
	return true, nil
}
