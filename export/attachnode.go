package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/cfgnode"
	"github.com/flywave/go-muexport/scene"
)

// NodeKind orders attachment nodes in the config: the surface attach
// node first, then stack nodes, then transform nodes.
type NodeKind int

const (
	NodeAttach NodeKind = iota
	NodeStack
	NodeTransform
)

const (
	attachName     = "node_attach"
	stackPrefix    = "node_stack_"
	transformBlock = "NODE"
)

// AttachNode is an attach point derived from a "node_" empty. Pos and
// Dir are in model space with the engine's axis order.
type AttachNode struct {
	Name string
	Kind NodeKind
	Pos  mgl64.Vec3
	Dir  mgl64.Vec3
	Size int

	// Transform nodes only.
	Transform string
	Method    scene.NodeMethod
	Crossfeed bool
	Rigid     bool
}

func nodeKind(name string) NodeKind {
	switch {
	case name == attachName:
		return NodeAttach
	case strings.HasPrefix(name, stackPrefix):
		return NodeStack
	}
	return NodeTransform
}

// NewAttachNode records obj relative to the model root. The node points
// along the empty's local +Z.
func NewAttachNode(obj *scene.Object, inverse mgl64.Mat4) *AttachNode {
	name := StripNNN(obj.Name)
	local := inverse.Mul4(obj.MatrixWorld())
	dir := local.Col(2).Vec3()
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return &AttachNode{
		Name:      name,
		Kind:      nodeKind(name),
		Pos:       swapyz(local.Col(3).Vec3()),
		Dir:       swapyz(dir),
		Size:      obj.Props.NodeSize,
		Transform: name,
		Method:    obj.Props.NodeMethod,
		Crossfeed: obj.Props.NodeCrossfeed,
		Rigid:     obj.Props.NodeRigid,
	}
}

// KeepTransform reports whether the marker stays in the object tree.
// Only transform nodes are looked up by name at runtime.
func (n *AttachNode) KeepTransform() bool {
	return n.Kind == NodeTransform
}

func (n *AttachNode) less(o *AttachNode) bool {
	if n.Kind != o.Kind {
		return n.Kind < o.Kind
	}
	return n.Name < o.Name
}

// Save appends the node to a PART section.
func (n *AttachNode) Save(node *cfgnode.ConfigNode) {
	switch n.Kind {
	case NodeAttach:
		node.AddValue(n.Name, vectorStr(n.Pos[0], n.Pos[1], n.Pos[2], n.Dir[0], n.Dir[1], n.Dir[2]))
	case NodeStack:
		node.AddValue(n.Name, vectorStr(n.Pos[0], n.Pos[1], n.Pos[2], n.Dir[0], n.Dir[1], n.Dir[2])+", "+strconv.Itoa(n.Size))
	default:
		b := node.AddNewNode(transformBlock)
		b.AddValue("name", strings.TrimPrefix(n.Name, attachNodePrefix))
		b.AddValue("transform", n.Transform)
		b.AddValue("size", strconv.Itoa(n.Size))
		b.AddValue("method", string(n.Method))
		b.AddValue("crossfeed", strconv.FormatBool(n.Crossfeed))
		b.AddValue("rigid", strconv.FormatBool(n.Rigid))
	}
}

func sortNodes(nodes []*AttachNode) {
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].less(nodes[j]) })
}

// parseLegacyNode reads a "node_attach" or "node_stack_*" template value
// of the form "x, y, z, dx, dy, dz[, size]".
func parseLegacyNode(name, value string) (*AttachNode, error) {
	vs, err := cfgnode.ParseVector(value)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to parse node %q", name)
	}
	if len(vs) < 6 {
		return nil, errors.Errorf("Node %q needs at least 6 components, got %d", name, len(vs))
	}
	n := &AttachNode{
		Name: name,
		Kind: nodeKind(name),
		Pos:  mgl64.Vec3{vs[0], vs[1], vs[2]},
		Dir:  mgl64.Vec3{vs[3], vs[4], vs[5]},
		Size: 1,
	}
	if len(vs) > 6 {
		n.Size = int(vs[6])
	}
	return n, nil
}

// mergeLegacyNodes moves attach and stack values out of the template
// section into the node list. Nodes built from the scene win on name
// clashes.
func mergeLegacyNodes(m *Model, section *cfgnode.ConfigNode) error {
	have := map[string]bool{}
	for _, n := range m.Nodes {
		have[n.Name] = true
	}
	var legacy []cfgnode.Value
	for _, v := range section.Values {
		if v.Name == attachName || strings.HasPrefix(v.Name, stackPrefix) {
			legacy = append(legacy, v)
		}
	}
	for _, v := range legacy {
		section.RemoveValues(v.Name)
		if have[v.Name] {
			continue
		}
		n, err := parseLegacyNode(v.Name, v.Value)
		if err != nil {
			return err
		}
		have[v.Name] = true
		m.Nodes = append(m.Nodes, n)
	}
	return nil
}
