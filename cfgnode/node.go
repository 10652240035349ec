// Package cfgnode reads and writes the game's nested "config node" text
// format:
//
//	PART
//	{
//		name = fuelTank
//		MODULE
//		{
//			name = ModuleFuel
//		}
//	}
package cfgnode

import (
	"strings"
)

type Value struct {
	Name  string
	Value string
}

type Child struct {
	Name string
	Node *ConfigNode
}

// ConfigNode keeps values and child nodes in file order. Names may repeat.
type ConfigNode struct {
	Values []Value
	Nodes  []Child
}

func New() *ConfigNode {
	return &ConfigNode{}
}

func (n *ConfigNode) AddValue(name, value string) {
	n.Values = append(n.Values, Value{Name: name, Value: value})
}

// SetValue replaces the first value called name, or appends it.
func (n *ConfigNode) SetValue(name, value string) {
	for i := range n.Values {
		if n.Values[i].Name == name {
			n.Values[i].Value = value
			return
		}
	}
	n.AddValue(name, value)
}

func (n *ConfigNode) HasValue(name string) bool {
	_, ok := n.GetValue(name)
	return ok
}

func (n *ConfigNode) GetValue(name string) (string, bool) {
	for _, v := range n.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}

func (n *ConfigNode) GetValues(name string) []string {
	var out []string
	for _, v := range n.Values {
		if v.Name == name {
			out = append(out, v.Value)
		}
	}
	return out
}

// RemoveValues drops every value called name and reports how many went.
func (n *ConfigNode) RemoveValues(name string) int {
	kept := n.Values[:0]
	removed := 0
	for _, v := range n.Values {
		if v.Name == name {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	n.Values = kept
	return removed
}

func (n *ConfigNode) AddNode(name string, node *ConfigNode) {
	n.Nodes = append(n.Nodes, Child{Name: name, Node: node})
}

func (n *ConfigNode) AddNewNode(name string) *ConfigNode {
	node := New()
	n.AddNode(name, node)
	return node
}

func (n *ConfigNode) HasNode(name string) bool {
	return n.GetNode(name) != nil
}

// GetNode returns the first child called name, or nil.
func (n *ConfigNode) GetNode(name string) *ConfigNode {
	for _, c := range n.Nodes {
		if c.Name == name {
			return c.Node
		}
	}
	return nil
}

func (n *ConfigNode) GetNodes(name string) []*ConfigNode {
	var out []*ConfigNode
	for _, c := range n.Nodes {
		if c.Name == name {
			out = append(out, c.Node)
		}
	}
	return out
}

// ToString renders the node body, braces included, indented for level.
// Values come before child nodes.
func (n *ConfigNode) ToString(level int) string {
	var sb strings.Builder
	n.writeTo(&sb, level)
	return sb.String()
}

func (n *ConfigNode) String() string {
	return n.ToString(0)
}

func (n *ConfigNode) writeTo(sb *strings.Builder, level int) {
	outer := strings.Repeat("\t", level)
	inner := outer + "\t"
	sb.WriteString(outer)
	sb.WriteString("{\n")
	for _, v := range n.Values {
		sb.WriteString(inner)
		sb.WriteString(v.Name)
		sb.WriteString(" = ")
		sb.WriteString(v.Value)
		sb.WriteString("\n")
	}
	for _, c := range n.Nodes {
		sb.WriteString(inner)
		sb.WriteString(c.Name)
		sb.WriteString("\n")
		c.Node.writeTo(sb, level+1)
	}
	sb.WriteString(outer)
	sb.WriteString("}\n")
}

// Document renders every top-level node as "NAME" followed by its body.
func (n *ConfigNode) Document() string {
	var sb strings.Builder
	for _, c := range n.Nodes {
		sb.WriteString(c.Name)
		sb.WriteString("\n")
		c.Node.writeTo(&sb, 0)
	}
	return sb.String()
}
