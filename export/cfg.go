package export

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/cfgnode"
	"github.com/flywave/go-muexport/scene"
)

// TemplateSource is a registry of companion texts, looked up by name.
// *scene.Scene implements it.
type TemplateSource interface {
	Text(name string) (string, bool)
}

// basePath drops the extension of the target path.
func basePath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// findTemplate looks for "<model>.cfg.in" in src, then for a
// "<base>.cfg.in" file next to the target. It returns nil when there is
// no template.
func findTemplate(m *Model, src TemplateSource, path string) (*cfgnode.ConfigNode, error) {
	if src != nil {
		name := m.Name + ".cfg.in"
		if text, ok := src.Text(name); ok {
			doc, err := cfgnode.Load(text)
			if err != nil {
				return nil, errors.Wrapf(err, "Failed to parse template text %q", name)
			}
			return doc, nil
		}
	}
	file := basePath(path) + ".cfg.in"
	if _, err := os.Stat(file); err != nil {
		return nil, nil
	}
	return cfgnode.LoadFile(file)
}

func addInternalNode(node *cfgnode.ConfigNode, internal *scene.Object) {
	inode := node.AddNewNode("INTERNAL")
	inode.AddValue("name", StripNNN(internal.Name))
	inode.AddValue("offset", vec3Str(swapyz(internal.Location)))
	if internal.Scale != (mgl64.Vec3{1, 1, 1}) {
		inode.AddValue("scale", vec3Str(swapyz(internal.Scale)))
	}
}

func addPropNode(node *cfgnode.ConfigNode, prop *scene.Object) {
	pnode := node.AddNewNode("PROP")
	pnode.AddValue("name", StripNNN(prop.Name))
	pnode.AddValue("position", vec3Str(swapyz(prop.Location)))
	q := swizzleq(prop.Rotation())
	pnode.AddValue("rotation", vectorStr(q[:]...))
	pnode.AddValue("scale", vec3Str(swapyz(prop.Scale)))
}

// BuildConfig merges the model's derived data into the template section
// for its type. It reports false when the template has no such section.
func BuildConfig(m *Model, doc *cfgnode.ConfigNode) (bool, error) {
	node := doc.GetNode(string(m.Type))
	if node == nil {
		return false, nil
	}
	switch m.Type {
	case scene.ModelPart:
		if err := mergeLegacyNodes(m, node); err != nil {
			return false, err
		}
		for _, name := range []string{CoMOffset, CoPOffset, CoLOffset} {
			if v, ok := m.Offset(name); ok {
				node.AddValue(name, vec3Str(swapyz(v)))
			}
		}
		if m.Internal != nil {
			addInternalNode(node, m.Internal)
		}
		sortNodes(m.Nodes)
		for _, n := range m.Nodes {
			n.Save(node)
		}
	case scene.ModelInternal:
		for _, p := range m.Props {
			addPropNode(node, p)
		}
	}
	return true, nil
}

// GenerateConfig writes "<base>.cfg" from the template for the model. A
// missing or unreadable template only skips the config; the returned path
// is empty then.
func GenerateConfig(m *Model, src TemplateSource, path string) (string, error) {
	log := m.logger()
	doc, err := findTemplate(m, src, path)
	if err != nil {
		log.Warn("config template unusable, skipping config", zap.Error(err))
		return "", nil
	}
	if doc == nil {
		log.Debug("no config template", zap.String("model", m.Name))
		return "", nil
	}
	ok, err := BuildConfig(m, doc)
	if err != nil {
		log.Warn("config template unusable, skipping config", zap.Error(err))
		return "", nil
	}
	if !ok {
		log.Debug("config template has no section for model type", zap.String("type", string(m.Type)))
		return "", nil
	}
	out := basePath(path) + ".cfg"
	if err := os.WriteFile(out, []byte(doc.Document()), 0o644); err != nil {
		return "", errors.Wrapf(err, "Failed to write config %q", out)
	}
	return out, nil
}
