package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/flywave/go-muexport/cfgnode"
)

const DefaultRescaleFactor = 1.25

// Part describes a stock part that can be instanced into a scene through
// its model group.
type Part struct {
	Name          string
	Scale         float64
	RescaleFactor float64
	Model         *Group
	Config        *cfgnode.ConfigNode
}

// NewPart reads name, scale and rescaleFactor from a PART node. Part names
// use '.' where config files use '_'.
func NewPart(cfg *cfgnode.ConfigNode) (*Part, error) {
	p := &Part{Scale: 1, RescaleFactor: DefaultRescaleFactor, Config: cfg}
	if name, ok := cfg.GetValue("name"); ok {
		p.Name = strings.ReplaceAll(name, "_", ".")
	}
	if v, ok := cfg.GetValue("scale"); ok {
		s, err := cfgnode.ParseFloat(v)
		if err != nil {
			return nil, err
		}
		p.Scale = s
	}
	if v, ok := cfg.GetValue("rescaleFactor"); ok {
		s, err := cfgnode.ParseFloat(v)
		if err != nil {
			return nil, err
		}
		p.RescaleFactor = s
	}
	return p, nil
}

// Instantiate creates an empty that instances the part's model group,
// scaled by the rescale factor.
func (p *Part) Instantiate(loc mgl64.Vec3, rot mgl64.Quat) *Object {
	obj := NewObject(p.Name, nil)
	obj.Location = loc
	obj.RotationMode = RotationQuaternion
	obj.RotationQuaternion = rot
	f := p.RescaleFactor
	obj.Scale = mgl64.Vec3{f, f, f}
	obj.DupliGroup = p.Model
	return obj
}
