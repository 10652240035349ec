package scene

// Keyframe slopes are in value units per frame.
type Keyframe struct {
	Frame    float64 `yaml:"frame"`
	Value    float64 `yaml:"value"`
	InSlope  float64 `yaml:"in_slope"`
	OutSlope float64 `yaml:"out_slope"`
}

// FCurve animates one component of a transform property.
// DataPath is "location", "rotation_quaternion", "rotation_euler" or
// "scale"; Index selects the component (w, x, y, z for quaternions).
type FCurve struct {
	DataPath string     `yaml:"data_path"`
	Index    int        `yaml:"index"`
	Keys     []Keyframe `yaml:"keys"`
}

// Action is a named set of curves. Objects sharing an action name are
// exported as one clip.
type Action struct {
	Name   string    `yaml:"name"`
	Curves []*FCurve `yaml:"curves"`
}

func (a *Action) Curve(dataPath string, index int) *FCurve {
	for _, c := range a.Curves {
		if c.DataPath == dataPath && c.Index == index {
			return c
		}
	}
	return nil
}

// AddKey appends a key to the curve for (dataPath, index), creating it.
func (a *Action) AddKey(dataPath string, index int, k Keyframe) {
	c := a.Curve(dataPath, index)
	if c == nil {
		c = &FCurve{DataPath: dataPath, Index: index}
		a.Curves = append(a.Curves, c)
	}
	c.Keys = append(c.Keys, k)
}
