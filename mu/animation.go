package mu

import "github.com/flywave/go3d/vec3"

type Key struct {
	Time       float32
	Value      float32
	InTangent  float32
	OutTangent float32
	// TangentMode is unused by the engine but part of the record.
	TangentMode int32
}

type Curve struct {
	Path     string
	Property string
	Type     int32
	PreWrap  int32
	PostWrap int32
	Keys     []Key
}

type Clip struct {
	Name     string
	LBCenter vec3.T
	LBSize   vec3.T
	WrapMode int32
	Curves   []*Curve
}

type Animation struct {
	Clips    []*Clip
	Clip     string
	AutoPlay bool
}

func (a *Animation) write(w *Writer) {
	w.Int(int32(len(a.Clips)))
	for _, clip := range a.Clips {
		w.String(clip.Name)
		w.Vector(clip.LBCenter)
		w.Vector(clip.LBSize)
		w.Int(clip.WrapMode)
		w.Int(int32(len(clip.Curves)))
		for _, c := range clip.Curves {
			w.String(c.Path)
			w.String(c.Property)
			w.Int(c.Type)
			w.Int(c.PreWrap)
			w.Int(c.PostWrap)
			w.Int(int32(len(c.Keys)))
			for _, k := range c.Keys {
				w.Floats(k.Time, k.Value, k.InTangent, k.OutTangent)
				w.Int(k.TangentMode)
			}
		}
	}
	w.String(a.Clip)
	w.Bool(a.AutoPlay)
}
