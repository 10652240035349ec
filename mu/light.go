package mu

type Light struct {
	Type        LightType
	Intensity   float32
	Range       float32
	Color       [4]float32
	CullingMask int32
	SpotAngle   float32
}

func (l *Light) write(w *Writer) {
	w.Int(int32(l.Type))
	w.Float(l.Intensity)
	w.Float(l.Range)
	w.Color(l.Color)
	w.Int(l.CullingMask)
	w.Float(l.SpotAngle)
}

type Camera struct {
	ClearFlags      ClearFlags
	BackgroundColor [4]float32
	CullingMask     int32
	Orthographic    bool
	FOV             float32
	Near            float32
	Far             float32
	Depth           float32
}

func (c *Camera) write(w *Writer) {
	w.Int(int32(c.ClearFlags))
	w.Color(c.BackgroundColor)
	w.Int(c.CullingMask)
	w.Bool(c.Orthographic)
	w.Float(c.FOV)
	w.Float(c.Near)
	w.Float(c.Far)
	w.Float(c.Depth)
}
