package export

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

var lightTypes = map[scene.LightType]mu.LightType{
	scene.LightSpot:  mu.LightSpot,
	scene.LightSun:   mu.LightDirectional,
	scene.LightPoint: mu.LightPoint,
	scene.LightArea:  mu.LightArea,
}

var clearFlags = map[scene.ClearFlags]mu.ClearFlags{
	scene.ClearSkybox:  mu.ClearSkybox,
	scene.ClearColor:   mu.ClearColor,
	scene.ClearDepth:   mu.ClearDepth,
	scene.ClearNothing: mu.ClearNothing,
}

func makeLight(l *scene.Light, obj *scene.Object) (*mu.Light, error) {
	typ, ok := lightTypes[l.Type]
	if !ok {
		return nil, errors.Errorf("Unknown light type %q on %q", l.Type, obj.Name)
	}
	out := &mu.Light{
		Type:        typ,
		Intensity:   float32(l.Energy),
		Range:       float32(l.Distance),
		Color:       [4]float32{float32(l.Color[0]), float32(l.Color[1]), float32(l.Color[2]), 1},
		CullingMask: scene.LayerMask(obj.Props.CullingMask),
	}
	if typ == mu.LightSpot {
		out.SpotAngle = float32(mgl64.RadToDeg(l.SpotSize))
	}
	return out, nil
}

func makeCamera(c *scene.Camera, obj *scene.Object) (*mu.Camera, error) {
	p := &obj.Props
	flags, ok := clearFlags[p.ClearFlags]
	if !ok {
		return nil, errors.Errorf("Unknown clear flags %q on %q", p.ClearFlags, obj.Name)
	}
	var bg [4]float32
	for i, v := range p.BackgroundColor {
		bg[i] = float32(v)
	}
	return &mu.Camera{
		ClearFlags:      flags,
		BackgroundColor: bg,
		CullingMask:     scene.LayerMask(p.CullingMask),
		Orthographic:    c.Type == scene.CameraOrtho,
		FOV:             float32(mgl64.RadToDeg(c.Angle)),
		Near:            float32(c.ClipStart),
		Far:             float32(c.ClipEnd),
		Depth:           float32(p.Depth),
	}, nil
}
