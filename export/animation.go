package export

import (
	"strings"

	"go.uber.org/zap"

	"github.com/flywave/go-muexport/mu"
	"github.com/flywave/go-muexport/scene"
)

// WrapClampForever holds the first and last key outside the clip range.
const WrapClampForever int32 = 8

// Track is one animated curve and the path of the object it moves.
type Track struct {
	Path   string
	Object *scene.Object
	Curve  *scene.FCurve
}

// AnimSet groups tracks by action name. Names keeps first-seen order.
type AnimSet struct {
	Names  []string
	Tracks map[string][]Track
}

func (s *AnimSet) Empty() bool {
	return len(s.Names) == 0
}

func (s *AnimSet) add(name string, t Track) {
	if s.Tracks == nil {
		s.Tracks = map[string][]Track{}
	}
	if _, ok := s.Tracks[name]; !ok {
		s.Names = append(s.Names, name)
	}
	s.Tracks[name] = append(s.Tracks[name], t)
}

// CollectAnimations gathers every keyed curve below obj. Paths are built
// the same way the tree builder builds them.
func CollectAnimations(obj *scene.Object) *AnimSet {
	set := &AnimSet{}
	collectTracks(set, obj, "")
	return set
}

func collectTracks(set *AnimSet, obj *scene.Object, prefix string) {
	path := StripNNN(obj.Name)
	if prefix != "" {
		path = prefix + "/" + path
	}
	if act := obj.Animation; act != nil {
		for _, c := range act.Curves {
			if len(c.Keys) == 0 {
				continue
			}
			set.add(act.Name, Track{Path: path, Object: obj, Curve: c})
		}
	}
	for _, c := range obj.Children {
		collectTracks(set, c, path)
	}
}

// FindPathRoot returns the deepest path that is a prefix of every track
// path.
func FindPathRoot(set *AnimSet) (string, bool) {
	var root []string
	first := true
	for _, name := range set.Names {
		for _, t := range set.Tracks[name] {
			parts := strings.Split(t.Path, "/")
			if first {
				root, first = parts, false
				continue
			}
			n := 0
			for n < len(root) && n < len(parts) && root[n] == parts[n] {
				n++
			}
			root = root[:n]
		}
	}
	if len(root) == 0 {
		return "", false
	}
	return strings.Join(root, "/"), true
}

type curveTarget struct {
	property string
	negate   bool
}

// curveTargets maps (data path, index) to the engine property. Y and Z
// swap and the quaternion's w flips sign, matching the writer.
var curveTargets = map[string][]curveTarget{
	"location": {
		{"m_LocalPosition.x", false},
		{"m_LocalPosition.z", false},
		{"m_LocalPosition.y", false},
	},
	"rotation_quaternion": {
		{"m_LocalRotation.w", true},
		{"m_LocalRotation.x", false},
		{"m_LocalRotation.z", false},
		{"m_LocalRotation.y", false},
	},
	"scale": {
		{"m_LocalScale.x", false},
		{"m_LocalScale.z", false},
		{"m_LocalScale.y", false},
	},
}

// Timing converts frames to seconds.
type Timing struct {
	FPS        float64
	FrameStart float64
}

func (t Timing) key(k scene.Keyframe, negate bool) mu.Key {
	sign := 1.0
	if negate {
		sign = -1
	}
	return mu.Key{
		Time:       float32((k.Frame - t.FrameStart) / t.FPS),
		Value:      float32(sign * k.Value),
		InTangent:  float32(sign * k.InSlope * t.FPS),
		OutTangent: float32(sign * k.OutSlope * t.FPS),
	}
}

func relativePath(path, root string) string {
	if path == root {
		return ""
	}
	return strings.TrimPrefix(path, root+"/")
}

// MakeAnimations compiles one clip per action. Curve paths are relative
// to root, the node the animation is bound to.
func MakeAnimations(m *Model, set *AnimSet, root string) *mu.Animation {
	timing, log := m.Timing, m.logger()
	if timing.FPS <= 0 {
		timing.FPS = 24
	}
	anim := &mu.Animation{}
	for _, name := range set.Names {
		clip := &mu.Clip{Name: name}
		for _, t := range set.Tracks[name] {
			targets, ok := curveTargets[t.Curve.DataPath]
			if !ok || t.Curve.Index < 0 || t.Curve.Index >= len(targets) {
				log.Warn("unsupported animation curve",
					zap.String("path", t.Path),
					zap.String("data_path", t.Curve.DataPath),
					zap.Int("index", t.Curve.Index))
				continue
			}
			target := targets[t.Curve.Index]
			curve := &mu.Curve{
				Path:     relativePath(t.Path, root),
				Property: target.property,
				Type:     mu.CurveTransform,
				PreWrap:  WrapClampForever,
				PostWrap: WrapClampForever,
			}
			for _, k := range t.Curve.Keys {
				curve.Keys = append(curve.Keys, timing.key(k, target.negate))
			}
			clip.Curves = append(clip.Curves, curve)
		}
		anim.Clips = append(anim.Clips, clip)
	}
	if len(anim.Clips) > 0 {
		anim.Clip = anim.Clips[0].Name
	}
	return anim
}

// bindAnimation attaches the compiled clips to the node at the path root.
func bindAnimation(m *Model, set *AnimSet) {
	root, ok := FindPathRoot(set)
	if !ok {
		return
	}
	node, ok := m.ObjectPaths[root]
	if !ok {
		m.logger().Warn("animation root was not exported", zap.String("path", root))
		return
	}
	node.Animation = MakeAnimations(m, set, root)
}
