package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Group is a reusable sub-hierarchy instanced by empties.
type Group struct {
	Name    string
	Objects []*Object
	// Offset is subtracted from member positions at each instance.
	Offset mgl64.Vec3
}

func (g *Group) Add(objs ...*Object) {
	for _, o := range objs {
		if !o.InGroup(g.Name) {
			o.UsersGroup = append(o.UsersGroup, g.Name)
		}
		g.Objects = append(g.Objects, o)
	}
}

func (g *Group) Has(o *Object) bool {
	for _, m := range g.Objects {
		if m == o {
			return true
		}
	}
	return false
}

type Scene struct {
	Name  string
	Roots []*Object
	// Groups keep the order they were declared in.
	Groups []*Group
	// Texts is the companion text registry (config templates live here).
	Texts map[string]string
	Props SceneProperties
	FPS   float64
	// FrameStart is the first frame of the timeline.
	FrameStart float64
	// Active names the object to export when none is given.
	Active string
}

func New(name string) *Scene {
	return &Scene{
		Name:       name,
		Texts:      map[string]string{},
		Props:      SceneProperties{ModelType: ModelPart},
		FPS:        24,
		FrameStart: 1,
	}
}

func (s *Scene) AddRoot(o *Object) {
	s.Roots = append(s.Roots, o)
}

func (s *Scene) AddGroup(g *Group) {
	s.Groups = append(s.Groups, g)
}

func (s *Scene) Group(name string) *Group {
	for _, g := range s.Groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Objects lists every object reachable from the roots, parents first.
func (s *Scene) Objects() []*Object {
	var out []*Object
	for _, r := range s.Roots {
		r.Walk(func(o *Object) { out = append(out, o) })
	}
	return out
}

func (s *Scene) Object(name string) *Object {
	for _, o := range s.Objects() {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// ActiveObject resolves Active, falling back to the first root.
func (s *Scene) ActiveObject() *Object {
	if s.Active != "" {
		if o := s.Object(s.Active); o != nil {
			return o
		}
	}
	if len(s.Roots) > 0 {
		return s.Roots[0]
	}
	return nil
}

func (s *Scene) Text(name string) (string, bool) {
	if s.Texts == nil {
		return "", false
	}
	t, ok := s.Texts[name]
	return t, ok
}
