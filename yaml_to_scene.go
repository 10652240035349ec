package asset3d

import (
	"os"
	"path/filepath"

	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/flywave/go-muexport/cfgnode"
	"github.com/flywave/go-muexport/scene"
)

// YamlToScene reads the native scene document. It is the only format
// that carries every exporter setting: groups and instances, companion
// texts, per-object properties and animations.
type YamlToScene struct {
	dir string
}

type yamlScene struct {
	Name       string                 `yaml:"name"`
	FPS        float64                `yaml:"fps"`
	FrameStart *float64               `yaml:"frame_start"`
	Active     string                 `yaml:"active"`
	Props      *scene.SceneProperties `yaml:"scene"`
	Texts      map[string]string      `yaml:"texts"`
	// Images maps texture names to files probed for size and format.
	Images    map[string]string      `yaml:"images"`
	Materials []*scene.Material      `yaml:"materials"`
	Meshes    map[string]*yamlMesh   `yaml:"meshes"`
	Lights    map[string]*yamlLight  `yaml:"lights"`
	Cameras   map[string]*yamlCamera `yaml:"cameras"`
	Groups    []*yamlGroup           `yaml:"groups"`
	Objects   []*yamlObject          `yaml:"objects"`
}

type yamlMesh struct {
	Vertices  [][3]float32 `yaml:"vertices"`
	Normals   [][3]float32 `yaml:"normals"`
	Tangents  [][4]float32 `yaml:"tangents"`
	UVs       [][2]float32 `yaml:"uvs"`
	UV2s      [][2]float32 `yaml:"uv2s"`
	Colors    [][4]float32 `yaml:"colors"`
	Submeshes [][]uint32   `yaml:"submeshes"`
	// Materials name one material per submesh, "" for none.
	Materials []string `yaml:"materials"`
}

type yamlLight struct {
	Type     scene.LightType `yaml:"type"`
	Color    [3]float64      `yaml:"color"`
	Distance float64         `yaml:"distance"`
	Energy   float64         `yaml:"energy"`
	SpotSize float64         `yaml:"spot_size"`
}

type yamlCamera struct {
	Type      scene.CameraType `yaml:"type"`
	Angle     float64          `yaml:"angle"`
	ClipStart float64          `yaml:"clip_start"`
	ClipEnd   float64          `yaml:"clip_end"`
}

type yamlGroup struct {
	Name    string     `yaml:"name"`
	Offset  [3]float64 `yaml:"offset"`
	Objects []string   `yaml:"objects"`
}

type yamlPart struct {
	// Config names the text holding the PART node.
	Config string `yaml:"config"`
	Group  string `yaml:"group"`
}

type yamlObject struct {
	Name               string             `yaml:"name"`
	Location           [3]float64         `yaml:"location"`
	RotationMode       scene.RotationMode `yaml:"rotation_mode"`
	RotationEuler      [3]float64         `yaml:"rotation_euler"`
	RotationQuaternion *[4]float64        `yaml:"rotation_quaternion"`
	Scale              *[3]float64        `yaml:"scale"`

	Mesh   string `yaml:"mesh"`
	Light  string `yaml:"light"`
	Camera string `yaml:"camera"`
	// Data names an unsupported data kind such as CURVE.
	Data     string        `yaml:"data"`
	Instance string        `yaml:"instance"`
	Part     *yamlPart     `yaml:"part"`
	Props    yaml.Node     `yaml:"props"`
	Action   *scene.Action `yaml:"animation"`

	Children []*yamlObject `yaml:"children"`
}

func (cv *YamlToScene) Convert(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cv.dir = filepath.Dir(path)
	sc, err := cv.Parse(data)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = sceneName(path)
	}
	return sc, nil
}

// yamlBuild carries the lookup tables while objects are created.
type yamlBuild struct {
	doc       *yamlScene
	sc        *scene.Scene
	dir       string
	materials map[string]*scene.Material
	meshes    map[string]*scene.Mesh
	lights    map[string]*scene.Light
	cameras   map[string]*scene.Camera
	objects   map[string]*scene.Object
}

// Parse builds a scene from document bytes. Relative image paths resolve
// against the directory of the last converted file.
func (cv *YamlToScene) Parse(data []byte) (*scene.Scene, error) {
	doc := &yamlScene{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse scene document")
	}
	sc := scene.New(doc.Name)
	if doc.FPS > 0 {
		sc.FPS = doc.FPS
	}
	if doc.FrameStart != nil {
		sc.FrameStart = *doc.FrameStart
	}
	if doc.Props != nil {
		sc.Props = *doc.Props
	}
	for k, v := range doc.Texts {
		sc.Texts[k] = v
	}
	sc.Active = doc.Active

	b := &yamlBuild{
		doc:       doc,
		sc:        sc,
		dir:       cv.dir,
		materials: make(map[string]*scene.Material),
		meshes:    make(map[string]*scene.Mesh),
		lights:    make(map[string]*scene.Light),
		cameras:   make(map[string]*scene.Camera),
		objects:   make(map[string]*scene.Object),
	}
	if err := b.resources(); err != nil {
		return nil, err
	}
	// Groups are created before objects so instances can reference them,
	// members are filled once every object exists.
	for _, yg := range doc.Groups {
		sc.AddGroup(&scene.Group{Name: yg.Name, Offset: mgl64.Vec3(yg.Offset)})
	}
	for _, yo := range doc.Objects {
		obj, err := b.object(yo)
		if err != nil {
			return nil, err
		}
		sc.AddRoot(obj)
	}
	for _, yg := range doc.Groups {
		g := sc.Group(yg.Name)
		for _, name := range yg.Objects {
			obj, ok := b.objects[name]
			if !ok {
				return nil, errors.Errorf("group %q lists unknown object %q", yg.Name, name)
			}
			g.Add(obj)
		}
	}
	return sc, nil
}

func (b *yamlBuild) resources() error {
	for _, mat := range b.doc.Materials {
		for i := range mat.Textures {
			slot := &mat.Textures[i]
			if slot.Scale == [2]float64{} {
				slot.Scale = [2]float64{1, 1}
			}
			if path, ok := b.doc.Images[slot.Tex]; ok {
				slot.Image = probeImage(resolvePath(b.dir, path))
			}
		}
		b.materials[mat.Name] = mat
	}
	for name, ym := range b.doc.Meshes {
		mh, err := b.mesh(name, ym)
		if err != nil {
			return err
		}
		b.meshes[name] = mh
	}
	for name, yl := range b.doc.Lights {
		b.lights[name] = &scene.Light{
			Name: name, Type: yl.Type, Color: yl.Color,
			Distance: yl.Distance, Energy: yl.Energy, SpotSize: yl.SpotSize,
		}
	}
	for name, yc := range b.doc.Cameras {
		typ := yc.Type
		if typ == "" {
			typ = scene.CameraPersp
		}
		b.cameras[name] = &scene.Camera{
			Name: name, Type: typ, Angle: yc.Angle,
			ClipStart: yc.ClipStart, ClipEnd: yc.ClipEnd,
		}
	}
	return nil
}

func (b *yamlBuild) mesh(name string, ym *yamlMesh) (*scene.Mesh, error) {
	mh := &scene.Mesh{Name: name, Submeshes: ym.Submeshes, Colors: ym.Colors}
	for _, v := range ym.Vertices {
		mh.Vertices = append(mh.Vertices, vec3.T(v))
	}
	for _, v := range ym.Normals {
		mh.Normals = append(mh.Normals, vec3.T(v))
	}
	for _, v := range ym.Tangents {
		mh.Tangents = append(mh.Tangents, vec4.T(v))
	}
	for _, v := range ym.UVs {
		mh.UVs = append(mh.UVs, vec2.T(v))
	}
	for _, v := range ym.UV2s {
		mh.UV2s = append(mh.UV2s, vec2.T(v))
	}
	for i := range mh.Submeshes {
		var mat *scene.Material
		if i < len(ym.Materials) && ym.Materials[i] != "" {
			var ok bool
			if mat, ok = b.materials[ym.Materials[i]]; !ok {
				return nil, errors.Errorf("mesh %q uses unknown material %q", name, ym.Materials[i])
			}
		}
		mh.Materials = append(mh.Materials, mat)
	}
	return mh, nil
}

func (b *yamlBuild) data(yo *yamlObject) (scene.Data, error) {
	switch {
	case yo.Mesh != "":
		if mh, ok := b.meshes[yo.Mesh]; ok {
			return mh, nil
		}
		return nil, errors.Errorf("object %q uses unknown mesh %q", yo.Name, yo.Mesh)
	case yo.Light != "":
		if l, ok := b.lights[yo.Light]; ok {
			return l, nil
		}
		return nil, errors.Errorf("object %q uses unknown light %q", yo.Name, yo.Light)
	case yo.Camera != "":
		if c, ok := b.cameras[yo.Camera]; ok {
			return c, nil
		}
		return nil, errors.Errorf("object %q uses unknown camera %q", yo.Name, yo.Camera)
	case yo.Data != "":
		return &scene.OtherData{Type: yo.Data}, nil
	}
	return nil, nil
}

// part instantiates a stock part: its model group scaled by the part's
// rescale factor.
func (b *yamlBuild) part(yo *yamlObject) (*scene.Object, error) {
	text, ok := b.sc.Text(yo.Part.Config)
	if !ok {
		return nil, errors.Errorf("object %q uses unknown part config %q", yo.Name, yo.Part.Config)
	}
	cfg, err := cfgnode.Load(text)
	if err != nil {
		return nil, errors.Wrapf(err, "part config %q", yo.Part.Config)
	}
	node := cfg.GetNode("PART")
	if node == nil {
		return nil, errors.Errorf("part config %q has no PART node", yo.Part.Config)
	}
	p, err := scene.NewPart(node)
	if err != nil {
		return nil, errors.Wrapf(err, "part config %q", yo.Part.Config)
	}
	group := yo.Part.Group
	if group == "" {
		group = p.Name
	}
	if p.Model = b.sc.Group(group); p.Model == nil {
		return nil, errors.Errorf("part %q has no model group %q", p.Name, group)
	}
	obj := p.Instantiate(mgl64.Vec3(yo.Location), mgl64.QuatIdent())
	if yo.Name != "" {
		obj.Name = yo.Name
	}
	return obj, nil
}

func (b *yamlBuild) object(yo *yamlObject) (*scene.Object, error) {
	var obj *scene.Object
	if yo.Part != nil {
		var err error
		if obj, err = b.part(yo); err != nil {
			return nil, err
		}
	} else {
		data, err := b.data(yo)
		if err != nil {
			return nil, err
		}
		obj = scene.NewObject(yo.Name, data)
		obj.Location = mgl64.Vec3(yo.Location)
		if yo.Scale != nil {
			obj.Scale = mgl64.Vec3(*yo.Scale)
		}
	}
	if _, dup := b.objects[obj.Name]; dup {
		return nil, errors.Errorf("duplicate object name %q", obj.Name)
	}
	b.objects[obj.Name] = obj

	if yo.RotationMode != "" {
		obj.RotationMode = yo.RotationMode
	}
	obj.RotationEuler = mgl64.Vec3(yo.RotationEuler)
	if q := yo.RotationQuaternion; q != nil {
		obj.RotationQuaternion = mgl64.Quat{W: q[0], V: mgl64.Vec3{q[1], q[2], q[3]}}
		if yo.RotationMode == "" {
			obj.RotationMode = scene.RotationQuaternion
		}
	}
	if yo.Instance != "" {
		if obj.DupliGroup = b.sc.Group(yo.Instance); obj.DupliGroup == nil {
			return nil, errors.Errorf("object %q instances unknown group %q", yo.Name, yo.Instance)
		}
	}
	if !yo.Props.IsZero() {
		if err := yo.Props.Decode(&obj.Props); err != nil {
			return nil, errors.Wrapf(err, "properties of %q", obj.Name)
		}
	}
	obj.Animation = yo.Action

	for _, yc := range yo.Children {
		child, err := b.object(yc)
		if err != nil {
			return nil, err
		}
		obj.AddChild(child)
	}
	return obj, nil
}
