package scene

import (
	"github.com/flywave/go3d/vec2"
	"github.com/flywave/go3d/vec3"
	"github.com/flywave/go3d/vec4"
)

// DataKind names the kind of data block attached to an object.
type DataKind string

const (
	KindMesh   DataKind = "MESH"
	KindLight  DataKind = "LIGHT"
	KindCamera DataKind = "CAMERA"
)

type Data interface {
	Kind() DataKind
}

// Mesh holds triangulated geometry. Submeshes index into the vertex
// arrays, one list per material slot, in the modeling tool's winding.
type Mesh struct {
	Name      string
	Vertices  []vec3.T
	Normals   []vec3.T
	Tangents  []vec4.T
	UVs       []vec2.T
	UV2s      []vec2.T
	Colors    [][4]float32
	Submeshes [][]uint32
	Materials []*Material
}

func (m *Mesh) Kind() DataKind { return KindMesh }

func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Submeshes {
		n += len(s) / 3
	}
	return n
}

type LightType string

const (
	LightSpot  LightType = "SPOT"
	LightSun   LightType = "SUN"
	LightPoint LightType = "POINT"
	LightArea  LightType = "AREA"
)

type Light struct {
	Name     string
	Type     LightType
	Color    [3]float64
	Distance float64
	Energy   float64
	// SpotSize is the full cone angle in radians.
	SpotSize float64
}

func (l *Light) Kind() DataKind { return KindLight }

type CameraType string

const (
	CameraPersp CameraType = "PERSP"
	CameraOrtho CameraType = "ORTHO"
)

type Camera struct {
	Name string
	Type CameraType
	// Angle is the field of view in radians.
	Angle     float64
	ClipStart float64
	ClipEnd   float64
}

func (c *Camera) Kind() DataKind { return KindCamera }

// OtherData stands for data kinds the exporter does not understand
// (curves, armatures, text...).
type OtherData struct {
	Type string
}

func (o *OtherData) Kind() DataKind { return DataKind(o.Type) }
