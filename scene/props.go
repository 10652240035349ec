package scene

// ModelType selects how an exported model is described in its .cfg.
type ModelType string

const (
	ModelNone     ModelType = "NONE"
	ModelPart     ModelType = "PART"
	ModelProp     ModelType = "PROP"
	ModelInternal ModelType = "INTERNAL"
)

type ColliderKind string

const (
	ColliderNone    ColliderKind = "MU_COL_NONE"
	ColliderMesh    ColliderKind = "MU_COL_MESH"
	ColliderSphere  ColliderKind = "MU_COL_SPHERE"
	ColliderCapsule ColliderKind = "MU_COL_CAPSULE"
	ColliderBox     ColliderKind = "MU_COL_BOX"
	ColliderWheel   ColliderKind = "MU_COL_WHEEL"
)

// NodeMethod is the attach method recorded for transform-style nodes.
type NodeMethod string

const (
	NodeFixedJoint    NodeMethod = "FIXED_JOINT"
	NodeHingeJoint    NodeMethod = "HINGE_JOINT"
	NodeLockedJoint   NodeMethod = "LOCKED_JOINT"
	NodeMergedPhysics NodeMethod = "MERGED_PHYSICS"
	NodeNoPhysics     NodeMethod = "NO_PHYSICS"
	NodeMethodNone    NodeMethod = "NONE"
)

type Direction string

const (
	DirX Direction = "MU_X"
	DirY Direction = "MU_Y"
	DirZ Direction = "MU_Z"
)

// Axis maps a direction to the engine axis index (Y and Z swap).
func (d Direction) Axis() int32 {
	switch d {
	case DirY:
		return 2
	case DirZ:
		return 1
	}
	return 0
}

type ClearFlags string

const (
	ClearSkybox  ClearFlags = "SKYBOX"
	ClearColor   ClearFlags = "COLOR"
	ClearDepth   ClearFlags = "DEPTH"
	ClearNothing ClearFlags = "NOTHING"
)

type Spring struct {
	Spring         float64 `yaml:"spring"`
	Damper         float64 `yaml:"damper"`
	TargetPosition float64 `yaml:"target_position"`
}

type Friction struct {
	ExtremumSlip   float64 `yaml:"extremum_slip"`
	ExtremumValue  float64 `yaml:"extremum_value"`
	AsymptoteSlip  float64 `yaml:"asymptote_slip"`
	AsymptoteValue float64 `yaml:"asymptote_value"`
	Stiffness      float64 `yaml:"stiffness"`
}

// Properties are the per-object export settings.
type Properties struct {
	ModelType ModelType `yaml:"model_type"`
	Tag       string    `yaml:"tag"`
	Layer     int32     `yaml:"layer"`

	NodeSize      int        `yaml:"node_size"`
	NodeMethod    NodeMethod `yaml:"node_method"`
	NodeCrossfeed bool       `yaml:"node_crossfeed"`
	NodeRigid     bool       `yaml:"node_rigid"`

	Collider           ColliderKind `yaml:"collider"`
	IsTrigger          bool         `yaml:"is_trigger"`
	Center             [3]float64   `yaml:"center"`
	Radius             float64      `yaml:"radius"`
	Height             float64      `yaml:"height"`
	Direction          Direction    `yaml:"direction"`
	Size               [3]float64   `yaml:"size"`
	Mass               float64      `yaml:"mass"`
	SuspensionDistance float64      `yaml:"suspension_distance"`
	SuspensionSpring   Spring       `yaml:"suspension_spring"`
	ForwardFriction    Friction     `yaml:"forward_friction"`
	SideFriction       Friction     `yaml:"side_friction"`

	CullingMask     [32]bool   `yaml:"culling_mask"`
	ClearFlags      ClearFlags `yaml:"clear_flags"`
	BackgroundColor [4]float64 `yaml:"background_color"`
	Depth           float64    `yaml:"depth"`
}

func DefaultProperties() Properties {
	return Properties{
		ModelType:     ModelNone,
		Tag:           "Untagged",
		NodeSize:      1,
		NodeMethod:    NodeFixedJoint,
		NodeCrossfeed: true,
		Collider:      ColliderNone,
		Direction:     DirY,
		Size:          [3]float64{1, 1, 1},
		Radius:        1,
		ClearFlags:    ClearSkybox,
	}
}

// HasCollider reports whether the object stands for a collider.
func (p *Properties) HasCollider() bool {
	return p.Collider != "" && p.Collider != ColliderNone
}

// LayerMask packs 32 layer flags into a bit mask, bit i for layer i.
func LayerMask(flags [32]bool) int32 {
	var mask uint32
	for i, on := range flags {
		if on {
			mask |= 1 << uint(i)
		}
	}
	return int32(mask)
}

// SceneProperties hold scene-wide export defaults.
type SceneProperties struct {
	ModelType ModelType `yaml:"model_type"`
	// Internal names the internal space a PART references.
	Internal string `yaml:"internal"`
}
