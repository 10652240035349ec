// Package mu holds the output model tree and its little-endian binary codec.
package mu

const (
	ModelBinary = 76543
	FileVersion = 5
)

// EntryType tags every record written to a .mu stream.
type EntryType int32

const (
	EntryChildTransformStart EntryType = iota
	EntryChildTransformEnd
	EntryAnimation
	EntryMeshCollider
	EntrySphereCollider
	EntryCapsuleCollider
	EntryBoxCollider
	EntryMeshFilter
	EntryMeshRenderer
	EntrySkinnedMeshRenderer
	EntryMaterials
	EntryMaterial
	EntryTextures
	EntryMeshStart
	EntryMeshVerts
	EntryMeshUV
	EntryMeshUV2
	EntryMeshNormals
	EntryMeshTangents
	EntryMeshTriangles
	EntryMeshBoneWeights
	EntryMeshBindPoses
	EntryMeshEnd
	EntryLight
	EntryTagAndLayer
	EntryMeshCollider2
	EntrySphereCollider2
	EntryCapsuleCollider2
	EntryBoxCollider2
	EntryWheelCollider
	EntryCamera
	EntryParticles
	EntryMeshVertexColors
)

// PropertyType is the shader property kind of a material slot.
type PropertyType int32

const (
	PropColor PropertyType = iota
	PropVector
	PropFloat2
	PropFloat3
	PropTexture
)

// TextureType distinguishes plain textures from normal maps.
type TextureType int32

const (
	TextureDefault TextureType = iota
	TextureNormalMap
)

// LightType follows the engine's light enum.
type LightType int32

const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
)

// ClearFlags of a camera, as stored in the file (1 based).
type ClearFlags int32

const (
	ClearSkybox ClearFlags = iota + 1
	ClearColor
	ClearDepth
	ClearNothing
)

const (
	// CurveTransform is the engine's type id for Transform curves.
	CurveTransform int32 = 0
)
