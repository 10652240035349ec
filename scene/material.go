package scene

// DefaultShader is used by importers when a material names no shader.
const DefaultShader = "KSP/Diffuse"

type VectorProperty struct {
	Name  string     `yaml:"name"`
	Value [4]float64 `yaml:"value"`
}

type FloatProperty struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
}

// TextureSlot binds a shader property to an image. Tex is the source
// identifier used for deduplication, normally the image name.
type TextureSlot struct {
	Name      string     `yaml:"name"`
	Tex       string     `yaml:"tex"`
	NormalMap bool       `yaml:"normal_map"`
	Scale     [2]float64 `yaml:"scale"`
	Offset    [2]float64 `yaml:"offset"`
	Image     *ImageInfo `yaml:"-"`
}

// ImageInfo is what importers learned about a texture file.
type ImageInfo struct {
	Path   string
	Format string
	Width  int
	Height int
}

// Material properties are grouped the way the shader expects them. A
// material without a ShaderName is not exported.
type Material struct {
	Name       string           `yaml:"name"`
	ShaderName string           `yaml:"shader"`
	Colors     []VectorProperty `yaml:"colors"`
	Vectors    []VectorProperty `yaml:"vectors"`
	Floats2    []FloatProperty  `yaml:"floats2"`
	Floats3    []FloatProperty  `yaml:"floats3"`
	Textures   []TextureSlot    `yaml:"textures"`
}

func NewTextureSlot(name, tex string) TextureSlot {
	return TextureSlot{Name: name, Tex: tex, Scale: [2]float64{1, 1}}
}
