package export

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
	"github.com/flywave/go-muexport/volume"
)

// ErrUnsupportedRoot is returned when the exported object cannot be the
// root of a model (colliders and unknown data kinds).
var ErrUnsupportedRoot = errors.New("object cannot be exported as a model root")

type Options struct {
	// DefaultModelType applies when neither the object nor the scene
	// sets one.
	DefaultModelType scene.ModelType
	CastShadows      bool
	ReceiveShadows   bool
	// FPS overrides the scene frame rate when positive.
	FPS float64

	Meshes    MeshMaker
	Colliders ColliderMaker
	Logger    *zap.Logger
}

func DefaultOptions() *Options {
	return &Options{
		DefaultModelType: scene.ModelPart,
		CastShadows:      true,
		ReceiveShadows:   true,
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o != nil {
		*out = *o
	}
	if out.Meshes == nil {
		out.Meshes = DefaultMeshMaker{}
	}
	if out.Logger == nil {
		out.Logger = logger.Log
	}
	if out.Colliders == nil {
		out.Colliders = DefaultColliderMaker{Meshes: out.Meshes, Logger: out.Logger}
	}
	return out
}

// Build compiles obj into a model: the object tree, resource tables,
// attach nodes, captured children and the bound animation.
func Build(sc *scene.Scene, obj *scene.Object, opts *Options) (*Model, error) {
	if obj == nil {
		return nil, errors.New("no object to export")
	}
	opts = opts.withDefaults()
	role := Classify(obj)
	if role == RoleSkip || role == RoleColliderOwner {
		return nil, errors.Wrapf(ErrUnsupportedRoot, "%q is %s", obj.Name, role)
	}

	var sceneType scene.ModelType
	timing := Timing{FPS: 24, FrameStart: 1}
	if sc != nil {
		sceneType = sc.Props.ModelType
		timing = Timing{FPS: sc.FPS, FrameStart: sc.FrameStart}
	}
	if opts.FPS > 0 {
		timing.FPS = opts.FPS
	}
	// Children are captured by the object's own type only. The scene and
	// configured defaults pick the config section.
	typ := resolveModelType(obj, sceneType, opts.DefaultModelType)

	m := newModel(StripNNN(obj.Name), typ, obj.MatrixWorld().Inv())
	m.Timing = timing
	m.log = opts.Logger.With(zap.String("model", m.Name))

	animations := CollectAnimations(obj)

	b := &builder{
		model:     m,
		opts:      opts,
		capture:   capturerFor(obj.Props.ModelType),
		meshes:    opts.Meshes,
		colliders: opts.Colliders,
		log:       m.log,
	}
	root, err := b.build(obj, "")
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build model %q", m.Name)
	}
	if root == nil {
		return nil, errors.Wrapf(ErrUnsupportedRoot, "%q produced no node", obj.Name)
	}
	m.Root = root
	bindAnimation(m, animations)
	return m, nil
}

// Result lists what ExportObject wrote.
type Result struct {
	Model      *Model
	MuPath     string
	ConfigPath string
}

// ExportObject builds obj, writes "<base>.mu", measures the model and
// writes "<base>.cfg" when a template exists.
func ExportObject(sc *scene.Scene, obj *scene.Object, path string, opts *Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger.With(zap.String("run", uuid.NewString()))
	opts.Logger = log

	m, err := Build(sc, obj, opts)
	if err != nil {
		return nil, err
	}
	res := &Result{Model: m, MuPath: basePath(path) + ".mu"}
	if err := m.Mu().WriteFile(res.MuPath); err != nil {
		return nil, err
	}
	m.SkinVolume, m.ExtVolume = volume.ModelVolume(obj)
	log.Info("model written",
		zap.String("path", res.MuPath),
		zap.String("type", string(m.Type)),
		zap.Int("materials", len(m.Materials)),
		zap.Int("textures", len(m.Textures)),
		zap.Float64("skin_volume", m.SkinVolume),
		zap.Float64("ext_volume", m.ExtVolume))

	var src TemplateSource
	if sc != nil {
		src = sc
	}
	res.ConfigPath, err = GenerateConfig(m, src, path)
	if err != nil {
		return res, err
	}
	if res.ConfigPath != "" {
		log.Info("config written", zap.String("path", res.ConfigPath))
	}
	return res, nil
}
