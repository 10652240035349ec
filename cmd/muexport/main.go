package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	asset3d "github.com/flywave/go-muexport"
	"github.com/flywave/go-muexport/export"
	"github.com/flywave/go-muexport/internal/config"
	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
)

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: muexport [flags] <scene file>")
		os.Exit(2)
	}

	job := &exportJob{
		scenePath:  args[0],
		objectName: config.ObjectName(),
		outputPath: config.OutputPath(),
		cfg:        cfg,
		dump:       config.Dump(),
	}
	if err := job.run(); err != nil {
		logger.Error("export failed", zap.String("scene", job.scenePath), zap.Error(err))
		if !config.Watch() {
			logger.Sync()
			os.Exit(1)
		}
	}
	if !config.Watch() {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := watch(ctx, job); err != nil {
		logger.Error("watch stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

type exportJob struct {
	scenePath  string
	objectName string
	outputPath string
	cfg        *config.Config
	dump       bool
}

func (j *exportJob) options() *export.Options {
	return &export.Options{
		DefaultModelType: scene.ModelType(strings.ToUpper(j.cfg.Export.DefaultModelType)),
		CastShadows:      j.cfg.Export.CastShadows,
		ReceiveShadows:   j.cfg.Export.ReceiveShadows,
		FPS:              j.cfg.Export.FPS,
		Logger:           logger.Log,
	}
}

// muPath picks the output file: -o, then output_dir, then next to the scene.
func (j *exportJob) muPath(obj *scene.Object) string {
	if j.outputPath != "" {
		return j.outputPath
	}
	name := export.StripNNN(obj.Name) + ".mu"
	if j.cfg.Export.OutputDir != "" {
		return filepath.Join(j.cfg.Export.OutputDir, name)
	}
	return filepath.Join(filepath.Dir(j.scenePath), name)
}

func (j *exportJob) selectObject(sc *scene.Scene) (*scene.Object, error) {
	if j.objectName != "" {
		obj := sc.Object(j.objectName)
		if obj == nil {
			return nil, errors.Errorf("scene has no object %q", j.objectName)
		}
		return obj, nil
	}
	if obj := sc.ActiveObject(); obj != nil {
		return obj, nil
	}
	return nil, errors.New("scene has no active object, use -object")
}

func (j *exportJob) run() error {
	sc, err := asset3d.Load(j.scenePath)
	if err != nil {
		return errors.Wrapf(err, "Failed to import %s", j.scenePath)
	}
	obj, err := j.selectObject(sc)
	if err != nil {
		return err
	}
	out := j.muPath(obj)
	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "Failed to create %s", dir)
		}
	}
	res, err := export.ExportObject(sc, obj, out, j.options())
	if err != nil {
		return err
	}
	logger.Info("exported",
		zap.String("object", obj.Name),
		zap.String("mu", res.MuPath),
		zap.String("cfg", res.ConfigPath))
	if j.dump {
		dumpModel(res.Model)
	}
	return nil
}

var spewConfig = &spew.ConfigState{Indent: " ", DisableCapacities: true, DisablePointerAddresses: true, MaxDepth: 6}

func dumpModel(m *export.Model) {
	fmt.Println(spewConfig.Sdump(m.Root))
}
