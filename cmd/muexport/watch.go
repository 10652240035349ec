package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/flywave/go-muexport/internal/logger"
)

// settle coalesces the burst of events editors produce on save.
const settle = 200 * time.Millisecond

// watch re-runs job whenever the scene file is written or replaced. The
// directory is watched so atomic renames are seen.
func watch(ctx context.Context, job *exportJob) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target, err := filepath.Abs(job.scenePath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watching", zap.String("scene", target))

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isSceneChange(e, target) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settle, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if err := job.run(); err != nil {
				logger.Error("export failed", zap.String("scene", job.scenePath), zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}

func isSceneChange(e fsnotify.Event, target string) bool {
	name, err := filepath.Abs(e.Name)
	if err != nil || name != target {
		return false
	}
	return e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
