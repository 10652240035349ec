package asset3d

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "github.com/chai2010/tiff"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"

	"github.com/flywave/go-muexport/internal/logger"
	"github.com/flywave/go-muexport/scene"
)

// decodeImageInfo reads only the image header from rd.
func decodeImageInfo(rd io.Reader, path string) (*scene.ImageInfo, error) {
	cfg, ft, err := image.DecodeConfig(rd)
	if err != nil {
		return nil, err
	}
	return &scene.ImageInfo{Path: path, Format: ft, Width: cfg.Width, Height: cfg.Height}, nil
}

func readImageInfo(path string) (*scene.ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeImageInfo(f, path)
}

// probeImage records what can be learned about a texture file. An
// unreadable file still yields its path.
func probeImage(path string) *scene.ImageInfo {
	info, err := readImageInfo(path)
	if err != nil {
		logger.Debug("texture not probed", zap.String("path", path), zap.Error(err))
		return &scene.ImageInfo{Path: path}
	}
	return info
}
