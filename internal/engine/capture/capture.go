// Package capture writes rendered frames to disk as PNG screenshots.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/quietfall/stageview/internal/logger"
)

// SavePNG writes top-down RGBA pixels into dir with a timestamped file
// name and returns the written path.
func SavePNG(dir string, pixels []byte, width, height int32) (string, error) {
	if len(pixels) < int(width)*int(height)*4 {
		return "", fmt.Errorf("pixel buffer too small for %dx%d", width, height)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating screenshot dir: %w", err)
	}

	img := &image.RGBA{
		Pix:    pixels,
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}

	name := fmt.Sprintf("stageview-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding %s: %w", path, err)
	}

	logger.Info("screenshot saved",
		zap.String("path", path),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return path, nil
}
