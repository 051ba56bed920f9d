// Package capture writes presented frames out as PNG screenshots or as a
// video stream piped into ffmpeg.
package capture

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"
)

func ScreenshotName(frame uint64) string {
	return fmt.Sprintf("shot-%06d.png", frame)
}

// SaveScreenshot writes img to dir/shot-NNNNNN.png and returns the path.
func SaveScreenshot(dir string, frame uint64, img image.Image) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join(dir, ScreenshotName(frame))

	dc := gg.NewContextForImage(img)
	defer dc.Close()
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("screenshot %s: %w", path, err)
	}
	return path, nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	dc := gg.NewContextForImage(img)
	defer dc.Close()
	return dc.EncodePNG(w)
}
