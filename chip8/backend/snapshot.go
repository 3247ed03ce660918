package backend

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/valerio/go-chip8/chip8/video"
)

// FrameImage converts a framebuffer to an RGBA image using the display
// palette.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))

	for y := 0; y < video.FramebufferHeight; y++ {
		for x := 0; x < video.FramebufferWidth; x++ {
			r, g, b, a := frame.ColorAt(uint(x), uint(y)).RGBA()
			idx := img.PixOffset(x, y)
			img.Pix[idx] = r
			img.Pix[idx+1] = g
			img.Pix[idx+2] = b
			img.Pix[idx+3] = a
		}
	}

	return img
}

// SaveFramePNG writes frame to <directory>/<baseName>.png and returns the
// path. An empty directory means the current one.
func SaveFramePNG(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	if directory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		directory = cwd
	}

	filePath := filepath.Join(directory, baseName+".png")
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, FrameImage(frame)); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", video.FramebufferWidth, video.FramebufferHeight), "format", "PNG")
	return filePath, nil
}

// TakeSnapshot handles the snapshot key for interactive backends, saving a
// timestamped PNG in the current directory.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}

	baseName := fmt.Sprintf("chip8_snapshot_%s", time.Now().Format("20060102_150405"))
	if _, err := SaveFramePNG(frame, baseName, ""); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}
