package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"time"
)

func touch(path string) error {
	return os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644)
}

// createTestPNG creates a simple test PNG image
func createTestPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastPolicy(attempts uint) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Delay: time.Millisecond}
}
