package integrations

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// OptimizeSettings controls how pages are rewritten before conversion.
type OptimizeSettings struct {
	MaxWidth  int     // 0 means unbounded
	MaxHeight int     // 0 means unbounded
	Quality   int     // JPEG quality (1-100)
	Grayscale bool    // Convert to grayscale
	Contrast  float64 // 1.0 = no change
}

// PageOptimizer shrinks pages to fit a screen and re-encodes them as JPEG.
type PageOptimizer struct {
	settings OptimizeSettings
}

func NewPageOptimizer(settings OptimizeSettings) *PageOptimizer {
	if settings.Quality <= 0 || settings.Quality > 100 {
		settings.Quality = jpeg.DefaultQuality
	}
	if settings.Contrast <= 0 {
		settings.Contrast = 1.0
	}
	return &PageOptimizer{settings: settings}
}

// OptimizeAll writes an optimized copy of every page into dir and returns
// the new paths in the same order.
func (p *PageOptimizer) OptimizeAll(ctx context.Context, pages []string, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	out := make([]string, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(filepath.Base(page), filepath.Ext(page))
		dst := filepath.Join(dir, base+".jpg")
		if err := p.Optimize(page, dst); err != nil {
			return nil, err
		}
		out[i] = dst
	}
	return out, nil
}

// Optimize rewrites the image at src into dst.
func (p *PageOptimizer) Optimize(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidImage, src, err)
	}

	bounds := img.Bounds()
	width, height := p.calculateDimensions(bounds.Dx(), bounds.Dy())
	if width != bounds.Dx() || height != bounds.Dy() {
		img = resize(img, width, height)
	}
	if p.settings.Grayscale {
		img = toGrayscale(img)
	}
	if p.settings.Contrast != 1.0 {
		img = adjustContrast(img, p.settings.Contrast)
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: p.settings.Quality}); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", dst, err)
	}
	return out.Close()
}

// calculateDimensions fits width x height inside the configured bounds,
// keeping the aspect ratio. Pages are never upscaled.
func (p *PageOptimizer) calculateDimensions(width, height int) (int, int) {
	scale := 1.0
	if p.settings.MaxWidth > 0 && width > p.settings.MaxWidth {
		scale = float64(p.settings.MaxWidth) / float64(width)
	}
	if p.settings.MaxHeight > 0 && height > p.settings.MaxHeight {
		if s := float64(p.settings.MaxHeight) / float64(height); s < scale {
			scale = s
		}
	}
	if scale == 1.0 {
		return width, height
	}
	return max(1, int(math.Round(float64(width)*scale))), max(1, int(math.Round(float64(height)*scale)))
}

func resize(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func toGrayscale(img image.Image) image.Image {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}

func adjustContrast(img image.Image, factor float64) image.Image {
	bounds := img.Bounds()

	if gray, ok := img.(*image.Gray); ok {
		adjusted := image.NewGray(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				adjusted.SetGray(x, y, color.Gray{Y: adjustChannel(gray.GrayAt(x, y).Y, factor)})
			}
		}
		return adjusted
	}

	adjusted := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			adjusted.SetRGBA(x, y, color.RGBA{
				R: adjustChannel(uint8(r>>8), factor),
				G: adjustChannel(uint8(g>>8), factor),
				B: adjustChannel(uint8(b>>8), factor),
				A: uint8(a >> 8),
			})
		}
	}
	return adjusted
}

// adjustChannel stretches value away from middle gray.
func adjustChannel(value uint8, factor float64) uint8 {
	adjusted := (float64(value)-128)*factor + 128
	if adjusted < 0 {
		return 0
	}
	if adjusted > 255 {
		return 255
	}
	return uint8(adjusted)
}
