package decoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageDecoder decodes any registered still image format (PNG, JPEG, GIF,
// BMP, WebP) into *image.RGBA.
type ImageDecoder struct {
	// MaxPixels rejects images larger than this many pixels. Zero means no limit.
	MaxPixels int
}

func NewImageDecoder() *ImageDecoder {
	return &ImageDecoder{MaxPixels: 8192 * 8192}
}

func (d *ImageDecoder) Decode(data []byte) (*image.RGBA, error) {
	if d.MaxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode image header: %w", err)
		}
		if cfg.Width*cfg.Height > d.MaxPixels {
			return nil, fmt.Errorf("image %dx%d exceeds %d pixels", cfg.Width, cfg.Height, d.MaxPixels)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	// Convert to RGBA if needed.
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba, nil
}
