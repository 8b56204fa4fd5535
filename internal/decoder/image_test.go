package decoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeOnePixelPNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})

	img, err := NewImageDecoder().Decode(encodePNG(t, src))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
}

func TestDecodeJPEGIsRebasedToOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, nil))

	img, err := NewImageDecoder().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := NewImageDecoder().Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDecodeRejectsHugeImages(t *testing.T) {
	d := &ImageDecoder{MaxPixels: 10}
	_, err := d.Decode(encodePNG(t, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	assert.ErrorContains(t, err, "exceeds")
}
