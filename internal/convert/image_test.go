package convert

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityxtract/entityxtract/internal/common"
)

func buildPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeImagePassthrough(t *testing.T) {
	page, err := NormalizeImage(buildPNG(t, 100, 60), 2048)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", page.MIME)
	assert.Equal(t, 100, page.Width)
	assert.Equal(t, 60, page.Height)
	assert.NotEmpty(t, page.Data)
}

func TestNormalizeImageDownsizes(t *testing.T) {
	page, err := NormalizeImage(buildPNG(t, 400, 200), 100)
	require.NoError(t, err)

	// Longest side is capped, aspect ratio kept.
	assert.Equal(t, 100, page.Width)
	assert.Equal(t, 50, page.Height)
}

func TestNormalizeImageNoLimit(t *testing.T) {
	page, err := NormalizeImage(buildPNG(t, 300, 300), 0)
	require.NoError(t, err)
	assert.Equal(t, 300, page.Width)
	assert.Equal(t, 300, page.Height)
}

func TestNormalizeImageRejectsGarbage(t *testing.T) {
	_, err := NormalizeImage([]byte("not an image"), 2048)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
