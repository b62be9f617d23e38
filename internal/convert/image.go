package convert

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/entityxtract/entityxtract/internal/common"
)

// PageImage is one rendered page, re-encoded and ready to attach to a model
// message.
type PageImage struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// NormalizeImage decodes an image payload, downsizes it so neither dimension
// exceeds maxDim (aspect ratio preserved), and re-encodes it as JPEG.
// maxDim <= 0 disables resizing.
func NormalizeImage(data []byte, maxDim int) (PageImage, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return PageImage{}, common.WrapError(common.ErrUnsupportedFormat, fmt.Sprintf("decode image: %v", err))
	}
	return encodePage(img, maxDim)
}

func encodePage(img image.Image, maxDim int) (PageImage, error) {
	bounds := img.Bounds()
	if maxDim > 0 && (bounds.Dx() > maxDim || bounds.Dy() > maxDim) {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return PageImage{}, fmt.Errorf("encode image: %w", err)
	}
	return PageImage{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
