package embedding

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/kozaktomas/face-gate/internal/constants"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned when the input cannot be decoded as an image
var ErrInvalidImage = errors.New("invalid image data")

// Preprocess decodes an image in any supported format, downscales it so that
// neither side exceeds maxSize and re-encodes it as JPEG. The result is what
// gets sent to the extractor and stored as the identity photo.
func Preprocess(data []byte, maxSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, ErrInvalidImage
	}

	if maxSize <= 0 {
		maxSize = constants.MaxImageSize
	}
	img = downscale(img, maxSize)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale fits img into a maxSize square keeping the aspect ratio.
// Images already small enough are returned as is.
func downscale(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var newWidth, newHeight int
	if width > height {
		if width <= maxSize {
			return img
		}
		newWidth = maxSize
		newHeight = max(1, height*maxSize/width)
	} else {
		if height <= maxSize {
			return img
		}
		newHeight = maxSize
		newWidth = max(1, width*maxSize/height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
