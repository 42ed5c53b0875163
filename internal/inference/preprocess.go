package inference

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrInvalidImage marks uploads rejected before classification: undecodable
// data or images below the minimum dimensions. Callers use it to tell bad
// input apart from model failures.
var ErrInvalidImage = errors.New("invalid image")

const (
	// dimensions the network was trained on (width x height)
	DefaultImageWidth  = 500
	DefaultImageHeight = 720

	// uploads smaller than this carry no usable detail
	minDimension = 50
)

// DecodeImage decodes an uploaded radiograph. Supported formats are JPEG,
// PNG, BMP and TIFF (registered via the blank imports above).
func DecodeImage(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: decode: %v", ErrInvalidImage, err)
	}
	return img, format, nil
}

// ValidateImage rejects images too small to be a usable radiograph.
func ValidateImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() < minDimension || b.Dy() < minDimension {
		return fmt.Errorf("%w: %dx%d is below the minimum %dx%d", ErrInvalidImage, b.Dx(), b.Dy(), minDimension, minDimension)
	}
	return nil
}

// Preprocess resizes the image to width x height with Lanczos resampling and
// returns a float32 tensor in NHWC layout normalized to [0,1]. Grayscale
// sources come out as three identical channels since At() reports RGBA.
func Preprocess(img image.Image, width, height int) []float32 {
	resized := resize.Resize(uint(width), uint(height), img, resize.Lanczos3)

	data := make([]float32, height*width*3)
	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			data[i] = float32(r) / 65535.0
			data[i+1] = float32(g) / 65535.0
			data[i+2] = float32(b) / 65535.0
			i += 3
		}
	}
	return data
}
