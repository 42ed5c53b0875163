package inference

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage_PNG(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))
	img, format, err := DecodeImage(encodePNG(t, src))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 64, img.Bounds().Dx())
}

func TestDecodeImage_Garbage(t *testing.T) {
	_, _, err := DecodeImage([]byte("definitely not an image"))
	require.Error(t, err)
}

func TestValidateImage_TooSmall(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 20, 20))
	require.Error(t, ValidateImage(small))

	ok := image.NewRGBA(image.Rect(0, 0, 50, 50))
	require.NoError(t, ValidateImage(ok))
}

func TestPreprocess_ShapeAndRange(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: 128, A: 255})
		}
	}

	out := Preprocess(src, DefaultImageWidth, DefaultImageHeight)
	require.Len(t, out, DefaultImageHeight*DefaultImageWidth*3)
	for _, v := range out {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
}

func TestPreprocess_GrayscaleExpandsToThreeChannels(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 80, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 80; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8((x + y) % 256)})
		}
	}

	out := Preprocess(src, 10, 10)
	require.Len(t, out, 10*10*3)
	// each pixel's three channels must be identical for a grayscale source
	for i := 0; i < len(out); i += 3 {
		require.Equal(t, out[i], out[i+1])
		require.Equal(t, out[i], out[i+2])
	}
}

func TestPreprocess_WhiteIsOne(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			src.Set(x, y, color.White)
		}
	}
	out := Preprocess(src, 8, 8)
	for _, v := range out {
		require.InDelta(t, 1.0, float64(v), 1e-3)
	}
}
