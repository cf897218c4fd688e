package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedImage is returned when image can not be decoded.
var ErrUnsupportedImage = errors.New("unsupported image")

// JPEGQuality is a quality of exported images.
const JPEGQuality = 90

// Apply applies filter to image. Result does not depend on anything but arguments.
func Apply(img image.Image, f Filter) *image.NRGBA {
	out := imaging.Clone(img)

	for _, fn := range f {
		if fn.Name == Blur {
			if fn.Amount > 0 {
				out = imaging.Blur(out, fn.Amount)
			}
			continue
		}

		out = imaging.AdjustFunc(out, colorFunc(fn))
	}

	return out
}

// Render decodes an image, applies the filter and exports it as JPEG.
func Render(r io.Reader, f Filter) ([]byte, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, err.Error())
	}

	var b bytes.Buffer
	if err := imaging.Encode(&b, Apply(img, f), imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return b.Bytes(), nil
}

type matrix [3][3]float64

func grayscale(a float64) matrix {
	a = 1 - math.Min(a, 1)

	return matrix{
		{0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a},
		{0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a},
		{0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a},
	}
}

func sepia(a float64) matrix {
	a = 1 - math.Min(a, 1)

	return matrix{
		{0.393 + 0.607*a, 0.769 - 0.769*a, 0.189 - 0.189*a},
		{0.349 - 0.349*a, 0.686 + 0.314*a, 0.168 - 0.168*a},
		{0.272 - 0.272*a, 0.534 - 0.534*a, 0.131 + 0.869*a},
	}
}

func colorFunc(fn Func) func(c color.NRGBA) color.NRGBA {
	var f func(r, g, b float64) (float64, float64, float64)

	switch fn.Name {
	case Grayscale, Sepia:
		m := grayscale(fn.Amount)
		if fn.Name == Sepia {
			m = sepia(fn.Amount)
		}

		f = func(r, g, b float64) (float64, float64, float64) {
			return m[0][0]*r + m[0][1]*g + m[0][2]*b,
				m[1][0]*r + m[1][1]*g + m[1][2]*b,
				m[2][0]*r + m[2][1]*g + m[2][2]*b
		}
	case Invert:
		a := math.Min(fn.Amount, 1)
		inv := func(v float64) float64 { return a*(1-v) + (1-a)*v }

		f = func(r, g, b float64) (float64, float64, float64) {
			return inv(r), inv(g), inv(b)
		}
	case Brightness:
		f = func(r, g, b float64) (float64, float64, float64) {
			return r * fn.Amount, g * fn.Amount, b * fn.Amount
		}
	case Contrast:
		c := func(v float64) float64 { return (v-0.5)*fn.Amount + 0.5 }

		f = func(r, g, b float64) (float64, float64, float64) {
			return c(r), c(g), c(b)
		}
	default:
		return func(c color.NRGBA) color.NRGBA { return c }
	}

	return func(c color.NRGBA) color.NRGBA {
		r, g, b := f(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)

		return color.NRGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: c.A}
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
