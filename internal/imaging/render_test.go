package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func uniform(c color.NRGBA, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, c)
		}
	}

	return img
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}

	return img
}

func mustParse(t *testing.T, s string) Filter {
	f, err := Parse(s)
	require.NoError(t, err)
	return f
}

func TestApply_Pixels(t *testing.T) {
	tt := []struct {
		name   string
		filter string
		in     color.NRGBA
		want   color.NRGBA
	}{
		{
			name:   "normal",
			filter: "",
			in:     color.NRGBA{R: 10, G: 20, B: 30, A: 255},
			want:   color.NRGBA{R: 10, G: 20, B: 30, A: 255},
		},
		{
			name:   "invert",
			filter: "invert(100%)",
			in:     color.NRGBA{R: 10, G: 20, B: 30, A: 255},
			want:   color.NRGBA{R: 245, G: 235, B: 225, A: 255},
		},
		{
			name:   "grayscale",
			filter: "grayscale(100%)",
			in:     color.NRGBA{R: 255, A: 255},
			want:   color.NRGBA{R: 54, G: 54, B: 54, A: 255},
		},
		{
			name:   "sepia",
			filter: "sepia(100%)",
			in:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
			want:   color.NRGBA{R: 255, G: 255, B: 239, A: 255},
		},
		{
			name:   "brightness",
			filter: "brightness(50%)",
			in:     color.NRGBA{R: 200, G: 100, B: 50, A: 255},
			want:   color.NRGBA{R: 100, G: 50, B: 25, A: 255},
		},
		{
			name:   "brightness_clamps",
			filter: "brightness(200%)",
			in:     color.NRGBA{R: 200, G: 100, B: 0, A: 255},
			want:   color.NRGBA{R: 255, G: 200, B: 0, A: 255},
		},
		{
			name:   "contrast_zero",
			filter: "contrast(0%)",
			in:     color.NRGBA{R: 0, G: 77, B: 255, A: 255},
			want:   color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		},
		{
			name:   "alpha_preserved",
			filter: "invert(100%)",
			in:     color.NRGBA{R: 0, G: 0, B: 0, A: 100},
			want:   color.NRGBA{R: 255, G: 255, B: 255, A: 100},
		},
		{
			name:   "order_matters",
			filter: "brightness(0%) invert(100%)",
			in:     color.NRGBA{R: 10, G: 20, B: 30, A: 255},
			want:   color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		},
	}

	for i := range tt {
		tc := tt[i]

		t.Run(tc.name, func(t *testing.T) {
			out := Apply(uniform(tc.in, 2, 2), mustParse(t, tc.filter))
			require.Equal(t, tc.want, out.NRGBAAt(1, 1))
		})
	}
}

func TestApply_BlurKeepsUniformImage(t *testing.T) {
	c := color.NRGBA{R: 90, G: 120, B: 200, A: 255}
	out := Apply(uniform(c, 16, 16), mustParse(t, "blur(5px)"))

	got := out.NRGBAAt(8, 8)
	require.InDelta(t, c.R, got.R, 1)
	require.InDelta(t, c.G, got.G, 1)
	require.InDelta(t, c.B, got.B, 1)
}

func TestApply_BlurChangesGradient(t *testing.T) {
	in := gradient(32, 32)
	out := Apply(in, mustParse(t, "blur(5px)"))

	require.Equal(t, in.Bounds(), out.Bounds())
	require.NotEqual(t, in.Pix, out.Pix)
}

func TestApply_DoesNotModifySource(t *testing.T) {
	in := gradient(8, 8)
	before := append([]byte(nil), in.Pix...)

	Apply(in, mustParse(t, "invert(100%) blur(2px)"))

	require.Equal(t, before, in.Pix)
}

func encodePNG(t *testing.T, img image.Image) []byte {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestRender(t *testing.T) {
	src := encodePNG(t, gradient(40, 30))

	normal, err := Render(bytes.NewReader(src), Filter{})
	require.NoError(t, err)

	sepia1, err := Render(bytes.NewReader(src), mustParse(t, "sepia(100%) brightness(120%) contrast(80%)"))
	require.NoError(t, err)

	sepia2, err := Render(bytes.NewReader(src), mustParse(t, "sepia(100%) brightness(120%) contrast(80%)"))
	require.NoError(t, err)

	require.Equal(t, sepia1, sepia2)
	require.NotEqual(t, normal, sepia1)

	img, err := jpeg.Decode(bytes.NewReader(sepia1))
	require.NoError(t, err)
	require.Equal(t, 40, img.Bounds().Dx())
	require.Equal(t, 30, img.Bounds().Dy())
}

func TestRender_Unsupported(t *testing.T) {
	_, err := Render(bytes.NewReader([]byte("definitely not an image")), Filter{})
	require.True(t, errors.Is(err, ErrUnsupportedImage))
}
