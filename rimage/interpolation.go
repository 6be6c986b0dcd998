package rimage

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/tryon/utils"
)

// Kernel selects how a source raster is sampled at fractional coordinates.
type Kernel int

// The available kernels. The zero value is Bilinear.
const (
	Bilinear Kernel = iota
	Nearest
	Bicubic
)

// bicubicA is the free parameter of the cubic convolution kernel.
const bicubicA = -0.75

func (k Kernel) String() string {
	switch k {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	case Bicubic:
		return "bicubic"
	default:
		return "unknown"
	}
}

// ParseKernel returns the kernel with the given name. An empty name selects Bilinear.
func ParseKernel(name string) (Kernel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bilinear", "linear":
		return Bilinear, nil
	case "nearest":
		return Nearest, nil
	case "bicubic", "cubic":
		return Bicubic, nil
	default:
		return Bilinear, errors.Errorf("unknown interpolation %q", name)
	}
}

// sample returns the premultiplied color of src at (x, y), where integer coordinates are pixel
// indices. Neighbors that fall outside src are clamped to its edge.
func (k Kernel) sample(src *image.RGBA, x, y float64) color.RGBA {
	switch k {
	case Nearest:
		return pixelAt(src, int(math.Floor(x+0.5)), int(math.Floor(y+0.5)))
	case Bicubic:
		return sampleBicubic(src, x, y)
	default:
		return sampleBilinear(src, x, y)
	}
}

func pixelAt(src *image.RGBA, x, y int) color.RGBA {
	b := src.Rect
	x = utils.ClampInt(x, b.Min.X, b.Max.X-1)
	y = utils.ClampInt(y, b.Min.Y, b.Max.Y-1)
	i := src.PixOffset(x, y)
	s := src.Pix[i : i+4 : i+4]
	return color.RGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
}

func sampleBilinear(src *image.RGBA, x, y float64) color.RGBA {
	x0f, y0f := math.Floor(x), math.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)

	c00 := pixelAt(src, x0, y0)
	c10 := pixelAt(src, x0+1, y0)
	c01 := pixelAt(src, x0, y0+1)
	c11 := pixelAt(src, x0+1, y0+1)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	mix := func(a, b, c, d uint8) float64 {
		return float64(a)*w00 + float64(b)*w10 + float64(c)*w01 + float64(d)*w11
	}
	return premultipliedFromFloats(
		mix(c00.R, c10.R, c01.R, c11.R),
		mix(c00.G, c10.G, c01.G, c11.G),
		mix(c00.B, c10.B, c01.B, c11.B),
		mix(c00.A, c10.A, c01.A, c11.A),
	)
}

func cubicWeight(t float64) float64 {
	t = math.Abs(t)
	switch {
	case t <= 1:
		return ((bicubicA+2)*t-(bicubicA+3))*t*t + 1
	case t < 2:
		return ((bicubicA*t-5*bicubicA)*t+8*bicubicA)*t - 4*bicubicA
	default:
		return 0
	}
}

func sampleBicubic(src *image.RGBA, x, y float64) color.RGBA {
	x0f, y0f := math.Floor(x), math.Floor(y)
	fx, fy := x-x0f, y-y0f
	x0, y0 := int(x0f), int(y0f)

	var wx, wy [4]float64
	for i := 0; i < 4; i++ {
		wx[i] = cubicWeight(fx - float64(i-1))
		wy[i] = cubicWeight(fy - float64(i-1))
	}

	var r, g, b, a float64
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			w := wx[i] * wy[j]
			c := pixelAt(src, x0+i-1, y0+j-1)
			r += w * float64(c.R)
			g += w * float64(c.G)
			b += w * float64(c.B)
			a += w * float64(c.A)
		}
	}
	return premultipliedFromFloats(r, g, b, a)
}

// premultipliedFromFloats rounds and clamps channels so the result is a valid premultiplied color,
// with no color channel above alpha.
func premultipliedFromFloats(r, g, b, a float64) color.RGBA {
	alpha := uint8(utils.Clamp(math.Round(a), 0, 255))
	limit := float64(alpha)
	return color.RGBA{
		R: uint8(utils.Clamp(math.Round(r), 0, limit)),
		G: uint8(utils.Clamp(math.Round(g), 0, limit)),
		B: uint8(utils.Clamp(math.Round(b), 0, limit)),
		A: alpha,
	}
}
