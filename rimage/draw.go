package rimage

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/golang/geo/r2"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/gofont/goregular"

	"go.viam.com/tryon/rimage/transform"
)

var font *truetype.Font

// init sets up the fonts we want to use.
func init() {
	var err error
	font, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

// Font returns the font we use for drawing.
func Font() *truetype.Font {
	return font
}

// Marker is a labeled point drawn on top of an overlay for debugging.
type Marker struct {
	Position r2.Point
	Label    string
}

// MarkerColor returns the i-th of n evenly spaced hues.
func MarkerColor(i, n int) color.Color {
	if n <= 0 {
		n = 1
	}
	return colorful.Hsv(float64(i)*360/float64(n), 0.85, 0.95).Clamped()
}

// DrawString writes a string to the given context at a particular point.
func DrawString(dc *gg.Context, text string, p image.Point, c color.Color, size float64) {
	dc.SetFontFace(truetype.NewFace(Font(), &truetype.Options{Size: size}))
	dc.SetColor(c)
	dc.DrawStringWrapped(text, float64(p.X), float64(p.Y), 0, 0, float64(dc.Width()), 1, 0)
}

// DrawMarkers draws a filled circle of the given radius for every marker, with its label beside
// it, directly into dst.
func DrawMarkers(dst *image.RGBA, markers []Marker, radius float64) {
	dc := gg.NewContextForRGBA(dst)
	for i, m := range markers {
		c := MarkerColor(i, len(markers))
		dc.SetColor(c)
		dc.DrawCircle(m.Position.X, m.Position.Y, radius)
		dc.Fill()
		if m.Label != "" {
			at := image.Point{X: int(m.Position.X + 2*radius), Y: int(m.Position.Y - radius)}
			DrawString(dc, m.Label, at, c, 2*radius+6)
		}
	}
}

// DrawQuad outlines q into dst.
func DrawQuad(dst *image.RGBA, q transform.Quad, c color.Color, width float64) {
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(c)
	dc.SetLineWidth(width)
	for i := range q {
		next := q[(i+1)%len(q)]
		dc.DrawLine(q[i].X, q[i].Y, next.X, next.Y)
	}
	dc.Stroke()
}
