package rimage

import (
	"image"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// MaxRasterPixels bounds the area of a raster NewRaster will allocate.
const MaxRasterPixels = 1 << 26

// NewRaster allocates a transparent RGBA raster anchored at the origin. Sizes that are not
// positive or exceed MaxRasterPixels are rejected.
func NewRaster(size image.Point) (*image.RGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("raster dimensions must be positive, got %dx%d", size.X, size.Y)
	}
	if size.X > MaxRasterPixels/size.Y {
		return nil, errors.Errorf("raster of %dx%d exceeds %d pixels", size.X, size.Y, MaxRasterPixels)
	}
	return image.NewRGBA(image.Rectangle{Max: size}), nil
}

// EnsureRaster returns r when it already has the given size, and otherwise a newly allocated
// raster. Rasters are never resized in place.
func EnsureRaster(r *image.RGBA, size image.Point) (*image.RGBA, error) {
	if r != nil && r.Rect.Min == (image.Point{}) && r.Rect.Size() == size {
		return r, nil
	}
	return NewRaster(size)
}

// Clear sets every pixel of dst to transparent.
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

// ToRGBA returns img as a premultiplied RGBA raster anchored at the origin. An *image.RGBA already
// anchored at the origin is returned as is.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
