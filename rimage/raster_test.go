package rimage

import (
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestEnsureRaster(t *testing.T) {
	_, err := NewRaster(image.Point{X: 0, Y: 10})
	test.That(t, err, test.ShouldNotBeNil)

	r, err := EnsureRaster(nil, image.Point{X: 8, Y: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Bounds(), test.ShouldResemble, image.Rect(0, 0, 8, 4))

	same, err := EnsureRaster(r, image.Point{X: 8, Y: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldEqual, r)

	bigger, err := EnsureRaster(r, image.Point{X: 16, Y: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bigger, test.ShouldNotEqual, r)
	test.That(t, bigger.Bounds().Dx(), test.ShouldEqual, 16)

	_, err = EnsureRaster(r, image.Point{X: -1, Y: 4})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNewRasterRejectsHugeSizes(t *testing.T) {
	for _, size := range []image.Point{
		{X: 1 << 31, Y: 1 << 31},
		{X: MaxRasterPixels, Y: 2},
		{X: 1, Y: MaxRasterPixels + 1},
	} {
		_, err := NewRaster(size)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "exceeds")
	}

	r, err := NewRaster(image.Point{X: 1 << 10, Y: 1 << 10})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Bounds().Dx(), test.ShouldEqual, 1<<10)
}

func TestClearAndToRGBA(t *testing.T) {
	r := filledRaster(3, 3, color.RGBA{R: 9, A: 255})
	Clear(r)
	test.That(t, countOpaque(r), test.ShouldEqual, 0)

	test.That(t, ToRGBA(r), test.ShouldEqual, r)

	nrgba := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	nrgba.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 128})
	out := ToRGBA(nrgba)
	test.That(t, out.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	// converted to premultiplied
	test.That(t, out.RGBAAt(0, 0), test.ShouldResemble, color.RGBA{R: 128, A: 128})
}
