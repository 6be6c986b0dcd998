package rimage

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmittmann/ppm"
	"github.com/xfmoulet/qoi"
	"go.viam.com/test"
)

func TestWriteAndReadPNG(t *testing.T) {
	img := filledRaster(4, 8, color.RGBA{R: 255, A: 255})
	img.SetRGBA(3, 3, color.RGBA{G: 255, A: 255})

	path := filepath.Join(t.TempDir(), "texture.png")
	test.That(t, WriteImageToFile(path, img), test.ShouldBeNil)

	read, err := ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.Bounds(), test.ShouldResemble, image.Rect(0, 0, 4, 8))
	test.That(t, read.RGBAAt(3, 3), test.ShouldResemble, color.RGBA{G: 255, A: 255})
	test.That(t, read.RGBAAt(0, 0), test.ShouldResemble, color.RGBA{R: 255, A: 255})
}

func TestReadPPM(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	path := filepath.Join(t.TempDir(), "texture.ppm")
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ppm.Encode(f, img), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)

	read, err := ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.RGBAAt(1, 1), test.ShouldResemble, color.RGBA{R: 10, G: 20, B: 30, A: 255})
}

func TestReadQOI(t *testing.T) {
	img := filledRaster(2, 2, color.RGBA{B: 200, A: 255})

	path := filepath.Join(t.TempDir(), "texture.qoi")
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, qoi.Encode(f, img), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)

	read, err := ReadImageFromFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, read.Bounds(), test.ShouldResemble, image.Rect(0, 0, 2, 2))
	test.That(t, read.RGBAAt(1, 0), test.ShouldResemble, color.RGBA{B: 200, A: 255})
}

func TestReadImageErrors(t *testing.T) {
	_, err := ReadImageFromFile(filepath.Join(t.TempDir(), "missing.png"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "missing.png")

	err = WriteImageToFile(filepath.Join(t.TempDir(), "out.unknown"), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestLimitSize(t *testing.T) {
	img := filledRaster(400, 200, color.RGBA{B: 255, A: 255})
	test.That(t, LimitSize(img, 0), test.ShouldEqual, img)
	test.That(t, LimitSize(img, 400), test.ShouldEqual, img)

	small := LimitSize(img, 100)
	test.That(t, small.Bounds(), test.ShouldResemble, image.Rect(0, 0, 100, 50))
	test.That(t, small.RGBAAt(50, 25).A, test.ShouldEqual, uint8(255))
}
