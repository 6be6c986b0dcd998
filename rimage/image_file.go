package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	_ "github.com/xfmoulet/qoi" // register qoi
)

// ReadImageFromFile decodes the image at path, applying any EXIF orientation, and returns it as a
// premultiplied RGBA raster anchored at the origin.
func ReadImageFromFile(path string) (*image.RGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	return ToRGBA(img), nil
}

// WriteImageToFile encodes img to path. The format is picked from the file extension.
func WriteImageToFile(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "cannot write image %q", path)
	}
	return nil
}

// LimitSize downscales img so that neither side exceeds maxSize, preserving the aspect ratio.
// Images that already fit, and a non-positive maxSize, leave img untouched.
func LimitSize(img *image.RGBA, maxSize int) *image.RGBA {
	if maxSize <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxSize && b.Dy() <= maxSize {
		return img
	}
	return ToRGBA(resize.Thumbnail(uint(maxSize), uint(maxSize), img, resize.Lanczos3))
}
