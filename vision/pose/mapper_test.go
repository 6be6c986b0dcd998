package pose

import (
	"image"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/tryon/rimage/transform"
)

func assertMaps(t *testing.T, m CoordinateMapper, from, to r2.Point) {
	t.Helper()
	got := m.Map(from)
	test.That(t, got.X, test.ShouldAlmostEqual, to.X, 1e-9)
	test.That(t, got.Y, test.ShouldAlmostEqual, to.Y, 1e-9)
}

func TestViewMapperRotation(t *testing.T) {
	buffer := image.Point{X: 640, Y: 480}

	m, err := NewViewMapper(buffer, 0, buffer, false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Transform.AlmostEqual(transform.Identity(), 1e-12), test.ShouldBeTrue)

	portrait := image.Point{X: 480, Y: 640}
	m, err = NewViewMapper(buffer, 90, portrait, false)
	test.That(t, err, test.ShouldBeNil)
	assertMaps(t, m, r2.Point{X: 0, Y: 0}, r2.Point{X: 480, Y: 0})
	assertMaps(t, m, r2.Point{X: 640, Y: 480}, r2.Point{X: 0, Y: 640})

	m, err = NewViewMapper(buffer, 180, buffer, false)
	test.That(t, err, test.ShouldBeNil)
	assertMaps(t, m, r2.Point{X: 40, Y: 30}, r2.Point{X: 600, Y: 450})

	m, err = NewViewMapper(buffer, -90, portrait, false)
	test.That(t, err, test.ShouldBeNil)
	assertMaps(t, m, r2.Point{X: 0, Y: 0}, r2.Point{X: 0, Y: 640})
	assertMaps(t, m, r2.Point{X: 640, Y: 0}, r2.Point{X: 0, Y: 0})
}

func TestViewMapperFillAndMirror(t *testing.T) {
	square := image.Point{X: 100, Y: 100}

	// filling a wide display crops the top and bottom
	m, err := NewViewMapper(square, 0, image.Point{X: 200, Y: 100}, false)
	test.That(t, err, test.ShouldBeNil)
	assertMaps(t, m, r2.Point{X: 50, Y: 50}, r2.Point{X: 100, Y: 50})
	assertMaps(t, m, r2.Point{X: 0, Y: 0}, r2.Point{X: 0, Y: -50})

	m, err = NewViewMapper(square, 0, square, true)
	test.That(t, err, test.ShouldBeNil)
	assertMaps(t, m, r2.Point{X: 10, Y: 20}, r2.Point{X: 90, Y: 20})
}

func TestViewMapperErrors(t *testing.T) {
	_, err := NewViewMapper(image.Point{X: 10, Y: 10}, 45, image.Point{X: 10, Y: 10}, false)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewViewMapper(image.Point{}, 0, image.Point{X: 10, Y: 10}, false)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewViewMapper(image.Point{X: 10, Y: 10}, 0, image.Point{X: 10}, false)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMapLandmarks(t *testing.T) {
	in := []Landmark{
		{Type: Nose, Position: r2.Point{X: 1, Y: 2}, Confidence: 0.4},
		{Type: LeftHip, Position: r2.Point{X: 3, Y: 4}, Confidence: 0.9},
	}
	shift := CoordinateMapperFunc(func(pt r2.Point) r2.Point {
		return r2.Point{X: pt.X + 10, Y: pt.Y * 2}
	})

	out := MapLandmarks(in, shift)
	test.That(t, out, test.ShouldResemble, []Landmark{
		{Type: Nose, Position: r2.Point{X: 11, Y: 4}, Confidence: 0.4},
		{Type: LeftHip, Position: r2.Point{X: 13, Y: 8}, Confidence: 0.9},
	})
	// the input is left untouched
	test.That(t, in[0].Position, test.ShouldResemble, r2.Point{X: 1, Y: 2})
}
