package transform

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestComposeOrder(t *testing.T) {
	adj := Adjustments{PreviewWidth: 100, PreviewHeight: 100, Scale: 0.5, OffsetX: 10, OffsetY: -4}
	test.That(t, adj.Validate(), test.ShouldBeNil)

	m := Compose(Identity(), adj.RecenterToOrigin(), adj.ScaleFactor(), adj.RecenterBack(), adj.UserOffset())

	// (0,0) -> (-50,-50) -> (-25,-25) -> (25,25) -> identity -> (35,21)
	out := m.Apply(r2.Point{X: 0, Y: 0})
	test.That(t, out.X, test.ShouldAlmostEqual, 35.0)
	test.That(t, out.Y, test.ShouldAlmostEqual, 21.0)

	// the preview center is the fixed point of the scale
	out = m.Apply(r2.Point{X: 50, Y: 50})
	test.That(t, out.X, test.ShouldAlmostEqual, 60.0)
	test.That(t, out.Y, test.ShouldAlmostEqual, 46.0)
}

func TestComposeOrderSensitivity(t *testing.T) {
	persp, err := SolvePerspective(RectQuad(100, 100),
		Quad{{X: 20, Y: 30}, {X: 130, Y: 25}, {X: 120, Y: 160}, {X: 15, Y: 150}})
	test.That(t, err, test.ShouldBeNil)

	adj := Adjustments{PreviewWidth: 320, PreviewHeight: 240, Scale: 0.5, OffsetX: 15, OffsetY: 7}
	pinned := Compose(persp, adj.RecenterToOrigin(), adj.ScaleFactor(), adj.RecenterBack(), adj.UserOffset())
	swapped := Compose(persp, adj.RecenterToOrigin(), adj.UserOffset(), adj.RecenterBack(), adj.ScaleFactor())
	test.That(t, pinned.AlmostEqual(swapped, 1e-6), test.ShouldBeFalse)

	explicit := adj.UserOffset().Mul(persp).Mul(adj.RecenterBack()).Mul(adj.ScaleFactor()).Mul(adj.RecenterToOrigin())
	test.That(t, pinned.AlmostEqual(explicit, 1e-12), test.ShouldBeTrue)

	// scale 1 and zero offset leave the perspective untouched
	neutral := Adjustments{PreviewWidth: 320, PreviewHeight: 240, Scale: 1}
	test.That(t, NewArena().ComposeAdjusted(persp, neutral).AlmostEqual(persp, 1e-9), test.ShouldBeTrue)
}

func TestArenaComposeMatchesCompose(t *testing.T) {
	arena := NewArena()
	persp := Homography{{1.1, 0.05, 12}, {-0.03, 0.95, 40}, {0.0002, 0.0001, 1}}
	for _, adj := range []Adjustments{
		{PreviewWidth: 1080, PreviewHeight: 1920, Scale: 0.5},
		{PreviewWidth: 640, PreviewHeight: 480, Scale: 2, OffsetX: -30, OffsetY: 12},
		{PreviewWidth: 10, PreviewHeight: 10, Scale: 0.01, OffsetX: 3},
	} {
		want := Compose(persp, adj.RecenterToOrigin(), adj.ScaleFactor(), adj.RecenterBack(), adj.UserOffset())
		got := arena.ComposeAdjusted(persp, adj)
		test.That(t, got.AlmostEqual(want, 1e-9), test.ShouldBeTrue)
	}
}

func TestAdjustmentsValidate(t *testing.T) {
	valid := Adjustments{PreviewWidth: 1, PreviewHeight: 1, Scale: DefaultScale}
	test.That(t, valid.Validate(), test.ShouldBeNil)
	valid.Scale = MaxScale
	test.That(t, valid.Validate(), test.ShouldBeNil)

	for _, adj := range []Adjustments{
		{PreviewWidth: 1, PreviewHeight: 1, Scale: 0},
		{PreviewWidth: 1, PreviewHeight: 1, Scale: -1},
		{PreviewWidth: 1, PreviewHeight: 1, Scale: 2.01},
		{PreviewWidth: 0, PreviewHeight: 1, Scale: 1},
		{PreviewWidth: 1, PreviewHeight: -1, Scale: 1},
	} {
		test.That(t, adj.Validate(), test.ShouldNotBeNil)
	}
}
