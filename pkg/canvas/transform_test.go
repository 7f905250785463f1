package canvas

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func within(a, b v2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestRoundTrip(t *testing.T) {
	tr := NewTransform(800, 600)

	screens := []v2.Vec{
		{X: 400, Y: 300},
		{X: 0, Y: 0},
		{X: 799, Y: 599},
		{X: 123.4, Y: 567.8},
	}
	zooms := []float64{MinZoom, 0.5, 1, 2.7, MaxZoom}
	rotations := []float64{0, 15, 90, 180, 333}

	for _, z := range zooms {
		for _, rot := range rotations {
			tr.SetZoom(z)
			tr.SetWorldRotation(rot)
			tr.SetPan(v2.Vec{X: -37.5, Y: 82})
			for _, s := range screens {
				got := tr.WorldToScreen(tr.ScreenToWorld(s))
				if !within(got, s, 1.0) {
					t.Errorf("zoom=%g rot=%g: round trip of %v gave %v", z, rot, s, got)
				}
			}
		}
	}
}

func TestZoomAnchorInvariance(t *testing.T) {
	anchors := []v2.Vec{
		{X: 400, Y: 300},
		{X: 250, Y: 180},
		{X: 650, Y: 420},
		{X: 100, Y: 100},
		{X: 700, Y: 500},
	}
	factors := []float64{1.2, 0.8, 1.5, 0.7, 1.1}
	rotations := []float64{0, 15, 30, 45}

	for _, rot := range rotations {
		for _, a := range anchors {
			for _, f := range factors {
				tr := NewTransform(800, 600)
				tr.SetWorldRotation(rot)
				tr.SetPan(v2.Vec{X: 20, Y: -40})

				world := tr.ScreenToWorld(a)
				tr.ZoomAtPoint(f, a)
				after := tr.WorldToScreen(world)
				if !within(after, a, 1.0) {
					t.Errorf("rot=%g anchor=%v factor=%g: anchor moved to %v", rot, a, f, after)
				}
			}
		}
	}
}

func TestSequentialZoomStability(t *testing.T) {
	tr := NewTransform(800, 600)
	tr.SetWorldRotation(20)
	anchor := v2.Vec{X: 250, Y: 180}
	world := tr.ScreenToWorld(anchor)

	steps := []float64{1.1, 1.1, 1.1, 1.1, 1.1, 1 / 1.1, 1 / 1.1, 1 / 1.1, 1 / 1.1, 1 / 1.1}
	for i, f := range steps {
		tr.ZoomAtPoint(f, anchor)
		got := tr.WorldToScreen(world)
		if !within(got, anchor, 1.0) {
			t.Fatalf("step %d (factor %g): anchor drifted to %v", i, f, got)
		}
	}
}

func TestZoomClampIsNoOp(t *testing.T) {
	tr := NewTransform(800, 600)
	tr.SetZoom(MaxZoom)
	pan := v2.Vec{X: 11, Y: -7}
	tr.SetPan(pan)

	tr.ZoomAtPoint(2.0, v2.Vec{X: 100, Y: 100})
	if tr.Zoom() != MaxZoom {
		t.Errorf("zoom = %g, want clamp at %g", tr.Zoom(), MaxZoom)
	}
	if tr.Pan() != pan {
		t.Errorf("pan recomputed on clamped no-op zoom: %v", tr.Pan())
	}

	tr.SetZoom(MinZoom)
	tr.SetPan(pan)
	tr.ZoomAtPoint(0.5, v2.Vec{X: 100, Y: 100})
	if tr.Zoom() != MinZoom || tr.Pan() != pan {
		t.Error("zoom-out past the minimum must be a full no-op")
	}
}

func TestRotationWraps(t *testing.T) {
	tr := NewTransform(800, 600)
	tr.SetWorldRotation(370)
	if tr.Rotation() != 10 {
		t.Errorf("rotation = %g, want 10", tr.Rotation())
	}
	tr.SetWorldRotation(-30)
	if tr.Rotation() != 330 {
		t.Errorf("rotation = %g, want 330", tr.Rotation())
	}
	tr.RotateBy(45)
	if tr.Rotation() != 15 {
		t.Errorf("rotation = %g, want 15", tr.Rotation())
	}
}

func TestTransformDirectionIgnoresPan(t *testing.T) {
	tr := NewTransform(800, 600)
	tr.SetZoom(2)
	tr.SetPan(v2.Vec{X: 500, Y: 500})
	tr.SetWorldRotation(90)

	d := tr.TransformDirection(v2.Vec{X: 1, Y: 0})
	want := v2.Vec{X: 0, Y: 2}
	if !within(d, want, 1e-9) {
		t.Errorf("direction = %v, want %v", d, want)
	}
}
