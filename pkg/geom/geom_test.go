package geom

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

func TestLerp(t *testing.T) {
	a := v2.Vec{X: 0, Y: 0}
	b := v2.Vec{X: 10, Y: 20}

	mid := Lerp(a, b, 0.5)
	if mid.X != 5 || mid.Y != 10 {
		t.Errorf("Lerp(0.5) = %v, want (5,10)", mid)
	}
	if got := Lerp(a, b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := Lerp(a, b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	p := Rotate(v2.Vec{X: 1, Y: 0}, math.Pi/2, v2.Vec{})
	if math.Abs(p.X) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("rotate (1,0) by 90° = %v, want (0,1)", p)
	}

	// Rotation about a non-origin center.
	c := v2.Vec{X: 5, Y: 5}
	q := Rotate(v2.Vec{X: 6, Y: 5}, math.Pi, c)
	if math.Abs(q.X-4) > 1e-12 || math.Abs(q.Y-5) > 1e-12 {
		t.Errorf("rotate about center = %v, want (4,5)", q)
	}
}

func TestPointSegmentDistance(t *testing.T) {
	a := v2.Vec{X: 0, Y: 0}
	b := v2.Vec{X: 10, Y: 0}

	cases := []struct {
		name string
		p    v2.Vec
		want float64
	}{
		{"above midpoint", v2.Vec{X: 5, Y: 3}, 3},
		{"beyond end", v2.Vec{X: 13, Y: 4}, 5},
		{"before start", v2.Vec{X: -3, Y: -4}, 5},
		{"on segment", v2.Vec{X: 7, Y: 0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PointSegmentDistance(tc.p, a, b)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("distance = %f, want %f", got, tc.want)
			}
		})
	}

	// Degenerate zero-length segment.
	if got := PointSegmentDistance(v2.Vec{X: 3, Y: 4}, a, a); math.Abs(got-5) > 1e-12 {
		t.Errorf("degenerate segment distance = %f, want 5", got)
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []v2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	if !PointInPolygon(v2.Vec{X: 5, Y: 5}, square) {
		t.Error("center of square should be inside")
	}
	if PointInPolygon(v2.Vec{X: 15, Y: 5}, square) {
		t.Error("point right of square should be outside")
	}
	if PointInPolygon(v2.Vec{X: 5, Y: 5}, square[:2]) {
		t.Error("degenerate polygon should contain nothing")
	}
}

func TestPolygonsIntersect(t *testing.T) {
	a := []v2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	b := []v2.Vec{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}
	c := []v2.Vec{{X: 20, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 30}, {X: 20, Y: 30}}

	if !PolygonsIntersect(a, b) {
		t.Error("overlapping squares should intersect")
	}
	if PolygonsIntersect(a, c) {
		t.Error("disjoint squares should not intersect")
	}

	// Crossing boundaries without containing each other's vertices.
	horiz := []v2.Vec{{X: -5, Y: 4}, {X: 15, Y: 4}, {X: 15, Y: 6}, {X: -5, Y: 6}}
	if !PolygonsIntersect(a, horiz) {
		t.Error("crossing rectangles should intersect")
	}
}
