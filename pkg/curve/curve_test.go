package curve

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	src = v2.Vec{X: 100, Y: 200}
	dst = v2.Vec{X: 500, Y: 400}
)

func approxEqual(a, b v2.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps
}

// Every kind with zero control points must evaluate as the exact straight
// line between the anchors.
func TestZeroControlPointDegeneracy(t *testing.T) {
	kinds := []Kind{Straight, Bezier, CubicSpline, BSpline, NURBS, Polyline, Composite, Freeform}
	ts := []float64{0, 0.25, 0.5, 0.75, 1.0}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			c := Curve{Kind: kind}
			for _, tt := range ts {
				want := src.Add(dst.Sub(src).MulScalar(tt))
				got := c.Eval(src, dst, tt)
				if !approxEqual(got, want, 1e-9) {
					t.Errorf("Eval(%v) = %v, want %v", tt, got, want)
				}
			}
		})
	}
}

// "curved" with zero control points synthesizes a perpendicular-offset
// control point rather than degrading to a line.
func TestArcDefaultControlPoint(t *testing.T) {
	c := Curve{Kind: Curved}
	mid := c.Eval(src, dst, 0.5)
	chordMid := src.Add(dst.Sub(src).MulScalar(0.5))
	if approxEqual(mid, chordMid, 1.0) {
		t.Errorf("arc midpoint %v should be offset from chord midpoint %v", mid, chordMid)
	}

	cp := DefaultArcControl(src, dst)
	chord := dst.Sub(src)
	// Offset must be perpendicular to the chord, 25% of its length.
	offset := cp.Sub(src.Add(chord.MulScalar(0.5)))
	if math.Abs(offset.Dot(chord)) > 1e-6 {
		t.Errorf("default control offset %v is not perpendicular to chord", offset)
	}
	if math.Abs(offset.Length()-chord.Length()*0.25) > 1e-9 {
		t.Errorf("default control offset length = %f, want %f", offset.Length(), chord.Length()*0.25)
	}

	// Coincident endpoints degenerate to the shared point.
	if got := DefaultArcControl(src, src); got != src {
		t.Errorf("degenerate arc control = %v, want %v", got, src)
	}
}

func TestEndpointExactness(t *testing.T) {
	cps := []v3.Vec{{X: 200, Y: 100}, {X: 350, Y: 500}, {X: 420, Y: 150}}
	kinds := []Kind{Straight, Curved, Bezier, CubicSpline, BSpline, NURBS, Polyline}

	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			c := Curve{Kind: kind, ControlPoints: cps}
			if got := c.Eval(src, dst, 0); !approxEqual(got, src, 1e-9) {
				t.Errorf("Eval(0) = %v, want source %v", got, src)
			}
			if got := c.Eval(src, dst, 1); !approxEqual(got, dst, 1e-9) {
				t.Errorf("Eval(1) = %v, want target %v", got, dst)
			}
		})
	}

	t.Run("composite", func(t *testing.T) {
		c := Curve{Kind: Composite, Segments: []Segment{
			{Kind: Bezier, ControlPoints: cps[:1], Weight: 1},
			{Kind: Straight, Weight: 1},
		}}
		if got := c.Eval(src, dst, 0); !approxEqual(got, src, 1e-9) {
			t.Errorf("Eval(0) = %v, want source %v", got, src)
		}
		if got := c.Eval(src, dst, 1); !approxEqual(got, dst, 1e-9) {
			t.Errorf("Eval(1) = %v, want target %v", got, dst)
		}
	})
}

// De Casteljau must agree with the direct Bernstein-polynomial sum for all
// low degrees.
func TestDeCasteljauMatchesBernstein(t *testing.T) {
	pointSets := [][]v3.Vec{
		{{X: 240, Y: 80}},
		{{X: 240, Y: 80}, {X: 330, Y: 520}},
		{{X: 240, Y: 80}, {X: 330, Y: 520}, {X: 410, Y: 90}},
	}

	for _, cps := range pointSets {
		c := Curve{Kind: Bezier, ControlPoints: cps}
		points := withAnchors(src, dst, cps)
		n := len(points) - 1

		for i := 0; i <= 10; i++ {
			tt := float64(i) / 10
			var want v2.Vec
			for j, p := range points {
				want = want.Add(p.MulScalar(Bernstein(n, j, tt)))
			}
			got := c.Eval(src, dst, tt)
			if !approxEqual(got, want, 1e-9) {
				t.Errorf("degree %d at t=%v: De Casteljau %v != Bernstein %v", n, tt, got, want)
			}
		}
	}
}

// Composite evaluation must be continuous at segment boundaries.
func TestCompositeBoundaryContinuity(t *testing.T) {
	c := Curve{Kind: Composite, Segments: []Segment{
		{Kind: Curved, ControlPoints: []v3.Vec{{X: 180, Y: 120}}, Weight: 1},
		{Kind: Bezier, ControlPoints: []v3.Vec{{X: 300, Y: 400}}, Weight: 1},
		{Kind: Straight, Weight: 1},
	}}
	n := len(c.Segments)

	const boundaryEps = 1e-9
	for k := 1; k < n; k++ {
		boundary := float64(k) / float64(n)
		below := c.Eval(src, dst, boundary-1e-12)
		at := c.Eval(src, dst, boundary)
		if !approxEqual(below, at, 1e-6) {
			t.Errorf("discontinuity at boundary %d/%d: %v vs %v", k, n, below, at)
		}
		// The boundary point is the chord subdivision point by construction.
		want := src.Add(dst.Sub(src).MulScalar(boundary))
		if !approxEqual(at, want, boundaryEps) {
			t.Errorf("boundary %d/%d = %v, want chord point %v", k, n, at, want)
		}
	}
}

func TestNURBSPullsTowardControlPoint(t *testing.T) {
	cp := v3.Vec{X: 300, Y: 600}
	plain := Curve{Kind: Bezier, ControlPoints: []v3.Vec{cp}}
	weighted := Curve{Kind: NURBS, ControlPoints: []v3.Vec{cp}}

	pPlain := plain.Eval(src, dst, 0.5)
	pWeighted := weighted.Eval(src, dst, 0.5)

	dPlain := pPlain.Sub(v2.Vec{X: cp.X, Y: cp.Y}).Length()
	dWeighted := pWeighted.Sub(v2.Vec{X: cp.X, Y: cp.Y}).Length()
	if dWeighted >= dPlain {
		t.Errorf("weighted midpoint (dist %f) should sit closer to the control point than plain (dist %f)", dWeighted, dPlain)
	}
}

func TestInterpolatingSplinePassesThroughControlPoints(t *testing.T) {
	cps := []v3.Vec{{X: 200, Y: 350}, {X: 320, Y: 150}, {X: 440, Y: 380}}
	c := Curve{Kind: CubicSpline, ControlPoints: cps}

	// With anchors the spline has len(cps)+1 segments; each interior knot
	// lies at an even parameter subdivision.
	segs := float64(len(cps) + 1)
	for i, cp := range cps {
		tt := float64(i+1) / segs
		got := c.Eval(src, dst, tt)
		want := v2.Vec{X: cp.X, Y: cp.Y}
		if !approxEqual(got, want, 1e-9) {
			t.Errorf("spline at knot %d (t=%v) = %v, want %v", i, tt, got, want)
		}
	}
}

func TestBSplineMatchesCubicSpline(t *testing.T) {
	cps := []v3.Vec{{X: 200, Y: 350}, {X: 320, Y: 150}}
	a := Curve{Kind: CubicSpline, ControlPoints: cps}
	b := Curve{Kind: BSpline, ControlPoints: cps}
	for i := 0; i <= 20; i++ {
		tt := float64(i) / 20
		if !approxEqual(a.Eval(src, dst, tt), b.Eval(src, dst, tt), 1e-12) {
			t.Fatalf("bspline and cubic_spline diverge at t=%v", tt)
		}
	}
}

func TestFreeformArclengthParameterization(t *testing.T) {
	// An L-shaped path: two legs of length 100 each.
	c := Curve{Kind: Freeform, Path: []v3.Vec{
		{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100},
	}}

	if got := c.Eval(src, dst, 0.25); !approxEqual(got, v2.Vec{X: 50, Y: 0}, 1e-9) {
		t.Errorf("t=0.25 = %v, want (50,0)", got)
	}
	if got := c.Eval(src, dst, 0.5); !approxEqual(got, v2.Vec{X: 100, Y: 0}, 1e-9) {
		t.Errorf("t=0.5 = %v, want corner (100,0)", got)
	}
	if got := c.Eval(src, dst, 0.75); !approxEqual(got, v2.Vec{X: 100, Y: 50}, 1e-9) {
		t.Errorf("t=0.75 = %v, want (100,50)", got)
	}
	if got := c.Eval(src, dst, 1); !approxEqual(got, v2.Vec{X: 100, Y: 100}, 1e-9) {
		t.Errorf("t=1 = %v, want path end", got)
	}
}

func TestBinomial(t *testing.T) {
	cases := []struct {
		n, k int
		want int64
	}{
		{0, 0, 1},
		{4, 2, 6},
		{5, 0, 1},
		{5, 5, 1},
		{10, 3, 120},
		{3, 5, 0},
		{3, -1, 0},
		// Would overflow a factorial-based implementation.
		{30, 15, 155117520},
	}
	for _, tc := range cases {
		if got := Binomial(tc.n, tc.k); got != tc.want {
			t.Errorf("Binomial(%d,%d) = %d, want %d", tc.n, tc.k, got, tc.want)
		}
	}
}

func TestTangents(t *testing.T) {
	t.Run("straight", func(t *testing.T) {
		c := Curve{Kind: Straight}
		want := dst.Sub(src)
		for _, tt := range []float64{0, 0.5, 1} {
			if got := c.Tangent(src, dst, tt); !approxEqual(got, want, 1e-9) {
				t.Errorf("Tangent(%v) = %v, want constant chord %v", tt, got, want)
			}
		}
	})

	t.Run("quadratic closed form", func(t *testing.T) {
		cp := v3.Vec{X: 300, Y: 600}
		c := Curve{Kind: Curved, ControlPoints: []v3.Vec{cp}}
		p1 := v2.Vec{X: cp.X, Y: cp.Y}
		for _, tt := range []float64{0, 0.3, 0.7, 1} {
			want := p1.Sub(src).MulScalar(2 * (1 - tt)).Add(dst.Sub(p1).MulScalar(2 * tt))
			if got := c.Tangent(src, dst, tt); !approxEqual(got, want, 1e-9) {
				t.Errorf("Tangent(%v) = %v, want %v", tt, got, want)
			}
		}
	})

	t.Run("finite difference roughly matches line direction", func(t *testing.T) {
		c := Curve{Kind: CubicSpline}
		got := c.Tangent(src, dst, 0.5).Normalize()
		want := dst.Sub(src).Normalize()
		if !approxEqual(got, want, 1e-6) {
			t.Errorf("degenerate spline tangent = %v, want chord direction %v", got, want)
		}
	})
}

func TestParseKindRoundTrip(t *testing.T) {
	kinds := []Kind{Straight, Curved, Bezier, CubicSpline, BSpline, NURBS, Polyline, Composite, Freeform}
	for _, k := range kinds {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
	if _, err := ParseKind("spiral"); err == nil {
		t.Error("ParseKind should reject unknown kinds")
	}
}
