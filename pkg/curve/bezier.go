package curve

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/geom"
)

// defaultInteriorWeight is the rational-Bézier weight given to interior
// control points so they visibly pull the curve. Anchors keep weight 1.
const defaultInteriorWeight = 3.0

// weightEpsilon guards the rational-Bézier denominator.
const weightEpsilon = 1e-10

// arcOffsetRatio is the perpendicular offset of a synthesized arc control
// point, as a fraction of chord length.
const arcOffsetRatio = 0.25

// evalArc evaluates the "curved" kind: a quadratic Bézier through a single
// control point. With no control point a default is synthesized at the
// chord midpoint, offset perpendicular by a quarter of the chord length.
func evalArc(source, target v2.Vec, cps []v3.Vec, t float64) v2.Vec {
	var cp v2.Vec
	if len(cps) >= 1 {
		cp = geom.XY(cps[0])
	} else {
		cp = DefaultArcControl(source, target)
	}
	mt := 1 - t
	return source.MulScalar(mt * mt).
		Add(cp.MulScalar(2 * mt * t)).
		Add(target.MulScalar(t * t))
}

// DefaultArcControl returns the synthesized control point for an arc with
// no explicit control point: the chord midpoint offset perpendicular by a
// quarter of the chord length. A zero-length chord has no perpendicular,
// so the point degenerates to the shared endpoint; the length floor only
// guards the division.
func DefaultArcControl(source, target v2.Vec) v2.Vec {
	d := target.Sub(source)
	length := math.Max(1, d.Length())
	mid := geom.Lerp(source, target, 0.5)
	perp := v2.Vec{X: -d.Y, Y: d.X}.DivScalar(length).MulScalar(length * arcOffsetRatio)
	return mid.Add(perp)
}

// evalBezier evaluates a Bézier of arbitrary degree over
// [source, cps..., target] using De Casteljau's algorithm. Iterative affine
// collapse keeps this numerically stable at any degree. Zero control points
// degrade to the straight line.
func evalBezier(source, target v2.Vec, cps []v3.Vec, t float64) v2.Vec {
	if len(cps) == 0 {
		return geom.Lerp(source, target, t)
	}
	points := withAnchors(source, target, cps)
	for n := len(points); n > 1; n-- {
		for i := 0; i < n-1; i++ {
			points[i] = geom.Lerp(points[i], points[i+1], t)
		}
	}
	return points[0]
}

// evalRationalBezier evaluates a weighted (rational) Bézier: anchors carry
// weight 1, interior control points carry interiorWeight. If the weight sum
// degenerates the evaluation falls back to straight-line interpolation.
func evalRationalBezier(source, target v2.Vec, cps []v3.Vec, interiorWeight, t float64) v2.Vec {
	if len(cps) == 0 {
		return geom.Lerp(source, target, t)
	}
	points := withAnchors(source, target, cps)
	n := len(points) - 1

	var num v2.Vec
	var den float64
	for i, p := range points {
		w := 1.0
		if i > 0 && i < n {
			w = interiorWeight
		}
		b := Bernstein(n, i, t) * w
		num = num.Add(p.MulScalar(b))
		den += b
	}
	if den < weightEpsilon {
		return geom.Lerp(source, target, t)
	}
	return num.DivScalar(den)
}

// Bernstein returns the Bernstein basis polynomial B(n,i) at t.
func Bernstein(n, i int, t float64) float64 {
	return float64(Binomial(n, i)) * math.Pow(t, float64(i)) * math.Pow(1-t, float64(n-i))
}

// Binomial computes C(n,k) with the multiplicative formula, avoiding the
// factorial overflow a naive implementation hits past n=20.
func Binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := int64(1)
	for i := 0; i < k; i++ {
		result = result * int64(n-i) / int64(i+1)
	}
	return result
}
