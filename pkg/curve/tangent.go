package curve

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// tangentEpsilon is the half-step used for central-difference tangents on
// kinds without a convenient closed-form derivative.
const tangentEpsilon = 0.01

// Tangent returns the (unnormalized) tangent vector at parameter t. Straight
// lines and Béziers use closed-form derivatives; the interpolating splines,
// NURBS, composite and freeform kinds use a central finite difference on
// Eval, which is accurate enough for arrowhead orientation.
func (c Curve) Tangent(source, target v2.Vec, t float64) v2.Vec {
	t = clamp01(t)
	switch c.Kind {
	case Straight:
		return target.Sub(source)
	case Curved:
		var cp v2.Vec
		if len(c.ControlPoints) >= 1 {
			cp = v2.Vec{X: c.ControlPoints[0].X, Y: c.ControlPoints[0].Y}
		} else {
			cp = DefaultArcControl(source, target)
		}
		// B'(t) = 2(1-t)(P1-P0) + 2t(P2-P1)
		return cp.Sub(source).MulScalar(2 * (1 - t)).
			Add(target.Sub(cp).MulScalar(2 * t))
	case Bezier:
		if len(c.ControlPoints) == 0 {
			return target.Sub(source)
		}
		return bezierDeriv(withAnchors(source, target, c.ControlPoints), t)
	default:
		return c.centralDifference(source, target, t)
	}
}

// bezierDeriv evaluates the derivative of a degree-n Bézier as the
// Bernstein-weighted sum of consecutive control-point differences scaled
// by n.
func bezierDeriv(points []v2.Vec, t float64) v2.Vec {
	n := len(points) - 1
	var d v2.Vec
	for i := 0; i < n; i++ {
		diff := points[i+1].Sub(points[i])
		d = d.Add(diff.MulScalar(Bernstein(n-1, i, t)))
	}
	return d.MulScalar(float64(n))
}

func (c Curve) centralDifference(source, target v2.Vec, t float64) v2.Vec {
	t0 := clamp01(t - tangentEpsilon)
	t1 := clamp01(t + tangentEpsilon)
	if t1 == t0 {
		return target.Sub(source)
	}
	return c.Eval(source, target, t1).Sub(c.Eval(source, target, t0)).DivScalar(t1 - t0)
}
