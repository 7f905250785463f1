// Package curve evaluates the parametric curve families an edge can be
// rendered as. Evaluation is pure and total: every kind degrades to
// straight-line interpolation between its anchors when it has too few
// control points, so callers never need to pre-validate geometry.
//
// Control points are interior shaping points in world coordinates; the two
// anchors are supplied per call because they move with the nodes they
// terminate at. The z component of a control point is carried but ignored
// by 2D evaluation.
package curve

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/geom"
)

// Kind enumerates the curve families.
type Kind int

const (
	Straight Kind = iota
	Curved        // quadratic arc through one control point
	Bezier
	CubicSpline
	BSpline
	NURBS
	Polyline
	Composite
	Freeform
)

func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Curved:
		return "curved"
	case Bezier:
		return "bezier"
	case CubicSpline:
		return "cubic_spline"
	case BSpline:
		return "bspline"
	case NURBS:
		return "nurbs"
	case Polyline:
		return "polyline"
	case Composite:
		return "composite"
	case Freeform:
		return "freeform"
	default:
		return "unknown"
	}
}

// ParseKind converts a persisted kind tag to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "straight":
		return Straight, nil
	case "curved":
		return Curved, nil
	case "bezier":
		return Bezier, nil
	case "cubic_spline":
		return CubicSpline, nil
	case "bspline":
		return BSpline, nil
	case "nurbs":
		return NURBS, nil
	case "polyline":
		return Polyline, nil
	case "composite":
		return Composite, nil
	case "freeform":
		return Freeform, nil
	}
	return Straight, fmt.Errorf("unknown curve kind %q", s)
}

// Segment is one piece of a composite curve. Its anchors are derived by
// evenly subdividing the parent edge's chord, so it only carries shape.
type Segment struct {
	Kind          Kind     `json:"type"`
	ControlPoints []v3.Vec `json:"control_points,omitempty"`
	Weight        float64  `json:"weight"`
}

// Curve bundles everything needed to evaluate one edge's geometry apart
// from its anchors. The zero value is a straight line.
type Curve struct {
	Kind          Kind
	ControlPoints []v3.Vec
	Segments      []Segment // composite only
	Path          []v3.Vec  // freeform only
}

// Eval returns the world position at parameter t in [0,1] on the curve
// anchored at source and target. t outside [0,1] is clamped.
func (c Curve) Eval(source, target v2.Vec, t float64) v2.Vec {
	t = clamp01(t)
	switch c.Kind {
	case Curved:
		return evalArc(source, target, c.ControlPoints, t)
	case Bezier:
		return evalBezier(source, target, c.ControlPoints, t)
	case CubicSpline, BSpline:
		// Both kinds use the same interpolating spline. Two UI labels for
		// one algorithm in the original; preserved as-is.
		return evalInterpolatingSpline(withAnchors(source, target, c.ControlPoints), t)
	case NURBS:
		return evalRationalBezier(source, target, c.ControlPoints, defaultInteriorWeight, t)
	case Polyline:
		return evalPolyline(withAnchors(source, target, c.ControlPoints), t)
	case Composite:
		return evalComposite(source, target, c.Segments, t)
	case Freeform:
		return evalFreeform(source, target, c.Path, t)
	default:
		return geom.Lerp(source, target, t)
	}
}

// withAnchors builds the full point list [source, cps..., target].
func withAnchors(source, target v2.Vec, cps []v3.Vec) []v2.Vec {
	points := make([]v2.Vec, 0, len(cps)+2)
	points = append(points, source)
	for _, cp := range cps {
		points = append(points, geom.XY(cp))
	}
	points = append(points, target)
	return points
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// evalComposite splits the global parameter evenly among the segments and
// dispatches to the segment's own kind. Segment anchors come from evenly
// subdividing the source→target chord, which makes segment boundaries
// continuous by construction.
func evalComposite(source, target v2.Vec, segments []Segment, t float64) v2.Vec {
	n := len(segments)
	if n == 0 {
		return geom.Lerp(source, target, t)
	}
	idx := int(t * float64(n))
	if idx >= n {
		idx = n - 1
	}
	local := t*float64(n) - float64(idx)

	segStart := geom.Lerp(source, target, float64(idx)/float64(n))
	segEnd := geom.Lerp(source, target, float64(idx+1)/float64(n))

	seg := segments[idx]
	switch seg.Kind {
	case Curved:
		return evalArc(segStart, segEnd, seg.ControlPoints, local)
	case Bezier:
		return evalBezier(segStart, segEnd, seg.ControlPoints, local)
	case CubicSpline, BSpline:
		return evalInterpolatingSpline(withAnchors(segStart, segEnd, seg.ControlPoints), local)
	case NURBS:
		w := seg.Weight
		if w == 0 {
			w = 1
		}
		return evalRationalBezier(segStart, segEnd, seg.ControlPoints, w*defaultInteriorWeight, local)
	case Polyline:
		return evalPolyline(withAnchors(segStart, segEnd, seg.ControlPoints), local)
	default:
		return geom.Lerp(segStart, segEnd, local)
	}
}
