package curve

import (
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/geom"
)

// evalInterpolatingSpline evaluates a spline that passes through every point
// in the list. With three or more points it uses the Catmull-Rom basis per
// segment, clamping the phantom points at the ends to the endpoints
// themselves; with exactly two points it is linear.
func evalInterpolatingSpline(points []v2.Vec, t float64) v2.Vec {
	switch len(points) {
	case 0:
		return v2.Vec{}
	case 1:
		return points[0]
	case 2:
		return geom.Lerp(points[0], points[1], t)
	}

	segments := len(points) - 1
	u := t * float64(segments)
	idx := int(u)
	if idx >= segments {
		idx = segments - 1
	}
	lt := u - float64(idx)

	p0 := points[maxInt(idx-1, 0)]
	p1 := points[idx]
	p2 := points[idx+1]
	p3 := points[minInt(idx+2, len(points)-1)]

	return catmullRom(p0, p1, p2, p3, lt)
}

// catmullRom evaluates one Catmull-Rom segment between p1 and p2 with
// neighbors p0 and p3, at local parameter t.
func catmullRom(p0, p1, p2, p3 v2.Vec, t float64) v2.Vec {
	t2 := t * t
	t3 := t2 * t
	return p1.MulScalar(2).
		Add(p2.Sub(p0).MulScalar(t)).
		Add(p0.MulScalar(2).Sub(p1.MulScalar(5)).Add(p2.MulScalar(4)).Sub(p3).MulScalar(t2)).
		Add(p1.MulScalar(3).Sub(p0).Sub(p2.MulScalar(3)).Add(p3).MulScalar(t3)).
		MulScalar(0.5)
}

// evalPolyline evaluates a piecewise-linear path through the points,
// dividing t evenly among the segments.
func evalPolyline(points []v2.Vec, t float64) v2.Vec {
	switch len(points) {
	case 0:
		return v2.Vec{}
	case 1:
		return points[0]
	case 2:
		return geom.Lerp(points[0], points[1], t)
	}
	segments := len(points) - 1
	u := t * float64(segments)
	idx := int(u)
	if idx >= segments {
		idx = segments - 1
	}
	return geom.Lerp(points[idx], points[idx+1], u-float64(idx))
}

// evalFreeform evaluates an explicit path by arclength: the parameter maps
// to distance along the path, so sample spacing follows the drawn stroke
// rather than the point count. Fewer than two path points fall back to the
// straight line between the anchors.
func evalFreeform(source, target v2.Vec, path []v3.Vec, t float64) v2.Vec {
	if len(path) < 2 {
		return geom.Lerp(source, target, t)
	}

	points := make([]v2.Vec, len(path))
	for i, p := range path {
		points[i] = geom.XY(p)
	}

	total := 0.0
	lengths := make([]float64, len(points)-1)
	for i := 0; i < len(points)-1; i++ {
		lengths[i] = points[i+1].Sub(points[i]).Length()
		total += lengths[i]
	}
	if total == 0 {
		return points[0]
	}

	want := t * total
	accum := 0.0
	for i, l := range lengths {
		if accum+l >= want || i == len(lengths)-1 {
			if l == 0 {
				return points[i]
			}
			return geom.Lerp(points[i], points[i+1], (want-accum)/l)
		}
		accum += l
	}
	return points[len(points)-1]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
