// Package geom provides the small 2D geometry helpers shared by the curve
// evaluator, the hit tester and the interaction layer. Points and vectors
// use the sdfx vector types: v2.Vec for world/screen coordinates and v3.Vec
// where a z component is carried along.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Lerp linearly interpolates between a and b at parameter t.
func Lerp(a, b v2.Vec, t float64) v2.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// XY projects a 3D point onto the XY plane.
func XY(p v3.Vec) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}

// WithZ lifts a 2D point back to 3D, preserving the given z.
func WithZ(p v2.Vec, z float64) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: z}
}

// Rotate rotates p about center by the given angle in radians.
func Rotate(p v2.Vec, angle float64, center v2.Vec) v2.Vec {
	sin, cos := math.Sincos(angle)
	d := p.Sub(center)
	return v2.Vec{
		X: d.X*cos - d.Y*sin,
		Y: d.X*sin + d.Y*cos,
	}.Add(center)
}

// RotateVec rotates a direction vector by the given angle in radians.
func RotateVec(v v2.Vec, angle float64) v2.Vec {
	sin, cos := math.Sincos(angle)
	return v2.Vec{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// PointSegmentDistance returns the distance from p to the line segment a-b.
// The projection parameter is clamped to [0,1] so endpoints are handled
// correctly; a degenerate zero-length segment reduces to point distance.
func PointSegmentDistance(p, a, b v2.Vec) float64 {
	ab := b.Sub(a)
	len2 := ab.Length2()
	if len2 == 0 {
		return p.Sub(a).Length()
	}
	t := p.Sub(a).Dot(ab) / len2
	t = math.Max(0, math.Min(1, t))
	proj := a.Add(ab.MulScalar(t))
	return p.Sub(proj).Length()
}

// PointInPolygon reports whether p lies inside the polygon using the ray
// casting algorithm. The polygon is implicitly closed.
func PointInPolygon(p v2.Vec, polygon []v2.Vec) bool {
	n := len(polygon)
	if n < 3 {
		return false
	}
	inside := false
	p1 := polygon[0]
	for i := 1; i <= n; i++ {
		p2 := polygon[i%n]
		if p.Y > math.Min(p1.Y, p2.Y) && p.Y <= math.Max(p1.Y, p2.Y) && p.X <= math.Max(p1.X, p2.X) {
			var xInters float64
			if p1.Y != p2.Y {
				xInters = (p.Y-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y) + p1.X
			}
			if p1.X == p2.X || p.X <= xInters {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside
}

// SegmentsIntersect reports whether segments a1-a2 and b1-b2 intersect.
func SegmentsIntersect(a1, a2, b1, b2 v2.Vec) bool {
	d1 := cross(b1, b2, a1)
	d2 := cross(b1, b2, a2)
	d3 := cross(a1, a2, b1)
	d4 := cross(a1, a2, b2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return (d1 == 0 && onSegment(b1, b2, a1)) ||
		(d2 == 0 && onSegment(b1, b2, a2)) ||
		(d3 == 0 && onSegment(a1, a2, b1)) ||
		(d4 == 0 && onSegment(a1, a2, b2))
}

// PolygonsIntersect reports whether two convex polygons overlap: any vertex
// containment or any pair of crossing boundary segments counts.
func PolygonsIntersect(a, b []v2.Vec) bool {
	for _, p := range a {
		if PointInPolygon(p, b) {
			return true
		}
	}
	for _, p := range b {
		if PointInPolygon(p, a) {
			return true
		}
	}
	for i := range a {
		a1, a2 := a[i], a[(i+1)%len(a)]
		for j := range b {
			if SegmentsIntersect(a1, a2, b[j], b[(j+1)%len(b)]) {
				return true
			}
		}
	}
	return false
}

func cross(o, a, b v2.Vec) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(a, b, p v2.Vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}
