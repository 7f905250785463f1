package canvas

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/skeinview/skein/pkg/geom"
	"github.com/skeinview/skein/pkg/graph"
)

// Sampling resolutions. 50 segments is enough accuracy near the sharpest
// curvature these curve kinds produce while staying cheap per drag frame;
// the nearest-t search uses a finer grid because it runs once per click,
// not per frame.
const (
	hitSampleSegments = 50
	nearestTSamples   = 101
)

// HitTester answers picking queries against edge curves and their drag
// handles. Queries arrive in screen coordinates and are resolved in world
// coordinates through the transform.
type HitTester struct {
	geom      *Geometry
	transform *Transform
}

// NewHitTester builds a tester over the given geometry and view transform.
func NewHitTester(g *Geometry, t *Transform) *HitTester {
	return &HitTester{geom: g, transform: t}
}

// EdgeTolerance is the world-space pick distance for edge bodies. Zoomed
// out, 1/zoom grows the world tolerance so curves stay clickable; zoomed
// in, the floor keeps picking precise.
func (h *HitTester) EdgeTolerance() float64 {
	return math.Max(10, 15/h.transform.Zoom())
}

// HandleRadius is the screen-space pick radius for control point and
// arrow marker handles.
func (h *HitTester) HandleRadius() float64 {
	return math.Max(8, 4*h.transform.Zoom())
}

// HitEdge reports whether the screen point lies within tolerance of the
// edge's rendered curve. The curve is sampled at a fixed resolution and
// the point is tested against each consecutive sample segment in world
// space.
func (h *HitTester) HitEdge(e *graph.Edge, screen v2.Vec) bool {
	p := h.transform.ScreenToWorld(screen)
	tol := h.EdgeTolerance()

	src, dst := h.geom.Anchors(e)
	c := e.Curve()
	prev := c.Eval(src, dst, 0)
	for i := 1; i <= hitSampleSegments; i++ {
		t := float64(i) / hitSampleSegments
		next := c.Eval(src, dst, t)
		if geom.PointSegmentDistance(p, prev, next) <= tol {
			return true
		}
		prev = next
	}
	return false
}

// NearestT returns the curve parameter whose sample point lies closest to
// the screen point, along with the world-space distance at that sample.
// Brute force over an even grid; these curves have few inflections, so a
// fine grid beats an iterative minimizer for robustness.
func (h *HitTester) NearestT(e *graph.Edge, screen v2.Vec) (float64, float64) {
	p := h.transform.ScreenToWorld(screen)
	src, dst := h.geom.Anchors(e)
	c := e.Curve()

	bestT, bestDist := 0.0, math.Inf(1)
	for i := 0; i < nearestTSamples; i++ {
		t := float64(i) / (nearestTSamples - 1)
		if d := c.Eval(src, dst, t).Sub(p).Length(); d < bestDist {
			bestT, bestDist = t, d
		}
	}
	return bestT, bestDist
}

// HitControlPoint returns the index of the edge control point whose
// screen-space handle contains the point, or -1.
func (h *HitTester) HitControlPoint(e *graph.Edge, screen v2.Vec) int {
	r := h.HandleRadius()
	for i := range e.ControlPoints {
		cp := v2.Vec{X: e.ControlPoints[i].X, Y: e.ControlPoints[i].Y}
		if h.transform.WorldToScreen(cp).Sub(screen).Length() <= r {
			return i
		}
	}
	return -1
}

// HitArrowMarker reports whether the screen point is on the edge's arrow
// marker handle.
func (h *HitTester) HitArrowMarker(e *graph.Edge, screen v2.Vec) bool {
	if !e.Directed {
		return false
	}
	marker := h.transform.WorldToScreen(h.geom.ArrowPoint(e))
	return marker.Sub(screen).Length() <= h.HandleRadius()
}

// HitEndpointDot reports which endpoint dot the screen point is on, if
// any.
func (h *HitTester) HitEndpointDot(e *graph.Edge, screen v2.Vec) (graph.Side, bool) {
	r := h.HandleRadius()
	src, dst := h.geom.Anchors(e)
	if h.transform.WorldToScreen(src).Sub(screen).Length() <= r {
		return graph.SourceSide, true
	}
	if h.transform.WorldToScreen(dst).Sub(screen).Length() <= r {
		return graph.TargetSide, true
	}
	return graph.SourceSide, false
}

// HitNode returns the topmost visible node containing the screen point,
// or nil. Later insertions draw on top, so the scan runs back to front.
func (h *HitTester) HitNode(screen v2.Vec) *graph.Node {
	p := h.transform.ScreenToWorld(screen)
	nodes := h.geom.diagram.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Visible && nodes[i].ContainsPoint(p) {
			return nodes[i]
		}
	}
	return nil
}

// HitAnyEdge returns the topmost visible edge whose curve is within
// tolerance of the screen point, or nil.
func (h *HitTester) HitAnyEdge(screen v2.Vec) *graph.Edge {
	edges := h.geom.diagram.Edges()
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].Visible && h.HitEdge(edges[i], screen) {
			return edges[i]
		}
	}
	return nil
}
