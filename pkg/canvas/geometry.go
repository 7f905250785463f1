package canvas

import (
	"log"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/geom"
	"github.com/skeinview/skein/pkg/graph"
)

// Node-move damping. A full-strength translation makes curves whip around
// when one endpoint drags, so attached control points follow at half speed.
const moveDamping = 0.5

// Geometry owns edge anchoring and control-point lifecycle for a diagram:
// where curves terminate on node boundaries, how control points are seeded
// when an edge's curve kind changes, and how they follow node movement.
type Geometry struct {
	diagram *graph.Diagram
}

// NewGeometry wraps a diagram.
func NewGeometry(d *graph.Diagram) *Geometry {
	return &Geometry{diagram: d}
}

// BoundaryAnchor returns the point on the node's boundary where an edge
// heading toward the given world point should terminate. The ray from the
// node center toward the point is intersected with the node's rectangle;
// a rotated node is handled by un-rotating the direction into the node's
// local frame and rotating the intersection back out.
func BoundaryAnchor(n *graph.Node, toward v2.Vec) v2.Vec {
	c := n.Center()
	dir := toward.Sub(c)
	if n.Rotation != 0 {
		dir = geom.RotateVec(dir, -geom.Radians(n.Rotation))
	}
	if dir.X == 0 && dir.Y == 0 {
		return c
	}

	hw, hh := n.Width/2, n.Height/2
	scale := math.Inf(1)
	if dir.X != 0 {
		scale = hw / math.Abs(dir.X)
	}
	if dir.Y != 0 {
		if s := hh / math.Abs(dir.Y); s < scale {
			scale = s
		}
	}

	hit := dir.MulScalar(scale)
	if n.Rotation != 0 {
		hit = geom.RotateVec(hit, geom.Radians(n.Rotation))
	}
	return c.Add(hit)
}

// NearestFace returns the midpoint of whichever of the node's four faces
// lies closest to the given world point, honoring the node's rotation.
// The rotation path uses it to name where a stranded custom endpoint
// would re-anchor.
func NearestFace(n *graph.Node, toward v2.Vec) v2.Vec {
	c := n.Center()
	hw, hh := n.Width/2, n.Height/2
	faces := [4]v2.Vec{
		{X: c.X, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y},
		{X: c.X, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y},
	}
	best := faces[0]
	bestDist := math.Inf(1)
	for _, f := range faces {
		if n.Rotation != 0 {
			f = geom.Rotate(f, geom.Radians(n.Rotation), c)
		}
		if d := toward.Sub(f).Length2(); d < bestDist {
			bestDist = d
			best = f
		}
	}
	return best
}

// Anchors returns the world-space endpoints the edge's curve is evaluated
// between. A custom endpoint override wins; otherwise the boundary anchor
// is derived by ray-casting toward the opposite node's center. Missing
// nodes fall back to the zero point so callers never crash on a dangling
// edge.
func (g *Geometry) Anchors(e *graph.Edge) (src, dst v2.Vec) {
	sn := g.diagram.Node(e.SourceID)
	tn := g.diagram.Node(e.TargetID)
	if sn == nil || tn == nil {
		log.Printf("geometry: edge %s references missing node", e.ID)
		return src, dst
	}

	if p, ok := e.CustomEndpoint(graph.SourceSide); ok {
		src = p
	} else {
		src = BoundaryAnchor(sn, tn.Center())
	}
	if p, ok := e.CustomEndpoint(graph.TargetSide); ok {
		dst = p
	} else {
		dst = BoundaryAnchor(tn, sn.Center())
	}
	return src, dst
}

// EvalEdge evaluates the edge's curve at t between its computed anchors.
func (g *Geometry) EvalEdge(e *graph.Edge, t float64) v2.Vec {
	src, dst := g.Anchors(e)
	return e.Curve().Eval(src, dst, t)
}

// EdgeTangent evaluates the curve tangent at t between computed anchors.
func (g *Geometry) EdgeTangent(e *graph.Edge, t float64) v2.Vec {
	src, dst := g.Anchors(e)
	return e.Curve().Tangent(src, dst, t)
}

// ArrowPoint returns the world position of the edge's arrow marker.
func (g *Geometry) ArrowPoint(e *graph.Edge) v2.Vec {
	return g.EvalEdge(e, e.ArrowPosition)
}

// expectedControlPoints is how many points a kind is seeded with. Most
// kinds start empty and the user adds points by hand; arcs need exactly
// one, and self-loops need enough to bow the curve out of the node.
func expectedControlPoints(kind curve.Kind, selfLoop bool) int {
	if selfLoop {
		switch kind {
		case curve.Straight, curve.Curved:
			return 1
		case curve.Bezier, curve.BSpline:
			return 2
		case curve.CubicSpline, curve.Polyline:
			return 3
		case curve.NURBS:
			return 4
		}
		return 0
	}
	if kind == curve.Curved {
		return 1
	}
	return 0
}

// SetEdgeKind changes the edge's curve kind and applies the reseed policy:
// manual edits (CustomPosition) survive unless the new kind requires
// kind-specific seeding, which arcs and self-loops always do.
func (g *Geometry) SetEdgeKind(e *graph.Edge, kind curve.Kind) {
	prev := e.Kind
	e.Kind = kind

	selfLoop := e.IsSelfLoop()
	want := expectedControlPoints(kind, selfLoop)
	requiresSeeding := kind == curve.Curved || selfLoop

	needsReseed := prev != kind ||
		(selfLoop && len(e.ControlPoints) != want) ||
		(kind == curve.Curved && len(e.ControlPoints) != want)
	if e.CustomPosition && !requiresSeeding {
		needsReseed = false
	}
	if needsReseed {
		g.SeedControlPoints(e)
	}
	if kind == curve.Composite && len(e.Segments) == 0 {
		g.seedCompositeSegments(e)
	}
}

// SeedControlPoints replaces the edge's control points with the default
// set for its current kind. Manual-edit protection is the caller's job.
func (g *Geometry) SeedControlPoints(e *graph.Edge) {
	sn := g.diagram.Node(e.SourceID)
	tn := g.diagram.Node(e.TargetID)
	if sn == nil || tn == nil {
		return
	}

	e.CustomPosition = false
	if e.IsSelfLoop() {
		e.ControlPoints = selfLoopSeeds(sn, e.Kind)
		return
	}

	switch e.Kind {
	case curve.Curved:
		cp := curve.DefaultArcControl(sn.Center(), tn.Center())
		e.ControlPoints = []v3.Vec{{X: cp.X, Y: cp.Y}}
	default:
		e.ControlPoints = nil
	}
}

// selfLoopSeeds fans the kind's required point count out above the node so
// the loop renders outside the node body.
func selfLoopSeeds(n *graph.Node, kind curve.Kind) []v3.Vec {
	c := n.Center()
	top := c.Y - n.Height/2
	at := func(dx, dy float64) v3.Vec {
		return v3.Vec{X: c.X + dx, Y: top + dy}
	}
	switch expectedControlPoints(kind, true) {
	case 1:
		return []v3.Vec{at(0, -40)}
	case 2:
		return []v3.Vec{at(40, -30), at(-40, -30)}
	case 3:
		return []v3.Vec{at(40, -30), at(0, -50), at(-40, -30)}
	case 4:
		return []v3.Vec{at(45, -20), at(20, -50), at(-20, -50), at(-45, -20)}
	}
	return nil
}

// seedCompositeSegments gives a fresh composite edge one bezier segment
// with a gentle S offset so the change is visible immediately.
func (g *Geometry) seedCompositeSegments(e *graph.Edge) {
	sn := g.diagram.Node(e.SourceID)
	tn := g.diagram.Node(e.TargetID)
	if sn == nil || tn == nil {
		return
	}
	d := tn.Center().Sub(sn.Center())
	e.Segments = []curve.Segment{{
		Kind: curve.Bezier,
		ControlPoints: []v3.Vec{
			{X: sn.X + d.X*0.3, Y: sn.Y + d.Y*0.3 - 30},
			{X: sn.X + d.X*0.7, Y: sn.Y + d.Y*0.7 + 30},
		},
		Weight: 1.0,
	}}
}

// NodesMoved propagates node drags to attached edge geometry. moved maps
// node ID to the world-space delta it just moved by.
//
// Self-loops translate rigidly with their node. When one endpoint of a
// normal edge moved, control points follow at half the delta. When both
// moved, each control point blends the two deltas by its fractional
// position along the pre-move chord.
func (g *Geometry) NodesMoved(moved map[string]v2.Vec) {
	for _, e := range g.diagram.Edges() {
		srcDelta, srcMoved := moved[e.SourceID]
		dstDelta, dstMoved := moved[e.TargetID]
		if !srcMoved && !dstMoved {
			continue
		}

		if e.IsSelfLoop() {
			translateEdgeGeometry(e, srcDelta)
			continue
		}

		switch {
		case srcMoved && dstMoved:
			g.blendControlPoints(e, srcDelta, dstDelta)
		case srcMoved:
			shiftControlPoints(e, srcDelta.MulScalar(moveDamping))
		default:
			shiftControlPoints(e, dstDelta.MulScalar(moveDamping))
		}
	}
}

func translateEdgeGeometry(e *graph.Edge, d v2.Vec) {
	shiftControlPoints(e, d)
	for i := range e.FreeformPath {
		e.FreeformPath[i].X += d.X
		e.FreeformPath[i].Y += d.Y
	}
	for si := range e.Segments {
		for i := range e.Segments[si].ControlPoints {
			e.Segments[si].ControlPoints[i].X += d.X
			e.Segments[si].ControlPoints[i].Y += d.Y
		}
	}
	for _, side := range []graph.Side{graph.SourceSide, graph.TargetSide} {
		if p, ok := e.CustomEndpoint(side); ok {
			e.SetCustomEndpoint(side, p.Add(d))
		}
	}
}

func shiftControlPoints(e *graph.Edge, d v2.Vec) {
	for i := range e.ControlPoints {
		e.ControlPoints[i].X += d.X
		e.ControlPoints[i].Y += d.Y
	}
}

// blendControlPoints moves each control point by a mix of the two endpoint
// deltas weighted by where the point sits along the pre-move chord.
func (g *Geometry) blendControlPoints(e *graph.Edge, srcDelta, dstDelta v2.Vec) {
	sn := g.diagram.Node(e.SourceID)
	tn := g.diagram.Node(e.TargetID)
	if sn == nil || tn == nil {
		return
	}
	// Chord endpoints before the move.
	a := sn.Center().Sub(srcDelta)
	b := tn.Center().Sub(dstDelta)
	chord := b.Sub(a)
	chordLen2 := chord.Length2()

	for i := range e.ControlPoints {
		f := 0.5
		if chordLen2 > 0 {
			p := v2.Vec{X: e.ControlPoints[i].X, Y: e.ControlPoints[i].Y}
			f = p.Sub(a).Dot(chord) / chordLen2
			f = math.Max(0, math.Min(1, f))
		}
		d := geom.Lerp(srcDelta, dstDelta, f)
		e.ControlPoints[i].X += d.X
		e.ControlPoints[i].Y += d.Y
	}
}

// NodeRotated is called after a node's rotation changed. Derived boundary
// anchors already track rotation through BoundaryAnchor, so edges without
// overrides need no fixup. Custom endpoints are deliberately left where
// they are; remapping them through the rotation is an open gap, so we only
// record the nearest-face anchor a remap would have moved them to.
func (g *Geometry) NodeRotated(nodeID string) {
	n := g.diagram.Node(nodeID)
	if n == nil {
		return
	}
	for _, e := range g.diagram.IncidentEdges(nodeID) {
		for _, side := range []graph.Side{graph.SourceSide, graph.TargetSide} {
			if sideNode(e, side) != nodeID {
				continue
			}
			otherID := e.TargetID
			if side == graph.TargetSide {
				otherID = e.SourceID
			}
			other := g.diagram.Node(otherID)
			if other == nil {
				continue
			}
			if p, ok := e.CustomEndpoint(side); ok {
				face := NearestFace(n, other.Center())
				log.Printf("geometry: edge %s keeps its custom %s endpoint (%g,%g) across rotation of node %s; nearest face is (%g,%g)",
					e.ID, side, p.X, p.Y, nodeID, face.X, face.Y)
			}
		}
	}
}

func sideNode(e *graph.Edge, side graph.Side) string {
	if side == graph.SourceSide {
		return e.SourceID
	}
	return e.TargetID
}

// SetControlPoint moves the control point at index i, preserving its Z.
// Stale indices are logged and ignored so a drag racing a reseed cannot
// crash the editor.
func (g *Geometry) SetControlPoint(e *graph.Edge, i int, p v2.Vec) bool {
	if i < 0 || i >= len(e.ControlPoints) {
		log.Printf("geometry: stale control point index %d on edge %s (have %d)",
			i, e.ID, len(e.ControlPoints))
		return false
	}
	e.ControlPoints[i].X = p.X
	e.ControlPoints[i].Y = p.Y
	e.CustomPosition = true
	return true
}

// InsertControlPoint inserts a point at index i, clamping i into range.
func (g *Geometry) InsertControlPoint(e *graph.Edge, i int, p v2.Vec) {
	if i < 0 {
		i = 0
	}
	if i > len(e.ControlPoints) {
		i = len(e.ControlPoints)
	}
	e.ControlPoints = append(e.ControlPoints, v3.Vec{})
	copy(e.ControlPoints[i+1:], e.ControlPoints[i:])
	e.ControlPoints[i] = v3.Vec{X: p.X, Y: p.Y}
	e.CustomPosition = true
}

// RemoveControlPoint deletes the point at index i. Stale indices are
// logged and ignored.
func (g *Geometry) RemoveControlPoint(e *graph.Edge, i int) bool {
	if i < 0 || i >= len(e.ControlPoints) {
		log.Printf("geometry: stale control point index %d on edge %s (have %d)",
			i, e.ID, len(e.ControlPoints))
		return false
	}
	e.ControlPoints = append(e.ControlPoints[:i], e.ControlPoints[i+1:]...)
	e.CustomPosition = true
	return true
}
