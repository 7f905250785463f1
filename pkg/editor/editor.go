// Package editor ties the diagram store, the geometry layer, and the
// interaction machinery into one facade the host application talks to.
package editor

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/skeinview/skein/pkg/canvas"
	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/graph"
)

// Editor owns one diagram and the view onto it. All methods run on the
// event thread; the zoom coalescer accumulates off-thread but the
// accumulated zoom is only applied here, via ApplyPendingZoom.
type Editor struct {
	Diagram    *graph.Diagram
	Geometry   *canvas.Geometry
	Transform  *canvas.Transform
	Hit        *canvas.HitTester
	Zoomer     *canvas.Zoomer
	Controller *canvas.Controller
	Index      *canvas.SpatialIndex

	// OnRepaint fires after any visible change; OnGraphModified only
	// when persisted state changed. Both may be nil.
	OnRepaint       func()
	OnGraphModified func()
	// OnMessage surfaces policy violations. May be nil.
	OnMessage func(string)
	// OnZoomPending fires on the zoom coalescer's timer goroutine when a
	// coalesced wheel zoom is ready; hosts relay it to the event thread
	// and call ApplyPendingZoom there. May be nil.
	OnZoomPending func()
}

// New creates an empty editor with the given viewport size.
func New(viewportW, viewportH float64) *Editor {
	ed := &Editor{Diagram: graph.New()}
	ed.Geometry = canvas.NewGeometry(ed.Diagram)
	ed.Transform = canvas.NewTransform(viewportW, viewportH)
	ed.Hit = canvas.NewHitTester(ed.Geometry, ed.Transform)
	ed.Zoomer = canvas.NewZoomer(ed.Transform, func() {
		if ed.OnZoomPending != nil {
			ed.OnZoomPending()
		}
	})
	ed.Controller = canvas.NewController(ed.Diagram, ed.Geometry, ed.Transform, ed.Hit, ed.Zoomer)
	ed.Index = canvas.NewSpatialIndex(ed.Diagram)
	ed.Controller.Index = ed.Index

	ed.Controller.OnRepaint = func() { ed.repaint() }
	ed.Controller.OnGraphModified = func() {
		ed.Index.Rebuild()
		ed.modified()
	}
	ed.Controller.OnMessage = func(s string) {
		if ed.OnMessage != nil {
			ed.OnMessage(s)
		}
	}
	return ed
}

func (ed *Editor) repaint() {
	if ed.OnRepaint != nil {
		ed.OnRepaint()
	}
}

func (ed *Editor) modified() {
	if ed.OnGraphModified != nil {
		ed.OnGraphModified()
	}
	ed.repaint()
}

// AddNode creates a node at a world position and returns it.
func (ed *Editor) AddNode(label string, x, y float64) *graph.Node {
	n := graph.NewNode(label, x, y)
	ed.Diagram.AddNode(n)
	ed.Index.Update(n.ID)
	ed.modified()
	return n
}

// RemoveNode deletes a node and its incident edges.
func (ed *Editor) RemoveNode(id string) error {
	if ed.Diagram.Node(id) == nil {
		return fmt.Errorf("no node %q", id)
	}
	ed.Diagram.RemoveNode(id)
	ed.Index.Remove(id)
	ed.modified()
	return nil
}

// AddEdge creates an edge between two nodes, enforcing the graph
// restrictions and seeding control points for the requested curve kind.
func (ed *Editor) AddEdge(sourceID, targetID string, kind curve.Kind) (*graph.Edge, error) {
	if ed.Diagram.Node(sourceID) == nil {
		return nil, fmt.Errorf("no node %q", sourceID)
	}
	if ed.Diagram.Node(targetID) == nil {
		return nil, fmt.Errorf("no node %q", targetID)
	}
	e := graph.NewEdge(sourceID, targetID)
	if err := ed.Controller.Restrictions.Check(ed.Diagram, e); err != nil {
		if ed.OnMessage != nil {
			ed.OnMessage(err.Error())
		}
		return nil, err
	}
	ed.Diagram.AddEdge(e)
	ed.Geometry.SetEdgeKind(e, kind)
	ed.modified()
	return e, nil
}

// RemoveEdge deletes an edge.
func (ed *Editor) RemoveEdge(id string) error {
	if ed.Diagram.Edge(id) == nil {
		return fmt.Errorf("no edge %q", id)
	}
	ed.Diagram.RemoveEdge(id)
	ed.modified()
	return nil
}

// SetEdgeKind changes an edge's curve kind, applying the reseed policy.
func (ed *Editor) SetEdgeKind(id string, kind curve.Kind) error {
	e := ed.Diagram.Edge(id)
	if e == nil {
		return fmt.Errorf("no edge %q", id)
	}
	ed.Geometry.SetEdgeKind(e, kind)
	ed.modified()
	return nil
}

// MoveNode translates a node and propagates the delta to attached edges.
func (ed *Editor) MoveNode(id string, dx, dy float64) error {
	n := ed.Diagram.Node(id)
	if n == nil {
		return fmt.Errorf("no node %q", id)
	}
	n.X += dx
	n.Y += dy
	ed.Geometry.NodesMoved(map[string]v2.Vec{id: {X: dx, Y: dy}})
	ed.Index.Update(id)
	ed.modified()
	return nil
}

// RotateNode sets a node's rotation in degrees.
func (ed *Editor) RotateNode(id string, deg float64) error {
	n := ed.Diagram.Node(id)
	if n == nil {
		return fmt.Errorf("no node %q", id)
	}
	n.Rotation = deg
	ed.Geometry.NodeRotated(id)
	ed.Index.Update(id)
	ed.modified()
	return nil
}

// ZoomAt zooms by a factor keeping the anchor screen point fixed. View
// changes repaint without marking the graph modified.
func (ed *Editor) ZoomAt(factor float64, anchor v2.Vec) {
	ed.Transform.ZoomAtPoint(factor, anchor)
	ed.repaint()
}

// ApplyPendingZoom lands any coalesced wheel zoom and repaints. Hosts call
// it from the event thread after OnZoomPending fires.
func (ed *Editor) ApplyPendingZoom() {
	if ed.Zoomer.Flush() {
		ed.repaint()
	}
}

// Pan shifts the view by a screen-space delta.
func (ed *Editor) Pan(dx, dy float64) {
	ed.Transform.PanBy(v2.Vec{X: dx, Y: dy})
	ed.repaint()
}

// RotateView sets the world rotation in degrees.
func (ed *Editor) RotateView(deg float64) {
	ed.Transform.SetWorldRotation(deg)
	ed.repaint()
}

// EvalEdgeAt evaluates an edge's curve at parameter t in world space.
func (ed *Editor) EvalEdgeAt(id string, t float64) (v2.Vec, error) {
	e := ed.Diagram.Edge(id)
	if e == nil {
		return v2.Vec{}, fmt.Errorf("no edge %q", id)
	}
	return ed.Geometry.EvalEdge(e, t), nil
}

// HitAt describes what sits under a screen point: a node, an edge, or
// nothing.
func (ed *Editor) HitAt(screen v2.Vec) string {
	if n := ed.Hit.HitNode(screen); n != nil {
		return fmt.Sprintf("node %s (%s)", n.ID, n.Label)
	}
	if e := ed.Hit.HitAnyEdge(screen); e != nil {
		t, dist := ed.Hit.NearestT(e, screen)
		return fmt.Sprintf("edge %s at t=%.3f (%.1f world units away)", e.ID, t, dist)
	}
	return "nothing"
}
