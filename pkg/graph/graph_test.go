package graph

import (
	"errors"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestAddAndLookup(t *testing.T) {
	d := New()

	a := NewNode("a", 0, 0)
	b := NewNode("b", 200, 0)
	d.AddNode(a)
	d.AddNode(b)

	if d.NodeCount() != 2 {
		t.Fatalf("node count = %d, want 2", d.NodeCount())
	}
	if got := d.Node(a.ID); got != a {
		t.Error("Node lookup returned wrong node")
	}
	if d.Node("missing") != nil {
		t.Error("Node should return nil for unknown id")
	}

	e := NewEdge(a.ID, b.ID)
	d.AddEdge(e)
	if d.EdgeCount() != 1 {
		t.Fatalf("edge count = %d, want 1", d.EdgeCount())
	}
	if got := d.Edge(e.ID); got != e {
		t.Error("Edge lookup returned wrong edge")
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	d := New()
	a := NewNode("a", 0, 0)
	b := NewNode("b", 200, 0)
	c := NewNode("c", 400, 0)
	d.AddNode(a)
	d.AddNode(b)
	d.AddNode(c)
	d.AddEdge(NewEdge(a.ID, b.ID))
	d.AddEdge(NewEdge(b.ID, c.ID))
	d.AddEdge(NewEdge(a.ID, c.ID))

	d.RemoveNode(b.ID)

	if d.NodeCount() != 2 {
		t.Errorf("node count after removal = %d, want 2", d.NodeCount())
	}
	if d.EdgeCount() != 1 {
		t.Errorf("edge count after removal = %d, want 1 (only a-c survives)", d.EdgeCount())
	}
	for _, e := range d.Edges() {
		if e.SourceID == b.ID || e.TargetID == b.ID {
			t.Error("edge incident to removed node survived")
		}
	}
}

func TestInsertionOrderStable(t *testing.T) {
	d := New()
	var want []string
	for i := 0; i < 5; i++ {
		n := NewNode("n", float64(i), 0)
		d.AddNode(n)
		want = append(want, n.ID)
	}
	for i, n := range d.Nodes() {
		if n.ID != want[i] {
			t.Fatalf("node order[%d] = %s, want %s", i, n.ID, want[i])
		}
	}
}

func TestArrowPositionDataClamp(t *testing.T) {
	e := NewEdge("a", "b")

	e.SetArrowPosition(1.5)
	if e.ArrowPosition != 1.0 {
		t.Errorf("arrow position = %f, want data-level clamp to 1.0", e.ArrowPosition)
	}
	e.SetArrowPosition(-0.2)
	if e.ArrowPosition != 0.0 {
		t.Errorf("arrow position = %f, want data-level clamp to 0.0", e.ArrowPosition)
	}
	e.SetArrowPosition(0.42)
	if e.ArrowPosition != 0.42 {
		t.Errorf("arrow position = %f, want 0.42", e.ArrowPosition)
	}
}

func TestConnectionPointOrdering(t *testing.T) {
	e := NewEdge("a", "b")

	// From must not pass To.
	e.SetFromConnection(0.9)
	if e.FromConnection > e.ToConnection {
		t.Errorf("from (%f) ended up after to (%f)", e.FromConnection, e.ToConnection)
	}
	e.SetToConnection(0.1)
	if e.ToConnection < e.FromConnection {
		t.Errorf("to (%f) ended up before from (%f)", e.ToConnection, e.FromConnection)
	}
}

func TestEdgeCopy(t *testing.T) {
	e := NewEdge("a", "b")
	e.ControlPoints = append(e.ControlPoints, v3.Vec{X: 10, Y: 20, Z: 5})
	e.SetCustomEndpoint(SourceSide, v2.Vec{X: 1, Y: 2})

	dup := e.Copy()
	if dup.ID == e.ID {
		t.Error("copy must get a fresh id")
	}
	dup.ControlPoints[0].X = 99
	if e.ControlPoints[0].X == 99 {
		t.Error("copy shares control-point storage with original")
	}
	dup.SetCustomEndpoint(SourceSide, v2.Vec{X: 7, Y: 7})
	if p, _ := e.CustomEndpoint(SourceSide); p.X == 7 {
		t.Error("copy shares custom-endpoint storage with original")
	}
	// z is carried verbatim.
	if dup.ControlPoints[0].Z != 5 {
		t.Errorf("z component = %f, want 5", dup.ControlPoints[0].Z)
	}
}

func TestNodeContainsPointWithRotation(t *testing.T) {
	n := NewNode("n", 100, 100)
	n.Width, n.Height = 80, 40

	if !n.ContainsPoint(v2.Vec{X: 135, Y: 115}) {
		t.Error("point inside unrotated node not detected")
	}
	if n.ContainsPoint(v2.Vec{X: 135, Y: 125}) {
		t.Error("point below unrotated node wrongly detected")
	}

	// Rotate 90°: the wide axis is now vertical.
	n.Rotation = 90
	if !n.ContainsPoint(v2.Vec{X: 115, Y: 135}) {
		t.Error("point inside rotated node not detected")
	}
	if n.ContainsPoint(v2.Vec{X: 135, Y: 115}) {
		t.Error("point outside rotated node wrongly detected")
	}
}

func TestRestrictions(t *testing.T) {
	d := New()
	a := NewNode("a", 0, 0)
	b := NewNode("b", 200, 0)
	d.AddNode(a)
	d.AddNode(b)
	d.AddEdge(NewEdge(a.ID, b.ID))

	t.Run("self loops", func(t *testing.T) {
		r := Restrictions{AllowSelfLoops: false, AllowMultiEdges: true}
		if err := r.Check(d, NewEdge(a.ID, a.ID)); err == nil {
			t.Error("self-loop should be rejected")
		}
		r.AllowSelfLoops = true
		if err := r.Check(d, NewEdge(a.ID, a.ID)); err != nil {
			t.Errorf("self-loop should be allowed: %v", err)
		}
	})

	t.Run("multi edges", func(t *testing.T) {
		r := Restrictions{AllowSelfLoops: true, AllowMultiEdges: false}
		if err := r.Check(d, NewEdge(b.ID, a.ID)); err == nil {
			t.Error("parallel edge (either direction) should be rejected")
		}
	})

	t.Run("direction", func(t *testing.T) {
		r := DefaultRestrictions()
		r.Direction = UndirectedOnly
		if err := r.Check(d, NewEdge(a.ID, b.ID)); err == nil {
			t.Error("directed edge should be rejected in undirected-only graph")
		}
		undirected := NewEdge(a.ID, b.ID)
		undirected.Directed = false
		if err := r.Check(d, undirected); err != nil {
			t.Errorf("undirected edge should pass: %v", err)
		}
	})

	t.Run("violation is user-facing", func(t *testing.T) {
		r := Restrictions{}
		err := r.Check(d, NewEdge(a.ID, a.ID))
		var pv *PolicyViolation
		if !errors.As(err, &pv) {
			t.Fatalf("error should be a *PolicyViolation, got %T", err)
		}
		if pv.Message == "" {
			t.Error("violation message should be non-empty")
		}
	})
}
