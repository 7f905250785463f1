package engine

import (
	"strings"
	"testing"

	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/editor"
)

func TestEvaluateEmptySource(t *testing.T) {
	eng := New()
	ed, evalErrs, err := eng.Evaluate("   \n\t")
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if ed.Diagram.NodeCount() != 0 || ed.Diagram.EdgeCount() != 0 {
		t.Error("empty source must produce an empty diagram")
	}
}

func TestEvaluateBuildsDiagram(t *testing.T) {
	src := `
; a small two-node diagram
(node "a" :at (vec2 100 100))
(node "b" :at (vec2 500 100))
(add-control-point (edge "a" "b" :kind :bezier) 300 50)
(move-node "a" 40 0)
(zoom 2.0 :at (vec2 400 300))
(pan 10 5)
(rotate-view 30)
`
	eng := New()
	ed, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) != 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}

	if ed.Diagram.NodeCount() != 2 || ed.Diagram.EdgeCount() != 1 {
		t.Fatalf("diagram has %d nodes / %d edges, want 2/1",
			ed.Diagram.NodeCount(), ed.Diagram.EdgeCount())
	}
	e := ed.Diagram.Edges()[0]
	if e.Kind != curve.Bezier {
		t.Errorf("edge kind = %v, want bezier", e.Kind)
	}
	if len(e.ControlPoints) != 1 {
		t.Fatalf("control points = %d, want 1", len(e.ControlPoints))
	}
	// move-node shifts the attached control point by half the delta.
	if e.ControlPoints[0].X != 320 {
		t.Errorf("control point x = %g, want 320", e.ControlPoints[0].X)
	}
	if ed.Transform.Zoom() != 2.0 {
		t.Errorf("zoom = %g, want 2", ed.Transform.Zoom())
	}
	if ed.Transform.Rotation() != 30 {
		t.Errorf("rotation = %g, want 30", ed.Transform.Rotation())
	}
}

func TestEvaluateCurveKindKeywords(t *testing.T) {
	src := `
(node "a" :at (vec2 0 0))
(node "b" :at (vec2 400 0))
(set-curve (edge "a" "b") :kind :cubic-spline)
`
	eng := New()
	ed, evalErrs, err := eng.Evaluate(src)
	if err != nil || len(evalErrs) != 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	if got := ed.Diagram.Edges()[0].Kind; got != curve.CubicSpline {
		t.Errorf("kind = %v, want cubic_spline", got)
	}
}

func TestEvaluateParseError(t *testing.T) {
	eng := New()
	ed, evalErrs, err := eng.Evaluate(`(node "a"`)
	if err != nil {
		t.Fatalf("parse failure must not be fatal: %v", err)
	}
	if ed != nil {
		t.Error("editor must be nil on parse failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
}

func TestEvaluateRuntimeError(t *testing.T) {
	eng := New()
	ed, evalErrs, err := eng.Evaluate(`(edge "missing" "also-missing")`)
	if err != nil {
		t.Fatalf("runtime failure must not be fatal: %v", err)
	}
	if ed != nil {
		t.Error("editor must be nil on runtime failure")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
	if !strings.Contains(evalErrs[0].Message, "missing") {
		t.Errorf("error message %q should name the unknown node", evalErrs[0].Message)
	}
}

func TestEvaluateWithBaseEditor(t *testing.T) {
	base := editor.New(800, 600)
	base.AddNode("a", 100, 100)

	src := `
(node "b" :at (vec2 500 100))
(edge "a" "b" :kind :curved)
`
	eng := New()
	ed, evalErrs, err := eng.EvaluateWith(base, src)
	if err != nil || len(evalErrs) != 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	if ed != base {
		t.Fatal("evaluation must run against the supplied editor")
	}
	if ed.Diagram.NodeCount() != 2 || ed.Diagram.EdgeCount() != 1 {
		t.Fatalf("nodes=%d edges=%d, want 2/1", ed.Diagram.NodeCount(), ed.Diagram.EdgeCount())
	}
}

func TestListingBuiltins(t *testing.T) {
	src := `
(node "a" :at (vec2 100 100))
(node "b" :at (vec2 500 100))
(edge "a" "b")
(move-node (aget (nodes) 1) 0 40)
(set-curve (aget (edges) 0) :kind :nurbs)
`
	eng := New()
	ed, evalErrs, err := eng.Evaluate(src)
	if err != nil || len(evalErrs) != 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	b := ed.Diagram.Nodes()[1]
	if b.Y != 140 {
		t.Errorf("node b y = %g, want 140", b.Y)
	}
	if got := ed.Diagram.Edges()[0].Kind; got != curve.NURBS {
		t.Errorf("kind = %v, want nurbs", got)
	}
}

func TestRestrictBuiltin(t *testing.T) {
	src := `
(restrict :self-loops false)
(node "a" :at (vec2 0 0))
(edge "a" "a")
`
	eng := New()
	ed, evalErrs, err := eng.Evaluate(src)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if ed != nil || len(evalErrs) == 0 {
		t.Error("restricted self-loop must fail evaluation")
	}
}

func TestPreprocessSource(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`:kind`, `"__kw_kind"`},
		{`(set-curve e :kind :nurbs)`, `(set_curve e "__kw_kind" "__kw_nurbs")`},
		{"; note\n(pan 1 2)", "// note\n(pan 1 2)"},
		{`"a-b :x"`, `"a-b :x"`},
		{`(- 5 3)`, `(- 5 3)`},
		{`(x := 3)`, `(x := 3)`},
		{`:cubic-spline`, `"__kw_cubic-spline"`},
	}
	for _, c := range cases {
		if got := preprocessSource(c.in); got != c.want {
			t.Errorf("preprocess(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestEvalAtBuiltin(t *testing.T) {
	src := `
(node "a" :at (vec2 100 100))
(node "b" :at (vec2 500 100))
(eval-at (edge "a" "b") 0.5)
`
	eng := New()
	ed, evalErrs, err := eng.Evaluate(src)
	if err != nil || len(evalErrs) != 0 {
		t.Fatalf("err=%v evalErrs=%v", err, evalErrs)
	}
	// Sanity check via the editor as well.
	p, err := ed.EvalEdgeAt(ed.Diagram.Edges()[0].ID, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 300 || p.Y != 100 {
		t.Errorf("midpoint = %v, want (300,100)", p)
	}
}
