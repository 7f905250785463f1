package engine

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/editor"
	"github.com/skeinview/skein/pkg/graph"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms skein script source before passing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     so keywords need no global symbol registration.
//  2. Kebab-case to underscore: add-control-point -> add_control_point,
//     since zygomys reads hyphens as subtraction.
//  3. ; line comments become // comments.
//
// All three respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Hyphen between identifier characters is part of a kebab name,
		// not a minus.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpNodeRef passes a node identity between builtins.
type sexpNodeRef struct {
	id    string
	label string
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.label != "" {
		return fmt.Sprintf("(noderef %q)", n.label)
	}
	return fmt.Sprintf("(noderef %s)", n.id)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpEdgeRef passes an edge identity between builtins.
type sexpEdgeRef struct {
	id string
}

func (e *sexpEdgeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(edgeref %s)", e.id)
}
func (e *sexpEdgeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a 2D point.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %.1f %.1f)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts both preprocessed keywords (__kw_bezier) and
// plain strings ("bezier").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toVec2(s zygo.Sexp) (v2.Vec, error) {
	if v, ok := s.(*sexpVec2); ok {
		return v.vec, nil
	}
	return v2.Vec{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

func toKind(s zygo.Sexp) (curve.Kind, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected curve kind keyword: %w", err)
	}
	// Keyword bodies keep their hyphens, so :cubic-spline arrives as
	// "cubic-spline" and needs normalizing to the persisted tag.
	return curve.ParseKind(strings.ReplaceAll(name, "-", "_"))
}

// resolveNode accepts a noderef or a node label.
func resolveNode(ed *editor.Editor, s zygo.Sexp) (*graph.Node, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		if n := ed.Diagram.Node(ref.id); n != nil {
			return n, nil
		}
		return nil, fmt.Errorf("node %s no longer exists", ref.id)
	}
	label, err := toString(s)
	if err != nil {
		return nil, fmt.Errorf("expected node reference or label: %w", err)
	}
	for _, n := range ed.Diagram.Nodes() {
		if n.Label == label {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no node labeled %q", label)
}

func resolveEdge(ed *editor.Editor, s zygo.Sexp) (*graph.Edge, error) {
	ref, ok := s.(*sexpEdgeRef)
	if !ok {
		return nil, fmt.Errorf("expected edge reference, got %T (%s)", s, s.SexpString(nil))
	}
	e := ed.Diagram.Edge(ref.id)
	if e == nil {
		return nil, fmt.Errorf("edge %s no longer exists", ref.id)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the diagram DSL into a zygomys environment.
// The builtins operate on the provided editor, populating its diagram
// during evaluation. Source must be preprocessed first so :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, ed *editor.Editor) {

	// (vec2 100 200)
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	// (node "a" :at (vec2 100 100) :size (vec2 120 60) :rotation 15)
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("node requires a label argument")
		}
		label, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: label: %w", err)
		}

		at := v2.Vec{}
		if v, ok := pa.kw["at"]; ok {
			if at, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("node: at: %w", err)
			}
		}
		n := ed.AddNode(label, at.X, at.Y)
		if v, ok := pa.kw["size"]; ok {
			size, err := toVec2(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: size: %w", err)
			}
			n.Width, n.Height = size.X, size.Y
			ed.Index.Update(n.ID)
		}
		if v, ok := pa.kw["rotation"]; ok {
			deg, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("node: rotation: %w", err)
			}
			if err := ed.RotateNode(n.ID, deg); err != nil {
				return zygo.SexpNull, fmt.Errorf("node: rotation: %w", err)
			}
		}
		return &sexpNodeRef{id: n.ID, label: label}, nil
	})

	// (edge "a" "b" :kind :bezier :directed false)
	env.AddFunction("edge", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("edge requires source and target arguments")
		}
		src, err := resolveNode(ed, pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: source: %w", err)
		}
		dst, err := resolveNode(ed, pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: target: %w", err)
		}

		kind := curve.Straight
		if v, ok := pa.kw["kind"]; ok {
			if kind, err = toKind(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("edge: kind: %w", err)
			}
		}
		e, err := ed.AddEdge(src.ID, dst.ID, kind)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		if v, ok := pa.kw["directed"]; ok {
			if e.Directed, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("edge: directed: %w", err)
			}
		}
		return &sexpEdgeRef{id: e.ID}, nil
	})

	// (set-curve edgeref :kind :nurbs)
	env.AddFunction("set_curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("set-curve requires an edge reference")
		}
		e, err := resolveEdge(ed, pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-curve: %w", err)
		}
		v, ok := pa.kw["kind"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("set-curve requires :kind")
		}
		kind, err := toKind(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-curve: kind: %w", err)
		}
		if err := ed.SetEdgeKind(e.ID, kind); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-curve: %w", err)
		}
		return pa.positional[0], nil
	})

	// (add-control-point edgeref 300 50)
	env.AddFunction("add_control_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 3 {
			return zygo.SexpNull, fmt.Errorf("add-control-point requires an edge reference, x, and y")
		}
		e, err := resolveEdge(ed, pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-control-point: %w", err)
		}
		x, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-control-point: x: %w", err)
		}
		y, err := toFloat64(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("add-control-point: y: %w", err)
		}
		ed.Geometry.InsertControlPoint(e, len(e.ControlPoints), v2.Vec{X: x, Y: y})
		return pa.positional[0], nil
	})

	// (move-node "a" 40 -20)
	env.AddFunction("move_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 3 {
			return zygo.SexpNull, fmt.Errorf("move-node requires a node, dx, and dy")
		}
		n, err := resolveNode(ed, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		dx, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: dx: %w", err)
		}
		dy, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: dy: %w", err)
		}
		if err := ed.MoveNode(n.ID, dx, dy); err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (rotate-node "a" 45)
	env.AddFunction("rotate_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("rotate-node requires a node and an angle")
		}
		n, err := resolveNode(ed, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-node: %w", err)
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-node: angle: %w", err)
		}
		if err := ed.RotateNode(n.ID, deg); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-node: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// (zoom 1.5 :at (vec2 400 300))
	env.AddFunction("zoom", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("zoom requires a factor")
		}
		factor, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("zoom: factor: %w", err)
		}
		anchor := ed.Transform.ViewportCenter()
		if v, ok := pa.kw["at"]; ok {
			if anchor, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("zoom: at: %w", err)
			}
		}
		ed.ZoomAt(factor, anchor)
		return zygo.SexpNull, nil
	})

	// (pan 20 -10)
	env.AddFunction("pan", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("pan requires dx and dy")
		}
		dx, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pan: dx: %w", err)
		}
		dy, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pan: dy: %w", err)
		}
		ed.Pan(dx, dy)
		return zygo.SexpNull, nil
	})

	// (rotate-view 30)
	env.AddFunction("rotate_view", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate-view requires an angle")
		}
		deg, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate-view: angle: %w", err)
		}
		ed.RotateView(deg)
		return zygo.SexpNull, nil
	})

	// (eval-at edgeref 0.5) -> vec2
	env.AddFunction("eval_at", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("eval-at requires an edge reference and t")
		}
		e, err := resolveEdge(ed, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("eval-at: %w", err)
		}
		t, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("eval-at: t: %w", err)
		}
		p, err := ed.EvalEdgeAt(e.ID, t)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("eval-at: %w", err)
		}
		return &sexpVec2{vec: p}, nil
	})

	// (hit-test 400 300) -> description string
	env.AddFunction("hit_test", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("hit-test requires x and y")
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hit-test: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("hit-test: y: %w", err)
		}
		return &zygo.SexpStr{S: ed.HitAt(v2.Vec{X: x, Y: y})}, nil
	})

	// (nodes) -> array of node references
	env.AddFunction("nodes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var out []zygo.Sexp
		for _, n := range ed.Diagram.Nodes() {
			out = append(out, &sexpNodeRef{id: n.ID, label: n.Label})
		}
		return &zygo.SexpArray{Val: out, Env: env}, nil
	})

	// (edges) -> array of edge references
	env.AddFunction("edges", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var out []zygo.Sexp
		for _, e := range ed.Diagram.Edges() {
			out = append(out, &sexpEdgeRef{id: e.ID})
		}
		return &zygo.SexpArray{Val: out, Env: env}, nil
	})

	// (restrict :self-loops false :multi-edges false :direction :directed)
	env.AddFunction("restrict", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		r := ed.Controller.Restrictions

		if v, ok := pa.kw["self-loops"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("restrict: self-loops: %w", err)
			}
			r.AllowSelfLoops = b
		}
		if v, ok := pa.kw["multi-edges"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("restrict: multi-edges: %w", err)
			}
			r.AllowMultiEdges = b
		}
		if v, ok := pa.kw["direction"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("restrict: direction: %w", err)
			}
			switch s {
			case "any":
				r.Direction = graph.AnyDirection
			case "directed":
				r.Direction = graph.DirectedOnly
			case "undirected":
				r.Direction = graph.UndirectedOnly
			default:
				return zygo.SexpNull, fmt.Errorf("restrict: direction: unknown %q", s)
			}
		}
		ed.Controller.Restrictions = r
		return zygo.SexpNull, nil
	})
}
