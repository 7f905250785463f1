// Package scene loads and saves diagram documents as TOML.
package scene

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/skeinview/skein/pkg/curve"
	"github.com/skeinview/skein/pkg/editor"
	"github.com/skeinview/skein/pkg/graph"
)

// Scene is the on-disk document shape.
type Scene struct {
	View  View   `toml:"view"`
	Nodes []Node `toml:"node"`
	Edges []Edge `toml:"edge"`
}

// View persists the camera.
type View struct {
	Zoom     float64 `toml:"zoom"`
	PanX     float64 `toml:"pan_x"`
	PanY     float64 `toml:"pan_y"`
	Rotation float64 `toml:"rotation"`
}

// Node is a persisted node. Width and height default when zero.
type Node struct {
	Label    string  `toml:"label"`
	X        float64 `toml:"x"`
	Y        float64 `toml:"y"`
	Width    float64 `toml:"width,omitempty"`
	Height   float64 `toml:"height,omitempty"`
	Rotation float64 `toml:"rotation,omitempty"`
}

// Edge is a persisted edge. Source and target reference node labels, and
// control points are [x, y, z] triples.
type Edge struct {
	Source        string      `toml:"source"`
	Target        string      `toml:"target"`
	Kind          string      `toml:"kind,omitempty"`
	Directed      *bool       `toml:"directed,omitempty"`
	ControlPoints [][]float64 `toml:"control_points,omitempty"`
	// Pointer so an explicit 0.0 survives the round trip; absent means
	// keep the model default.
	ArrowPosition *float64 `toml:"arrow_position,omitempty"`
}

// Load reads a scene file and builds an editor from it.
func Load(path string, viewportW, viewportH float64) (*editor.Editor, error) {
	var s Scene
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return Build(&s, viewportW, viewportH)
}

// Build constructs an editor from a decoded scene.
func Build(s *Scene, viewportW, viewportH float64) (*editor.Editor, error) {
	ed := editor.New(viewportW, viewportH)

	byLabel := make(map[string]*graph.Node, len(s.Nodes))
	for _, sn := range s.Nodes {
		if sn.Label == "" {
			return nil, fmt.Errorf("scene: node without a label")
		}
		if _, dup := byLabel[sn.Label]; dup {
			return nil, fmt.Errorf("scene: duplicate node label %q", sn.Label)
		}
		n := ed.AddNode(sn.Label, sn.X, sn.Y)
		if sn.Width > 0 {
			n.Width = sn.Width
		}
		if sn.Height > 0 {
			n.Height = sn.Height
		}
		n.Rotation = sn.Rotation
		ed.Index.Update(n.ID)
		byLabel[sn.Label] = n
	}

	for i, se := range s.Edges {
		src, ok := byLabel[se.Source]
		if !ok {
			return nil, fmt.Errorf("scene: edge %d: unknown source %q", i, se.Source)
		}
		dst, ok := byLabel[se.Target]
		if !ok {
			return nil, fmt.Errorf("scene: edge %d: unknown target %q", i, se.Target)
		}

		kind := curve.Straight
		if se.Kind != "" {
			var err error
			if kind, err = curve.ParseKind(se.Kind); err != nil {
				return nil, fmt.Errorf("scene: edge %d: %w", i, err)
			}
		}
		e, err := ed.AddEdge(src.ID, dst.ID, kind)
		if err != nil {
			return nil, fmt.Errorf("scene: edge %d: %w", i, err)
		}
		if se.Directed != nil {
			e.Directed = *se.Directed
		}
		if len(se.ControlPoints) > 0 {
			e.ControlPoints = e.ControlPoints[:0]
			for j, cp := range se.ControlPoints {
				if len(cp) < 2 {
					return nil, fmt.Errorf("scene: edge %d: control point %d needs at least x and y", i, j)
				}
				p := v3.Vec{X: cp[0], Y: cp[1]}
				if len(cp) > 2 {
					p.Z = cp[2]
				}
				e.ControlPoints = append(e.ControlPoints, p)
			}
			e.CustomPosition = true
		}
		if se.ArrowPosition != nil {
			e.SetArrowPosition(*se.ArrowPosition)
		}
	}

	if s.View.Zoom > 0 {
		ed.Transform.SetZoom(s.View.Zoom)
	}
	ed.Transform.SetPan(v2.Vec{X: s.View.PanX, Y: s.View.PanY})
	ed.Transform.SetWorldRotation(s.View.Rotation)
	return ed, nil
}

// Snapshot captures an editor's state as a scene document.
func Snapshot(ed *editor.Editor) *Scene {
	s := &Scene{
		View: View{
			Zoom:     ed.Transform.Zoom(),
			PanX:     ed.Transform.Pan().X,
			PanY:     ed.Transform.Pan().Y,
			Rotation: ed.Transform.Rotation(),
		},
	}
	for _, n := range ed.Diagram.Nodes() {
		s.Nodes = append(s.Nodes, Node{
			Label:    n.Label,
			X:        n.X,
			Y:        n.Y,
			Width:    n.Width,
			Height:   n.Height,
			Rotation: n.Rotation,
		})
	}
	for _, e := range ed.Diagram.Edges() {
		sn := ed.Diagram.Node(e.SourceID)
		tn := ed.Diagram.Node(e.TargetID)
		if sn == nil || tn == nil {
			continue
		}
		directed := e.Directed
		arrow := e.ArrowPosition
		se := Edge{
			Source:        sn.Label,
			Target:        tn.Label,
			Kind:          e.Kind.String(),
			Directed:      &directed,
			ArrowPosition: &arrow,
		}
		for _, cp := range e.ControlPoints {
			se.ControlPoints = append(se.ControlPoints, []float64{cp.X, cp.Y, cp.Z})
		}
		s.Edges = append(s.Edges, se)
	}
	return s
}

// Save writes an editor's state to a scene file.
func Save(path string, ed *editor.Editor) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(Snapshot(ed)); err != nil {
		return fmt.Errorf("scene %s: %w", path, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
