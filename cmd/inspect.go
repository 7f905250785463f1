package cmd

import (
	"fmt"
	"strconv"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	"github.com/spf13/cobra"

	"github.com/skeinview/skein/pkg/editor"
	"github.com/skeinview/skein/pkg/scene"
)

func inspectCmd() *cobra.Command {
	var (
		edgeIndex int
		at        float64
		hitAt     string
	)

	cmd := &cobra.Command{
		Use:   "inspect <scene.toml>",
		Short: "Inspect a scene file",
		Long: "Load a TOML scene and query it: evaluate a curve point with --edge\n" +
			"and --at, or hit-test a screen position with --hit \"x,y\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := scene.Load(args[0], 800, 600)
			if err != nil {
				return err
			}

			if hitAt != "" {
				p, err := parsePoint(hitAt)
				if err != nil {
					return err
				}
				info.Printf("%s\n", ed.HitAt(p))
				return nil
			}

			if cmd.Flags().Changed("at") {
				edges := ed.Diagram.Edges()
				if edgeIndex < 0 || edgeIndex >= len(edges) {
					return fmt.Errorf("edge index %d out of range (have %d)", edgeIndex, len(edges))
				}
				e := edges[edgeIndex]
				p, err := ed.EvalEdgeAt(e.ID, at)
				if err != nil {
					return err
				}
				tan := ed.Geometry.EdgeTangent(e, at)
				fmt.Printf("edge %d (%s) at t=%.3f: (%.2f, %.2f) tangent (%.2f, %.2f)\n",
					edgeIndex, e.Kind, at, p.X, p.Y, tan.X, tan.Y)
				return nil
			}

			printSummary(ed)
			return nil
		},
	}

	cmd.Flags().IntVar(&edgeIndex, "edge", 0, "edge index for --at")
	cmd.Flags().Float64Var(&at, "at", 0.5, "curve parameter to evaluate")
	cmd.Flags().StringVar(&hitAt, "hit", "", "hit-test a screen point, formatted \"x,y\"")
	return cmd
}

func parsePoint(s string) (v2.Vec, error) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return v2.Vec{}, fmt.Errorf("point %q: want \"x,y\"", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("point %q: %w", s, err)
	}
	return v2.Vec{X: x, Y: y}, nil
}

func printSummary(ed *editor.Editor) {
	fmt.Printf("%d node(s), %d edge(s)\n", ed.Diagram.NodeCount(), ed.Diagram.EdgeCount())
	for _, n := range ed.Diagram.Nodes() {
		subtle.Printf("  node %-12s (%.1f, %.1f) %gx%g", n.Label, n.X, n.Y, n.Width, n.Height)
		if n.Rotation != 0 {
			subtle.Printf(" rot %g°", n.Rotation)
		}
		fmt.Println()
	}
	for i, e := range ed.Diagram.Edges() {
		sn := ed.Diagram.Node(e.SourceID)
		tn := ed.Diagram.Node(e.TargetID)
		if sn == nil || tn == nil {
			continue
		}
		subtle.Printf("  edge %d: %s -> %s [%s]", i, sn.Label, tn.Label, e.Kind)
		if len(e.ControlPoints) > 0 {
			subtle.Printf(" %d control point(s)", len(e.ControlPoints))
		}
		fmt.Println()
	}
	fmt.Printf("view: zoom %.2f, pan (%.1f, %.1f), rotation %g°\n",
		ed.Transform.Zoom(), ed.Transform.Pan().X, ed.Transform.Pan().Y, ed.Transform.Rotation())
}
