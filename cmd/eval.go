package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skeinview/skein/pkg/editor"
	"github.com/skeinview/skein/pkg/engine"
	"github.com/skeinview/skein/pkg/scene"
)

func evalCmd() *cobra.Command {
	var (
		savePath  string
		scenePath string
	)

	cmd := &cobra.Command{
		Use:   "eval <script>",
		Short: "Evaluate a diagram script",
		Long: "Evaluate a Lisp diagram script in a sandbox and print the resulting\n" +
			"diagram. Scripts build nodes and edges, set curve kinds, and drive the\n" +
			"view (zoom, pan, rotate). With --scene the script extends a loaded\n" +
			"scene instead of starting empty.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var base *editor.Editor
			if scenePath != "" {
				if base, err = scene.Load(scenePath, 800, 600); err != nil {
					return err
				}
			}

			ed, evalErrs, err := engine.New().EvaluateWith(base, string(src))
			if err != nil {
				return err
			}
			if len(evalErrs) > 0 {
				for _, e := range evalErrs {
					bad.Printf("  %s\n", e.Error())
				}
				return fmt.Errorf("%d error(s) in %s", len(evalErrs), args[0])
			}

			good.Printf("✓ %s\n", args[0])
			printSummary(ed)

			if savePath != "" {
				if err := scene.Save(savePath, ed); err != nil {
					return err
				}
				info.Printf("scene written to %s\n", savePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&savePath, "save", "o", "", "write the resulting scene to a TOML file")
	cmd.Flags().StringVar(&scenePath, "scene", "", "load a TOML scene before running the script")
	return cmd
}
