// Package cmd implements the skein command line interface.
package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	subtle = color.New(color.FgHiBlack)
	info   = color.New(color.FgCyan)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
)

var rootCmd = &cobra.Command{
	Use:   "skein",
	Short: "skein — diagram curve geometry toolbox",
	Long: "skein evaluates diagram scripts and inspects scene files:\n" +
		"parametric edge curves, hit-testing, and view transforms without a GUI.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("skein {{ .Version }}\n")
	rootCmd.AddCommand(
		evalCmd(),
		inspectCmd(),
	)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		bad.Printf("skein: %v\n", err)
		return err
	}
	return nil
}
