package main

import (
	"os"

	"github.com/skeinview/skein/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
