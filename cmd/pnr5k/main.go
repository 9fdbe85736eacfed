// Command pnr5k places, routes, and assembles a bitstream for a design
// against a chip database and an empty bitstream template.
package main

import (
	"fmt"
	"os"

	"github.com/xyproto/pnr5k/internal/config"
	"github.com/xyproto/pnr5k/internal/pnr"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pnr5k: %v\n", err)
		os.Exit(1)
	}

	result, err := pnr.BuildFiles(cfg.DesignPath, cfg.ChipDbPath, cfg.TemplatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pnr5k: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(cfg.OutputPath, []byte(result), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "pnr5k: writing output: %v\n", err)
		os.Exit(1)
	}
}
