// Package config parses the CLI's flags into the small knob set the core
// pipeline actually reads.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// Config is the CLI's parsed configuration.
type Config struct {
	ChipDbPath   string
	TemplatePath string
	DesignPath   string
	OutputPath   string
	Verbose      bool
}

// Parse parses args (normally os.Args[1:]) into a Config.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("pnr5k", flag.ContinueOnError)

	chipdb := fs.String("chipdb", "", "path to the chip database file")
	template := fs.String("template", "", "path to the empty bitstream template")
	output := fs.String("o", "", "output bitstream path")
	outputLong := fs.String("output", "", "output bitstream path")
	verbose := fs.Bool("v", false, "verbose (debug) logging")
	verboseLong := fs.Bool("verbose", false, "verbose (debug) logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ChipDbPath:   *chipdb,
		TemplatePath: *template,
		Verbose:      *verbose || *verboseLong,
	}

	cfg.OutputPath = *output
	if *outputLong != "" {
		cfg.OutputPath = *outputLong
	}

	switch fs.NArg() {
	case 1:
		cfg.DesignPath = fs.Arg(0)
	case 0:
		return Config{}, fmt.Errorf("missing design input file")
	default:
		return Config{}, fmt.Errorf("unexpected extra arguments: %v", fs.Args()[1:])
	}

	if cfg.ChipDbPath == "" {
		return Config{}, fmt.Errorf("-chipdb is required")
	}
	if cfg.TemplatePath == "" {
		return Config{}, fmt.Errorf("-template is required")
	}
	if cfg.OutputPath == "" {
		return Config{}, fmt.Errorf("-o/-output is required")
	}

	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetOutput(os.Stderr)

	return cfg, nil
}
