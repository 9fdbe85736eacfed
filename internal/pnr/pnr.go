// Package pnr composes the placer, router, and assembler into the full
// place-and-route pipeline, and provides the pure string-to-string entry
// point the CLI calls.
package pnr

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xyproto/pnr5k/internal/assemble"
	"github.com/xyproto/pnr5k/internal/bitstream"
	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/placer"
	"github.com/xyproto/pnr5k/internal/router"
)

// PlaceAndRoute runs the placer then the router, producing a complete
// PnrSolution for problem against db.
func PlaceAndRoute(problem *design.PnrProblem, db *device.ChipDb) (*design.PnrSolution, error) {
	placements, err := placer.Place(problem, db)
	if err != nil {
		return nil, err
	}

	arcs, err := router.Route(problem, db, placements)
	if err != nil {
		return nil, err
	}

	return &design.PnrSolution{LutPlacements: placements, ConfiguredArcs: arcs}, nil
}

// Build runs the entire pipeline end to end: parse the chip database,
// decode the JSON design input, place and route, parse the bitstream
// template, assemble, and serialize. It is a pure function of its three
// string inputs.
func Build(problemJSON, chipdbText, templateText string) (string, error) {
	db, err := device.Parse(strings.NewReader(chipdbText))
	if err != nil {
		return "", err
	}

	problem, err := decodeProblem([]byte(problemJSON))
	if err != nil {
		return "", err
	}

	solution, err := PlaceAndRoute(problem, db)
	if err != nil {
		return "", err
	}

	template, err := bitstream.Parse(strings.NewReader(templateText))
	if err != nil {
		return "", err
	}

	result, err := assemble.Assemble(template, db, problem, solution)
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"luts": len(problem.Lut4s),
		"ios":  len(problem.UsedIOs),
		"nets": len(db.Nets),
	}).Debug("pnr: build complete")

	return bitstream.Serialize(result), nil
}

// BuildFiles is a thin convenience wrapper over Build for CLI use: it
// reads the three inputs from disk and returns the serialized bitstream.
func BuildFiles(designPath, chipdbPath, templatePath string) (string, error) {
	designBytes, err := os.ReadFile(designPath)
	if err != nil {
		return "", err
	}
	chipdbBytes, err := os.ReadFile(chipdbPath)
	if err != nil {
		return "", err
	}
	templateBytes, err := os.ReadFile(templatePath)
	if err != nil {
		return "", err
	}
	return Build(string(designBytes), string(chipdbBytes), string(templateBytes))
}
