// Package design holds the place-and-route input (PnrProblem) and output
// (PnrSolution) types. PnrProblem is read-only once built; PnrSolution is
// built once by the placer and router and never mutated afterward.
package design

import (
	"fmt"
	"strconv"

	"github.com/xyproto/pnr5k/internal/device"
)

// LutIndex indexes into a PnrProblem's Lut4s slice.
type LutIndex int

// Lut4 is a single 4-input lookup table, optionally registered on a global
// clock domain.
type Lut4 struct {
	Table       uint16
	ClockDomain *uint32 // nil: combinational, no DFF enable bit set.
}

// IoPinSpot names one physical IO pad: an IO tile plus which of its two
// pads (0 or 1).
type IoPinSpot struct {
	Tile  device.TilePos
	Which uint8
}

// OutputSpotKind tags which variant of OutputSpot is populated.
type OutputSpotKind int

const (
	OutputPin OutputSpotKind = iota
	OutputLut
)

// OutputSpot is a wire's driver: either an IO pad used as an input pin, or
// a LUT's output.
type OutputSpot struct {
	Kind     OutputSpotKind
	Pin      IoPinSpot
	LutIndex LutIndex
}

func (o OutputSpot) String() string {
	switch o.Kind {
	case OutputPin:
		return "Pin(" + pinString(o.Pin) + ")"
	default:
		return "Lut(#" + strconv.Itoa(int(o.LutIndex)) + ")"
	}
}

// InputSpotKind tags which variant of InputSpot is populated.
type InputSpotKind int

const (
	InputPin InputSpotKind = iota
	InputGlobalNetIngress
	InputLut
)

// InputSpot is a wire's sink: an IO pad used as an output pin, a global
// clock network ingress point at some tile, or one input of a LUT.
type InputSpot struct {
	Kind          InputSpotKind
	Pin           IoPinSpot
	IngressTile   device.TilePos
	LutIndex      LutIndex
	LutInputIndex int
}

func (i InputSpot) String() string {
	switch i.Kind {
	case InputPin:
		return "Pin(" + pinString(i.Pin) + ")"
	case InputGlobalNetIngress:
		return "GlobalNetIngress(" + i.IngressTile.String() + ")"
	default:
		return fmt.Sprintf("Lut(#%d, in %d)", i.LutIndex, i.LutInputIndex)
	}
}

func pinString(p IoPinSpot) string {
	return fmt.Sprintf("%s/%d", p.Tile, p.Which)
}

// Wire connects one driver to one sink.
type Wire struct {
	From OutputSpot
	To   InputSpot
}

// UsedIO is one used IO pad and the direction it is configured for.
type UsedIO struct {
	Spot     IoPinSpot
	IsOutput bool
}

// PnrProblem is the immutable place-and-route input.
type PnrProblem struct {
	Lut4s   []Lut4
	UsedIOs []UsedIO
	Wires   []Wire
}

// Placement is where one LUT landed: a logic tile and a slot number in
// 0..8.
type Placement struct {
	Tile device.TilePos
	Slot uint8
}

// PnrSolution is the placer+router output.
type PnrSolution struct {
	LutPlacements  []Placement
	ConfiguredArcs []device.ConfiguredArc
}
