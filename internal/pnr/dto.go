package pnr

import (
	"encoding/json"
	"fmt"

	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/pnrerr"
)

type tileDTO [2]uint8

func (t tileDTO) toTilePos() device.TilePos {
	return device.TilePos{X: t[0], Y: t[1]}
}

type ioPinSpotDTO struct {
	Tile  tileDTO `json:"tile"`
	Which uint8   `json:"which"`
}

type lut4DTO struct {
	Table       uint16  `json:"table"`
	ClockDomain *uint32 `json:"clock_domain,omitempty"`
}

type usedIODTO struct {
	Spot     ioPinSpotDTO `json:"spot"`
	IsOutput bool         `json:"is_output"`
}

// spotDTO is the tagged union shared by wire endpoints: Pin / Lut /
// GlobalNetIngress, discriminated by Kind.
type spotDTO struct {
	Kind       string       `json:"kind"`
	Pin        ioPinSpotDTO `json:"pin,omitempty"`
	Tile       tileDTO      `json:"tile,omitempty"`
	LutIndex   int          `json:"lut_index,omitempty"`
	InputIndex int          `json:"input_index,omitempty"`
}

type wireDTO struct {
	From spotDTO `json:"from"`
	To   spotDTO `json:"to"`
}

type problemDTO struct {
	Lut4s   []lut4DTO   `json:"lut4s"`
	UsedIOs []usedIODTO `json:"used_ios"`
	Wires   []wireDTO   `json:"wires"`
}

func (s spotDTO) toOutputSpot() (design.OutputSpot, error) {
	switch s.Kind {
	case "pin":
		return design.OutputSpot{
			Kind: design.OutputPin,
			Pin:  design.IoPinSpot{Tile: s.Pin.Tile.toTilePos(), Which: s.Pin.Which},
		}, nil
	case "lut":
		return design.OutputSpot{Kind: design.OutputLut, LutIndex: design.LutIndex(s.LutIndex)}, nil
	default:
		return design.OutputSpot{}, fmt.Errorf("wire driver has unsupported kind %q (want pin or lut)", s.Kind)
	}
}

func (s spotDTO) toInputSpot() (design.InputSpot, error) {
	switch s.Kind {
	case "pin":
		return design.InputSpot{
			Kind: design.InputPin,
			Pin:  design.IoPinSpot{Tile: s.Pin.Tile.toTilePos(), Which: s.Pin.Which},
		}, nil
	case "global_net_ingress":
		return design.InputSpot{Kind: design.InputGlobalNetIngress, IngressTile: s.Tile.toTilePos()}, nil
	case "lut":
		return design.InputSpot{
			Kind:          design.InputLut,
			LutIndex:      design.LutIndex(s.LutIndex),
			LutInputIndex: s.InputIndex,
		}, nil
	default:
		return design.InputSpot{}, fmt.Errorf("wire sink has unsupported kind %q (want pin, lut, or global_net_ingress)", s.Kind)
	}
}

// decodeProblem parses the JSON design-input document into a PnrProblem.
func decodeProblem(raw []byte) (*design.PnrProblem, error) {
	var dto problemDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, pnrerr.Parsef("decoding design input: %v", err)
	}

	problem := &design.PnrProblem{
		Lut4s:   make([]design.Lut4, len(dto.Lut4s)),
		UsedIOs: make([]design.UsedIO, len(dto.UsedIOs)),
		Wires:   make([]design.Wire, len(dto.Wires)),
	}

	for i, l := range dto.Lut4s {
		problem.Lut4s[i] = design.Lut4{Table: l.Table, ClockDomain: l.ClockDomain}
	}
	for i, io := range dto.UsedIOs {
		problem.UsedIOs[i] = design.UsedIO{
			Spot:     design.IoPinSpot{Tile: io.Spot.Tile.toTilePos(), Which: io.Spot.Which},
			IsOutput: io.IsOutput,
		}
	}
	for i, w := range dto.Wires {
		from, err := w.From.toOutputSpot()
		if err != nil {
			return nil, pnrerr.Parsef("wire %d: %v", i, err)
		}
		to, err := w.To.toInputSpot()
		if err != nil {
			return nil, pnrerr.Parsef("wire %d: %v", i, err)
		}
		problem.Wires[i] = design.Wire{From: from, To: to}
	}

	return problem, nil
}
