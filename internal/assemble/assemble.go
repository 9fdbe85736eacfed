// Package assemble flips the bits in a parsed bitstream template that
// correspond to a solved PnrSolution: LUT truth tables, DFF enables,
// clock-network arcs, routed arcs, and IO-pad configuration.
package assemble

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/xyproto/pnr5k/internal/bitstream"
	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// lutBitLayout is the fixed Gray-coded (row-offset, col) table for LUT4
// truth-table bit i, device-defined and not derivable from anything else
// in the chip database.
var lutBitLayout = [16]struct{ rowOffset, col int }{
	{0, 40}, {1, 40}, {1, 41}, {0, 41},
	{0, 42}, {1, 42}, {1, 43}, {0, 43},
	{0, 39}, {1, 39}, {1, 38}, {0, 38},
	{0, 37}, {1, 37}, {1, 36}, {0, 36},
}

const dffEnableCol = 45

// ioPadBits names the literal "B<r>[<c>]" descriptors the assembler
// synthesizes directly for IO pad configuration. Carried forward exactly
// as given (see SPEC_FULL.md §9 (c)).
var ioPadBits = struct {
	ioCtrl, pinType0, ren, pinType3, pinType4, ie [2]string
}{
	ioCtrl:   [2]string{"B6[15]", "B12[15]"},
	pinType0: [2]string{"B3[17]", "B13[17]"},
	ren:      [2]string{"B1[3]", "B6[2]"},
	pinType3: [2]string{"B0[16]", "B10[16]"},
	pinType4: [2]string{"B4[16]", "B14[16]"},
	ie:       [2]string{"B6[3]", "B9[3]"},
}

// Assemble returns a new BitStream with every bit named by problem and
// solution flipped on top of template. template is left untouched; the
// clone it returns shares no mutable state with it.
func Assemble(template *bitstream.BitStream, db *device.ChipDb, problem *design.PnrProblem, solution *design.PnrSolution) (*bitstream.BitStream, error) {
	bs := template.Clone()

	clockDomainByTile := make(map[device.TilePos]uint32)
	clockArcDerived := make(map[device.TilePos]bool)
	var extraArcs []device.ConfiguredArc

	for i, lut := range problem.Lut4s {
		placement := solution.LutPlacements[i]
		setLutTable(bs, placement.Tile, placement.Slot, lut.Table)

		if lut.ClockDomain == nil {
			continue
		}
		d := *lut.ClockDomain
		if d >= 8 {
			panic("assemble: clock domain out of range (>= 8)")
		}

		bs.SetBitRowCol(placement.Tile, 2*int(placement.Slot)+0, dffEnableCol)

		if existing, ok := clockDomainByTile[placement.Tile]; ok {
			if existing != d {
				panic("assemble: conflicting clock domains at one tile")
			}
		} else {
			clockDomainByTile[placement.Tile] = d
		}

		if clockArcDerived[placement.Tile] {
			continue
		}
		clockArcDerived[placement.Tile] = true

		globalNet, err := db.GetNetByName(device.TilePos{X: 1, Y: 1}, globalNetworkName(d))
		if err != nil {
			return nil, err
		}
		localClk, err := db.GetNetByName(placement.Tile, "lutff_global/clk")
		if err != nil {
			return nil, err
		}
		arc, ok := db.GetConfiguredArcBetween(globalNet, localClk)
		if !ok {
			return nil, pnrerr.Routingf("no configured arc from clock network %d to %s", d, placement.Tile)
		}
		extraArcs = append(extraArcs, arc)
	}

	for _, arc := range solution.ConfiguredArcs {
		setArcBits(bs, db, arc)
	}
	for _, arc := range extraArcs {
		setArcBits(bs, db, arc)
	}

	for _, io := range problem.UsedIOs {
		setIoPadBits(bs, io.Spot.Tile, io.Spot.Which, io.IsOutput)
	}

	logrus.WithFields(logrus.Fields{
		"luts":      len(problem.Lut4s),
		"ios":       len(problem.UsedIOs),
		"extraArcs": len(extraArcs),
	}).Debug("assemble complete")

	return bs, nil
}

func globalNetworkName(d uint32) string {
	return "glb_netwk_" + strconv.FormatUint(uint64(d), 10)
}

func setLutTable(bs *bitstream.BitStream, tile device.TilePos, slot uint8, table uint16) {
	for i := 0; i < 16; i++ {
		if (table>>uint(i))&1 == 0 {
			continue
		}
		entry := lutBitLayout[i]
		bs.SetBitRowCol(tile, 2*int(slot)+entry.rowOffset, entry.col)
	}
}

func setArcBits(bs *bitstream.BitStream, db *device.ChipDb, arc device.ConfiguredArc) {
	entry := db.Arcs[arc.Arc]
	conn := entry.Connections[arc.ConnIndex]
	if len(conn.ConfigBits) != len(entry.ConfigBitNames) {
		panic("assemble: arc-entry/connection size mismatch")
	}
	for i, bit := range conn.ConfigBits {
		if !bit {
			continue
		}
		bs.SetBit(entry.Tile, entry.ConfigBitNames[i])
	}
}

func setIoPadBits(bs *bitstream.BitStream, tile device.TilePos, which uint8, isOutput bool) {
	bs.SetBit(tile, ioPadBits.ioCtrl[which])
	bs.SetBit(tile, ioPadBits.pinType0[which])
	bs.SetBit(tile, ioPadBits.ren[which])
	if isOutput {
		bs.SetBit(tile, ioPadBits.pinType3[which])
		bs.SetBit(tile, ioPadBits.pinType4[which])
	} else {
		bs.SetBit(tile, ioPadBits.ie[which])
	}
}
