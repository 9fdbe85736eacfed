package device

import (
	"fmt"

	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// GetNetByName resolves a net node by its (tile, name) composite key.
func (db *ChipDb) GetNetByName(tile TilePos, name string) (ChipNetIndex, error) {
	idx, ok := db.NetByName[netKey{Tile: tile, Name: name}]
	if !ok {
		if hint := db.suggestNetName(tile, name); hint != "" {
			return 0, pnrerr.Parsef("net not found: %s/%q (did you mean %q?)", tile, name, hint)
		}
		return 0, pnrerr.Parsef("net not found: %s/%q", tile, name)
	}
	return idx, nil
}

// FFOut resolves the net driven by a logic-tile LUT/DFF slot's output.
func (db *ChipDb) FFOut(tile TilePos, lutNumber uint8) (ChipNetIndex, error) {
	return db.GetNetByName(tile, fmt.Sprintf("lutff_%d/out", lutNumber))
}

// FFIn resolves the net feeding one input of a logic-tile LUT/DFF slot.
func (db *ChipDb) FFIn(tile TilePos, lutNumber uint8, inputIndex int) (ChipNetIndex, error) {
	return db.GetNetByName(tile, fmt.Sprintf("lutff_%d/in_%d", lutNumber, inputIndex))
}

// IoTileOut resolves the net an IO pad drives into the fabric when used as
// an input pin. The naming is inverted relative to the pad: D_IN_0 is the
// IO tile's output into the fabric.
func (db *ChipDb) IoTileOut(tile TilePos, which uint8) (ChipNetIndex, error) {
	return db.GetNetByName(tile, fmt.Sprintf("io_%d/D_IN_0", which))
}

// IoTileIn resolves the net that feeds an IO pad when used as an output
// pin.
func (db *ChipDb) IoTileIn(tile TilePos, which uint8) (ChipNetIndex, error) {
	return db.GetNetByName(tile, fmt.Sprintf("io_%d/D_OUT_0", which))
}

// GetConfiguredArcBetween scans the reverse adjacency of to for an edge
// sourced at from.
func (db *ChipDb) GetConfiguredArcBetween(from, to ChipNetIndex) (ConfiguredArc, bool) {
	for _, edge := range db.Froms[to] {
		if edge.Source == from {
			return edge.Arc, true
		}
	}
	return ConfiguredArc{}, false
}

// GetGlobalNetIngressPoint resolves the device's single supported global
// clock network ingress point. Only index 7 is wired up in this device
// model; any other index is a parse-time configuration error, not a
// contract violation, since it depends on the design's requested clock
// domain rather than on internal consistency.
func (db *ChipDb) GetGlobalNetIngressPoint(globalNetIndex int) (ChipNetIndex, error) {
	if globalNetIndex != 7 {
		return 0, pnrerr.Parsef("global net index out of range: %d", globalNetIndex)
	}
	return db.GetNetByName(TilePos{X: 19, Y: 0}, "fabout")
}

// GetIoPinSpot resolves a package pin name to its device location.
func (db *ChipDb) GetIoPinSpot(packageName, pinName string) (PinLoc, error) {
	pkg, ok := db.PinsByPackage[packageName]
	if !ok {
		return PinLoc{}, pnrerr.Parsef("unknown package: %s", packageName)
	}
	loc, ok := pkg.PinNameToPos[pinName]
	if !ok {
		return PinLoc{}, pnrerr.Parsef("unknown pin %q in package %s", pinName, packageName)
	}
	return loc, nil
}
