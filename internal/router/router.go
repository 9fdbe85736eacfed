// Package router performs per-wire shortest-path routing over a ChipDb's
// configurable-arc graph, consuming net nodes as it goes so that no two
// drivers claim the same destination.
package router

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/sirupsen/logrus"

	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/pathfind"
	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// Route wires up every net in problem.Wires in input order, returning the
// concatenation of each wire's routed path (in forward, driver-to-sink
// order) or the first routing failure encountered.
func Route(problem *design.PnrProblem, db *device.ChipDb, placements []design.Placement) ([]device.ConfiguredArc, error) {
	chipNetsByOutput := make(map[design.OutputSpot][]device.ChipNetIndex)
	consumed := bitset.New(uint(len(db.Nets)))

	var configuredArcs []device.ConfiguredArc

	for i, wire := range problem.Wires {
		if i%100 == 0 {
			logrus.WithFields(logrus.Fields{"wire": i, "total": len(problem.Wires)}).Debug("routing")
		}

		fromNet, err := resolveOutputNet(wire.From, db, placements)
		if err != nil {
			return nil, err
		}
		toNet, err := resolveInputNet(wire.To, db, placements)
		if err != nil {
			return nil, err
		}

		extraStarts := chipNetsByOutput[wire.From]
		path, ok := pathfind.Find(fromNet, extraStarts, toNet, db.Froms, consumed)
		if !ok {
			return nil, pnrerr.Routingf("No path found from %s to %s", wire.From, wire.To)
		}

		configuredArcs = append(configuredArcs, path...)
		claimed := chipNetsByOutput[wire.From]
		for _, edge := range path {
			dest := db.Arcs[edge.Arc].Dest
			consumed.Set(uint(dest))
			claimed = append(claimed, dest)
		}
		chipNetsByOutput[wire.From] = claimed
	}

	logrus.Debug("routing complete")
	return configuredArcs, nil
}

func resolveOutputNet(spot design.OutputSpot, db *device.ChipDb, placements []design.Placement) (device.ChipNetIndex, error) {
	switch spot.Kind {
	case design.OutputPin:
		return db.IoTileOut(spot.Pin.Tile, spot.Pin.Which)
	default:
		p := placements[spot.LutIndex]
		return db.FFOut(p.Tile, p.Slot)
	}
}

func resolveInputNet(spot design.InputSpot, db *device.ChipDb, placements []design.Placement) (device.ChipNetIndex, error) {
	switch spot.Kind {
	case design.InputPin:
		return db.IoTileIn(spot.Pin.Tile, spot.Pin.Which)
	case design.InputGlobalNetIngress:
		return db.GetNetByName(spot.IngressTile, "fabout")
	default:
		p := placements[spot.LutIndex]
		return db.FFIn(p.Tile, p.Slot, spot.LutInputIndex)
	}
}
