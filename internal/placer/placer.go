// Package placer assigns each LUT4 a concrete logic-tile slot, via a
// force-directed continuous-space relaxation (Phase A) followed by greedy
// legalization into tile slots (Phase B).
package placer

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// seed is fixed so that identical inputs always produce identical
// placements.
const seed = 1234

const (
	timescale       = 500.0
	baseLutsPerTile = 8.0
	maxPairsPerIter = 10 * 9 * int(baseLutsPerTile)
)

type point struct {
	x, y float32
}

type bucketKey struct{ bx, by int32 }

// Place runs the full two-phase placement algorithm and returns each LUT's
// assigned (tile, slot), indexed by LUT index.
func Place(problem *design.PnrProblem, db *device.ChipDb) ([]design.Placement, error) {
	numLuts := len(problem.Lut4s)
	chipCapacity := 8 * len(db.LogicTiles)
	if numLuts > chipCapacity {
		return nil, pnrerr.Capacityf("Too many LUTs: %d > %d", numLuts, chipCapacity)
	}
	if numLuts == 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(seed))

	s := math.Sqrt(float64(numLuts) / 8.0)
	positions := make([]point, numLuts)
	for i := range positions {
		positions[i] = point{
			x: float32(rng.Float64() * s),
			y: float32(rng.Float64() * s),
		}
	}

	logicTileSet := make(map[device.TilePos]bool, len(db.LogicTiles))
	for _, t := range db.LogicTiles {
		logicTileSet[t] = true
	}

	capacityFactor := math.Max(0.5, float64(numLuts)/float64(chipCapacity))
	epochs := 10.0 + float64(numLuts)/500.0
	totalIterations := int(math.Floor(timescale * epochs))

	order := make([]int, numLuts)
	for i := range order {
		order[i] = i
	}

	logrus.WithFields(logrus.Fields{
		"luts":       numLuts,
		"iterations": totalIterations,
	}).Debug("placer: starting relaxation")

	for iter := 0; iter < totalIterations; iter++ {
		t := float64(iter) / timescale
		correctionFactor := 1.0 - 0.8*math.Exp(-t)
		tugFactor := math.Max(0.2*math.Exp(-t), 1e-4)
		const noiseFactor = 1e-8
		tileFactor := 1.0 - math.Exp(-0.05*t)
		targetDensity := capacityFactor * baseLutsPerTile * (1.0 - 0.2*math.Exp(-0.1*t))
		desiredDistance := math.Sqrt2 / math.Pow(3, 0.25) / math.Sqrt(targetDensity)

		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		applyNoise(positions, rng, noiseFactor)
		applyRepulsion(positions, order, desiredDistance, correctionFactor)
		applyLegalizationDrift(positions, order, db.LogicTiles, logicTileSet, tileFactor)
		applyEdgeTension(positions, problem.Wires, tugFactor)
	}

	return legalize(positions, db.LogicTiles)
}

func applyNoise(positions []point, rng *rand.Rand, noiseFactor float64) {
	for i := range positions {
		positions[i].x += float32((rng.Float64()*2 - 1) * noiseFactor)
		positions[i].y += float32((rng.Float64()*2 - 1) * noiseFactor)
	}
}

func applyRepulsion(positions []point, order []int, desiredDistance, correctionFactor float64) {
	buckets := make(map[bucketKey][]int)
	for i, p := range positions {
		k := bucketKey{int32(math.Floor(float64(p.x))), int32(math.Floor(float64(p.y)))}
		buckets[k] = append(buckets[k], i)
	}

examineLoop:
	for _, i := range order {
		here := positions[i]
		bx := int32(math.Floor(float64(here.x)))
		by := int32(math.Floor(float64(here.y)))
		examined := 0
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				others, ok := buckets[bucketKey{bx + dx, by + dy}]
				if !ok {
					continue
				}
				for _, j := range others {
					if i == j {
						continue
					}
					examined++
					if examined > maxPairsPerIter {
						continue examineLoop
					}
					there := positions[j]
					ddx := float64(there.x - here.x)
					ddy := float64(there.y - here.y)
					distance := math.Sqrt(ddx*ddx + ddy*ddy)
					if distance >= desiredDistance {
						continue
					}
					scale := correctionFactor * (desiredDistance/(1e-5+distance) - 1.0)
					ddx *= scale
					ddy *= scale
					positions[i].x -= float32(ddx / 2.0)
					positions[i].y -= float32(ddy / 2.0)
					positions[j].x += float32(ddx / 2.0)
					positions[j].y += float32(ddy / 2.0)
				}
			}
		}
	}
}

func applyLegalizationDrift(positions []point, order []int, logicTiles []device.TilePos, logicTileSet map[device.TilePos]bool, tileFactor float64) {
	isValid := func(x, y int32) bool {
		if x < 0 || x >= 256 || y < 0 || y >= 256 {
			return false
		}
		return logicTileSet[device.TilePos{X: uint8(x), Y: uint8(y)}]
	}

	for _, i := range order {
		x, y := positions[i].x, positions[i].y
		bx := int32(math.Floor(float64(x)))
		by := int32(math.Floor(float64(y)))
		if isValid(bx, by) {
			continue
		}

		type candidate struct {
			bx, by   int32
			distance float64
		}
		var best *candidate
		tryBucket := func(cbx, cby int32) {
			if !isValid(cbx, cby) {
				return
			}
			centerX := float64(cbx) + 0.5
			centerY := float64(cby) + 0.5
			distance := math.Abs(float64(x)-centerX) + math.Abs(float64(y)-centerY)
			if best == nil || distance < best.distance {
				best = &candidate{cbx, cby, distance}
			}
		}
		for dy := int32(-1); dy <= 1; dy++ {
			for dx := int32(-1); dx <= 1; dx++ {
				tryBucket(bx+dx, by+dy)
			}
		}
		if best == nil {
			for _, tile := range logicTiles {
				tryBucket(int32(tile.X), int32(tile.Y))
			}
		}
		if best == nil {
			continue
		}

		var ddx, ddy float64
		if best.bx > bx {
			ddx = float64(best.bx) - float64(x)
		} else if best.bx < bx {
			ddx = float64(best.bx+1) - float64(x)
		}
		if best.by > by {
			ddy = float64(best.by) - float64(y)
		} else if best.by < by {
			ddy = float64(best.by+1) - float64(y)
		}
		positions[i].x += float32(tileFactor * ddx)
		positions[i].y += float32(tileFactor * ddy)
	}
}

func applyEdgeTension(positions []point, wires []design.Wire, tugFactor float64) {
	for _, wire := range wires {
		start, startMobile := endpointOf(wire.From, positions)
		end, endMobile := endpointOfInput(wire.To, positions)

		ddx := float64(end.x - start.x)
		ddy := float64(end.y - start.y)
		distance := math.Sqrt(ddx*ddx + ddy*ddy)
		if distance <= 0 {
			continue
		}
		scale := tugFactor / (1.0 + distance)

		if startMobile >= 0 {
			positions[startMobile].x += float32(ddx * scale)
			positions[startMobile].y += float32(ddy * scale)
		}
		if endMobile >= 0 {
			positions[endMobile].x -= float32(ddx * scale)
			positions[endMobile].y -= float32(ddy * scale)
		}
	}
}

// endpointOf resolves a wire driver's tension-pass coordinate, returning
// the LUT index to move (or -1 if the endpoint is fixed).
func endpointOf(spot design.OutputSpot, positions []point) (point, int) {
	switch spot.Kind {
	case design.OutputPin:
		return tileCenter(spot.Pin.Tile), -1
	default:
		return positions[spot.LutIndex], int(spot.LutIndex)
	}
}

func endpointOfInput(spot design.InputSpot, positions []point) (point, int) {
	switch spot.Kind {
	case design.InputPin:
		return tileCenter(spot.Pin.Tile), -1
	case design.InputGlobalNetIngress:
		return tileCenter(spot.IngressTile), -1
	default:
		return positions[spot.LutIndex], int(spot.LutIndex)
	}
}

func tileCenter(t device.TilePos) point {
	return point{x: float32(t.X) + 0.5, y: float32(t.Y) + 0.5}
}

// legalize is Phase B: assign each LUT, visited in order of final y (ties
// broken by original LUT index for determinism), to the nearest
// not-yet-full logic tile.
func legalize(positions []point, logicTiles []device.TilePos) ([]design.Placement, error) {
	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		ay, by := positions[a].y, positions[b].y
		switch {
		case ay < by:
			return -1
		case ay > by:
			return 1
		default:
			return a - b
		}
	})

	consumedCount := make(map[device.TilePos]uint8, len(logicTiles))
	placements := make([]design.Placement, len(positions))

	for _, i := range order {
		pos := positions[i]
		var best device.TilePos
		bestDistance := math.Inf(1)
		foundAny := false
		for _, tile := range logicTiles {
			if consumedCount[tile] >= 8 {
				continue
			}
			cx := float64(tile.X) + 0.5
			cy := float64(tile.Y) + 0.5
			distance := math.Abs(cx-float64(pos.x)) + math.Abs(cy-float64(pos.y))
			if !foundAny || distance < bestDistance {
				best = tile
				bestDistance = distance
				foundAny = true
			}
		}
		// Capacity was checked before Phase A runs, so this can't fail.
		slot := consumedCount[best]
		consumedCount[best] = slot + 1
		placements[i] = design.Placement{Tile: best, Slot: slot}
	}

	return placements, nil
}
