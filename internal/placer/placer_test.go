package placer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xyproto/pnr5k/internal/design"
	"github.com/xyproto/pnr5k/internal/device"
)

func smallLogicTiles(n int) []device.TilePos {
	tiles := make([]device.TilePos, n)
	for i := range tiles {
		tiles[i] = device.TilePos{X: uint8(2 + i), Y: 2}
	}
	return tiles
}

func dbWithTiles(tiles []device.TilePos) *device.ChipDb {
	return &device.ChipDb{LogicTiles: tiles}
}

func TestPlaceEmptyProblem(t *testing.T) {
	db := dbWithTiles(smallLogicTiles(1))
	placements, err := Place(&design.PnrProblem{}, db)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if placements != nil {
		t.Errorf("expected no placements for an empty design, got %v", placements)
	}
}

func TestPlaceRejectsOvercapacity(t *testing.T) {
	db := dbWithTiles(smallLogicTiles(1))
	luts := make([]design.Lut4, 9) // 1 tile * 8 slots + 1
	problem := &design.PnrProblem{Lut4s: luts}

	_, err := Place(problem, db)
	if err == nil {
		t.Fatal("expected a capacity error")
	}
}

func TestPlaceIsDeterministic(t *testing.T) {
	db := dbWithTiles(smallLogicTiles(4))
	luts := make([]design.Lut4, 12)
	problem := &design.PnrProblem{Lut4s: luts}

	first, err := Place(problem, db)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	second, err := Place(problem, db)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("placement differs across runs (-first +second):\n%s", diff)
	}
}

func TestPlaceRespectsPerTileCapacity(t *testing.T) {
	db := dbWithTiles(smallLogicTiles(2))
	luts := make([]design.Lut4, 16) // exactly fills both tiles
	problem := &design.PnrProblem{Lut4s: luts}

	placements, err := Place(problem, db)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	counts := make(map[device.TilePos]int)
	slots := make(map[device.TilePos]map[uint8]bool)
	for _, p := range placements {
		if slots[p.Tile] == nil {
			slots[p.Tile] = make(map[uint8]bool)
		}
		if slots[p.Tile][p.Slot] {
			t.Errorf("duplicate slot %d assigned twice at tile %s", p.Slot, p.Tile)
		}
		slots[p.Tile][p.Slot] = true
		counts[p.Tile]++
	}
	for tile, count := range counts {
		if count > 8 {
			t.Errorf("tile %s over capacity: %d LUTs", tile, count)
		}
	}
}
