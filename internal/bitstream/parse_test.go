package bitstream

import (
	"strings"
	"testing"

	"github.com/xyproto/pnr5k/internal/device"
)

const smallTemplate = `.comment hello
0101
.logic_tile 2 2
0000
0000

.io_tile 0 0
00
00

`

func TestParseThenSerializeRoundTrips(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	out := Serialize(bs)
	if out != smallTemplate {
		t.Errorf("round trip mismatch:\n--- got ---\n%s\n--- want ---\n%s", out, smallTemplate)
	}
}

func TestParseBuildsTileIndex(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := bs.TileIndex[device.TilePos{X: 2, Y: 2}]; !ok {
		t.Error("expected a tile-index entry for the logic_tile at (2,2)")
	}
	if _, ok := bs.TileIndex[device.TilePos{X: 0, Y: 0}]; !ok {
		t.Error("expected a tile-index entry for the io_tile at (0,0)")
	}
}

func TestParseRejectsColumnMismatch(t *testing.T) {
	text := ".logic_tile 2 2\n0000\n000\n"
	if _, err := Parse(strings.NewReader(text)); err == nil {
		t.Error("expected a column-width mismatch error")
	}
}

func TestParseRejectsDuplicateTile(t *testing.T) {
	text := ".logic_tile 2 2\n0000\n0000\n\n.logic_tile 2 2\n0000\n0000\n"
	if _, err := Parse(strings.NewReader(text)); err == nil {
		t.Error("expected a duplicate-tile error")
	}
}

func TestSetBitRowColFlipsBit(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tile := device.TilePos{X: 2, Y: 2}
	bs.SetBitRowCol(tile, 1, 3)
	idx := bs.TileIndex[tile]
	if !bs.Entries[idx].Matrix.Get(1, 3) {
		t.Error("expected bit (1,3) to be set")
	}
}

func TestSetBitRowColPanicsOnDoubleSet(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tile := device.TilePos{X: 2, Y: 2}
	bs.SetBitRowCol(tile, 0, 0)

	defer func() {
		if recover() == nil {
			t.Error("expected a panic when setting an already-set bit")
		}
	}()
	bs.SetBitRowCol(tile, 0, 0)
}

func TestSetBitRowColPanicsOutOfRange(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Error("expected a panic for an out-of-range bit")
		}
	}()
	bs.SetBitRowCol(device.TilePos{X: 2, Y: 2}, 99, 99)
}

func TestSetBitParsesDescriptor(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tile := device.TilePos{X: 0, Y: 0}
	bs.SetBit(tile, "B1[1]")
	idx := bs.TileIndex[tile]
	if !bs.Entries[idx].Matrix.Get(1, 1) {
		t.Error("expected SetBit(\"B1[1]\") to flip row 1, col 1")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	bs, err := Parse(strings.NewReader(smallTemplate))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	clone := bs.Clone()
	tile := device.TilePos{X: 2, Y: 2}
	clone.SetBitRowCol(tile, 0, 0)

	idx := bs.TileIndex[tile]
	if bs.Entries[idx].Matrix.Get(0, 0) {
		t.Error("mutating a clone should not affect the original")
	}
}
