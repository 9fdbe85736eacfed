package device

import (
	"strings"
	"testing"
)

// smallChipDb is a minimal fixture covering one package with two pins, two
// logic tiles, and a handful of nets wired through one buffer arc. It is
// small enough to reason about by hand and exercises the .pins,
// .logic_tile, .net and .buffer sections.
const smallChipDb = `
.pins demo
P_in 0 0 0
P_out 0 0 1

.logic_tile 2 2
.logic_tile 3 2

.net 0
0 0 io_0/D_IN_0
.net 1
0 0 io_1/D_OUT_0
.net 2
2 2 lutff_0/out
.net 3
2 2 lutff_0/in_0

.buffer 2 2 3 B0[0]
0 0
1 2
`

func parseSmall(t *testing.T) *ChipDb {
	t.Helper()
	db, err := Parse(strings.NewReader(smallChipDb))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return db
}

func TestParseBuildsNets(t *testing.T) {
	db := parseSmall(t)
	if len(db.Nets) != 4 {
		t.Fatalf("expected 4 nets, got %d", len(db.Nets))
	}
	if len(db.LogicTiles) != 2 {
		t.Fatalf("expected 2 logic tiles, got %d", len(db.LogicTiles))
	}
}

func TestParseRejectsOutOfOrderNet(t *testing.T) {
	text := ".net 1\n0 0 foo\n"
	if _, err := Parse(strings.NewReader(text)); err == nil {
		t.Error("expected an error for out-of-order .net index")
	}
}

func TestParseRejectsArcBitLengthMismatch(t *testing.T) {
	text := ".logic_tile 2 2\n.net 0\n2 2 a\n.net 1\n2 2 b\n.buffer 2 2 1 B0[0] B0[1]\n0 0\n"
	if _, err := Parse(strings.NewReader(text)); err == nil {
		t.Error("expected an error when connection bit string length mismatches config-bit-name count")
	}
}

func TestGetNetByName(t *testing.T) {
	db := parseSmall(t)
	idx, err := db.GetNetByName(TilePos{X: 2, Y: 2}, "lutff_0/out")
	if err != nil {
		t.Fatalf("GetNetByName: %v", err)
	}
	if idx != 2 {
		t.Errorf("expected net index 2, got %d", idx)
	}
}

func TestGetNetByNameNotFoundSuggests(t *testing.T) {
	db := parseSmall(t)
	_, err := db.GetNetByName(TilePos{X: 2, Y: 2}, "lutff_0/ou")
	if err == nil {
		t.Fatal("expected an error for unknown net name")
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Errorf("expected a did-you-mean suggestion, got: %v", err)
	}
}

func TestFFOutAndFFIn(t *testing.T) {
	db := parseSmall(t)
	out, err := db.FFOut(TilePos{X: 2, Y: 2}, 0)
	if err != nil {
		t.Fatalf("FFOut: %v", err)
	}
	if out != 2 {
		t.Errorf("expected FFOut index 2, got %d", out)
	}
	in, err := db.FFIn(TilePos{X: 2, Y: 2}, 0, 0)
	if err != nil {
		t.Fatalf("FFIn: %v", err)
	}
	if in != 3 {
		t.Errorf("expected FFIn index 3, got %d", in)
	}
}

func TestIoTileOutAndIn(t *testing.T) {
	db := parseSmall(t)
	out, err := db.IoTileOut(TilePos{X: 0, Y: 0}, 0)
	if err != nil {
		t.Fatalf("IoTileOut: %v", err)
	}
	if out != 0 {
		t.Errorf("expected IoTileOut index 0, got %d", out)
	}
	in, err := db.IoTileIn(TilePos{X: 0, Y: 0}, 1)
	if err != nil {
		t.Fatalf("IoTileIn: %v", err)
	}
	if in != 1 {
		t.Errorf("expected IoTileIn index 1, got %d", in)
	}
}

func TestGetConfiguredArcBetween(t *testing.T) {
	db := parseSmall(t)
	arc, ok := db.GetConfiguredArcBetween(ChipNetIndex(0), ChipNetIndex(3))
	if !ok {
		t.Fatal("expected a configured arc from net 0 to net 3")
	}
	if arc.Arc != 0 || arc.ConnIndex != 0 {
		t.Errorf("unexpected configured arc: %+v", arc)
	}
}

func TestGetGlobalNetIngressPointRejectsOtherIndices(t *testing.T) {
	db := parseSmall(t)
	if _, err := db.GetGlobalNetIngressPoint(3); err == nil {
		t.Error("expected an error for unsupported global net index")
	}
}

func TestGetIoPinSpot(t *testing.T) {
	db := parseSmall(t)
	loc, err := db.GetIoPinSpot("demo", "P_in")
	if err != nil {
		t.Fatalf("GetIoPinSpot: %v", err)
	}
	if loc.Tile != (TilePos{X: 0, Y: 0}) || loc.Which != 0 {
		t.Errorf("unexpected pin location: %+v", loc)
	}
	if _, err := db.GetIoPinSpot("demo", "P_missing"); err == nil {
		t.Error("expected an error for unknown pin name")
	}
	if _, err := db.GetIoPinSpot("nope", "P_in"); err == nil {
		t.Error("expected an error for unknown package")
	}
}

// TestFromsInvariant exercises testable property 1 from the spec: for
// every (from, configuredArc) in froms[to], the configured arc's source
// resolves back to from and its dest resolves to to.
func TestFromsInvariant(t *testing.T) {
	db := parseSmall(t)
	for to, edges := range db.Froms {
		for _, edge := range edges {
			arc := db.Arcs[edge.Arc.Arc]
			conn := arc.Connections[edge.Arc.ConnIndex]
			if conn.Source != edge.Source {
				t.Errorf("froms[%d] edge source %d does not match connection source %d", to, edge.Source, conn.Source)
			}
			if arc.Dest != to {
				t.Errorf("froms[%d] edge's arc dest is %d, want %d", to, arc.Dest, to)
			}
		}
	}
}
