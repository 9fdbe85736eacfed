// Package bitstream models the vendor-ASCII bitstream format: a sequence
// of named, tile-addressed bit matrices, with framing preserved exactly
// for any section the assembler never touches.
package bitstream

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/pnr5k/internal/device"
	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// Entry is one named section of the bitstream.
type Entry struct {
	Name   string
	Args   []string
	Matrix BitMatrix
}

// tileLikeNames are the section names that address a device tile and are
// indexed by (x, y) for O(1) bit-setting lookups.
var tileLikeNames = map[string]bool{
	"io_tile":    true,
	"logic_tile": true,
	"ramb_tile":  true,
	"ramt_tile":  true,
	"dsp0_tile":  true,
	"dsp1_tile":  true,
	"dsp2_tile":  true,
	"dsp3_tile":  true,
	"ipcon_tile": true,
}

// onlyOneNewline names the sections whose serialized form is not followed
// by a blank line. Derived from observed template formatting (see
// SPEC_FULL.md §9 (a)); a device with different section framing would need this
// list revisited.
var onlyOneNewline = map[string]bool{
	"comment": true,
	"device":  true,
	"sym":     true,
}

// BitStream is the full parsed bitstream: an ordered list of sections plus
// a tile-position index for the tile-like ones.
type BitStream struct {
	Entries   []Entry
	TileIndex map[device.TilePos]int
}

// Clone deep-copies a BitStream so the template can be reused across
// multiple assemble runs.
func (bs *BitStream) Clone() *BitStream {
	entries := make([]Entry, len(bs.Entries))
	for i, e := range bs.Entries {
		entries[i] = Entry{Name: e.Name, Args: append([]string(nil), e.Args...), Matrix: e.Matrix.Clone()}
	}
	tileIndex := make(map[device.TilePos]int, len(bs.TileIndex))
	for k, v := range bs.TileIndex {
		tileIndex[k] = v
	}
	return &BitStream{Entries: entries, TileIndex: tileIndex}
}

// SetBitRowCol flips the bit at (row, col) within tile's entry. Setting an
// already-set bit, addressing an out-of-range cell, or addressing a tile
// with no tile-like entry are all contract violations: they panic rather
// than return an error, since the caller (the assembler) has a bug if any
// of them happen.
func (bs *BitStream) SetBitRowCol(tile device.TilePos, row, col int) {
	idx, ok := bs.TileIndex[tile]
	if !ok {
		panic(fmt.Sprintf("bitstream: no tile-like entry for %s", tile))
	}
	m := bs.Entries[idx].Matrix
	if !m.InRange(row, col) {
		panic(fmt.Sprintf("bitstream: bit [%d][%d] out of range for %s (%dx%d)", row, col, tile, m.Rows, m.Cols))
	}
	if m.Get(row, col) {
		panic(fmt.Sprintf("bitstream: bit [%d][%d] already set for %s", row, col, tile))
	}
	m.Set(row, col)
}

// SetBit parses a "B<row>[<col>]" descriptor and delegates to
// SetBitRowCol.
func (bs *BitStream) SetBit(tile device.TilePos, name string) {
	row, col, err := parseBitName(name)
	if err != nil {
		panic(fmt.Sprintf("bitstream: %v", err))
	}
	bs.SetBitRowCol(tile, row, col)
}

func parseBitName(name string) (row, col int, err error) {
	if !strings.HasPrefix(name, "B") {
		return 0, 0, fmt.Errorf("malformed bit name %q: expected a leading 'B'", name)
	}
	open := strings.IndexByte(name, '[')
	closeIdx := strings.IndexByte(name, ']')
	if open < 0 || closeIdx < open {
		return 0, 0, fmt.Errorf("malformed bit name %q: expected \"B<row>[<col>]\"", name)
	}
	row, err = strconv.Atoi(name[1:open])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed bit name %q: bad row: %v", name, err)
	}
	col, err = strconv.Atoi(name[open+1 : closeIdx])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed bit name %q: bad col: %v", name, err)
	}
	return row, col, nil
}

func fromEntries(entries []Entry) (*BitStream, error) {
	tileIndex := make(map[device.TilePos]int)
	for i, e := range entries {
		if !tileLikeNames[e.Name] {
			continue
		}
		if len(e.Args) != 2 {
			return nil, pnrerr.Parsef("section %q is tile-like but has %d args, want 2", e.Name, len(e.Args))
		}
		x, err := strconv.ParseUint(e.Args[0], 10, 8)
		if err != nil {
			return nil, pnrerr.Parsef("section %q has non-numeric x arg %q", e.Name, e.Args[0])
		}
		y, err := strconv.ParseUint(e.Args[1], 10, 8)
		if err != nil {
			return nil, pnrerr.Parsef("section %q has non-numeric y arg %q", e.Name, e.Args[1])
		}
		pos := device.TilePos{X: uint8(x), Y: uint8(y)}
		if _, dup := tileIndex[pos]; dup {
			return nil, pnrerr.Parsef("duplicate tile-like entry at %s", pos)
		}
		tileIndex[pos] = i
	}
	return &BitStream{Entries: entries, TileIndex: tileIndex}, nil
}
