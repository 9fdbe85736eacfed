package bitstream

import "github.com/bits-and-blooms/bitset"

// BitMatrix is a rows*cols grid of bits, backed by a bitset.BitSet rather
// than a []bool: tile matrices are sparse (most LUT truth-table and
// routing-arc bits are never flipped) so a packed bitset stores one bit per
// cell instead of one byte, and is the idiomatic fit grounded in this codebase's routing-table
// sibling (bart), which uses bitset.BitSet for its own dense small-index
// node bitmaps.
type BitMatrix struct {
	Rows, Cols int
	data       *bitset.BitSet
}

// NewBitMatrix allocates a zeroed rows*cols matrix.
func NewBitMatrix(rows, cols int) BitMatrix {
	return BitMatrix{Rows: rows, Cols: cols, data: bitset.New(uint(rows * cols))}
}

func (m BitMatrix) index(row, col int) uint {
	return uint(row*m.Cols + col)
}

// InRange reports whether (row, col) addresses a cell of this matrix.
func (m BitMatrix) InRange(row, col int) bool {
	return row >= 0 && row < m.Rows && col >= 0 && col < m.Cols
}

// Get returns whether the bit at (row, col) is set.
func (m BitMatrix) Get(row, col int) bool {
	return m.data.Test(m.index(row, col))
}

// Set flips the bit at (row, col) to 1. The caller must check InRange and
// !Get first: setting an already-set bit, or one out of range, is a
// contract violation the matrix does not protect against on its own (see
// BitStream.SetBitRowCol, which does).
func (m BitMatrix) Set(row, col int) {
	m.data.Set(m.index(row, col))
}

// Clone returns an independent copy of m.
func (m BitMatrix) Clone() BitMatrix {
	return BitMatrix{Rows: m.Rows, Cols: m.Cols, data: m.data.Clone()}
}
