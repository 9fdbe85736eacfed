// Package device models the parsed chip database: the device's tile grid,
// its named net nodes, and the directed graph of configurable arcs that
// connect them. It is read-only after Parse returns.
package device

import "fmt"

// TilePos is a coordinate-addressed tile on the device. The 0..256 range
// required by the device model falls out of the uint8 representation.
type TilePos struct {
	X, Y uint8
}

func (t TilePos) String() string {
	return fmt.Sprintf("(%d,%d)", t.X, t.Y)
}

// ChipNetIndex is a dense identifier for a net node: a named signal at a
// specific tile location.
type ChipNetIndex int

// ArcIndex is a dense identifier for an arc entry.
type ArcIndex int

// ConfiguredArc picks one source-to-destination edge of an arc entry: the
// arc itself, plus which of its alternative connections is selected.
type ConfiguredArc struct {
	Arc       ArcIndex
	ConnIndex int
}

func (c ConfiguredArc) String() string {
	return fmt.Sprintf("arc#%d/%d", c.Arc, c.ConnIndex)
}

// NetLocation is one named occurrence of a net at a tile.
type NetLocation struct {
	Tile TilePos
	Name string
}

// Net is a net node's full set of locations sharing one ChipNetIndex.
type Net struct {
	Index     ChipNetIndex
	Locations []NetLocation
}

// Connection is one alternative source for an arc, selected by a concrete
// config-bit pattern.
type Connection struct {
	ConfigBits []bool
	Source     ChipNetIndex
}

// ArcEntry is a configurable edge: one destination net, reachable through
// any of its Connections, each picking a distinct config-bit pattern at
// Tile.
type ArcEntry struct {
	Tile           TilePos
	Dest           ChipNetIndex
	ConfigBitNames []string
	IsBuffer       bool
	Connections    []Connection
}

// FromEdge is one entry of the reverse-adjacency list: a (source,
// configured arc) pair reaching some destination net.
type FromEdge struct {
	Source ChipNetIndex
	Arc    ConfiguredArc
}

// PinLoc is where one package pin lands on the device.
type PinLoc struct {
	Tile  TilePos
	Which uint8
}

// PackagePins maps pin names to their device location for one package.
type PackagePins struct {
	PinNameToPos map[string]PinLoc
}

// ChipDb is the fully parsed device description: read-only after Parse.
type ChipDb struct {
	Nets          []Net
	Arcs          []ArcEntry
	Froms         map[ChipNetIndex][]FromEdge
	NetByName     map[netKey]ChipNetIndex
	LogicTiles    []TilePos
	PinsByPackage map[string]*PackagePins

	interner *interner
}

type netKey struct {
	Tile TilePos
	Name string
}
