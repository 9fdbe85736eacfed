package device

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xyproto/pnr5k/internal/pnrerr"
)

type parseState int

const (
	stateNone parseState = iota
	statePins
	stateNet
	stateArc
)

// parser holds the mutable state of one pass over a chipdb text file. The
// grammar is line-oriented: a leading dotted token opens a section, and any
// other dotted directive (one we don't recognize) closes whatever section
// is currently open.
type parser struct {
	db       *ChipDb
	state    parseState
	pinsPkg  string
	curNet   int
	curArc   int
	lineNo   int
}

// Parse reads a textual chip database and builds its routing graph.
func Parse(r io.Reader) (*ChipDb, error) {
	db := &ChipDb{
		Froms:         make(map[ChipNetIndex][]FromEdge),
		NetByName:     make(map[netKey]ChipNetIndex),
		PinsByPackage: make(map[string]*PackagePins),
		interner:      newInterner(),
	}
	p := &parser{db: db}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		p.lineNo++
		raw := scanner.Text()
		if idx := strings.IndexByte(raw, '#'); idx >= 0 {
			raw = raw[:idx]
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if err := p.handleLine(line); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pnrerr.Parsef("reading chipdb: %v", err)
	}

	db.buildFroms()
	logrus.WithFields(logrus.Fields{
		"nets":        len(db.Nets),
		"arcs":        len(db.Arcs),
		"logic_tiles": len(db.LogicTiles),
	}).Debug("chipdb parsed")
	return db, nil
}

func (p *parser) handleLine(line string) error {
	fields := strings.Fields(line)
	first := fields[0]

	switch first {
	case ".pins":
		if len(fields) != 2 {
			return p.errf("'.pins' expects one package name argument, got %q", line)
		}
		p.state = statePins
		p.pinsPkg = fields[1]
		if _, ok := p.db.PinsByPackage[p.pinsPkg]; !ok {
			p.db.PinsByPackage[p.pinsPkg] = &PackagePins{PinNameToPos: make(map[string]PinLoc)}
		}
		return nil

	case ".logic_tile":
		if len(fields) != 3 {
			return p.errf("'.logic_tile' expects x and y, got %q", line)
		}
		x, err := p.parseU8(fields[1])
		if err != nil {
			return err
		}
		y, err := p.parseU8(fields[2])
		if err != nil {
			return err
		}
		p.state = stateNone
		p.db.LogicTiles = append(p.db.LogicTiles, TilePos{X: x, Y: y})
		return nil

	case ".net":
		if len(fields) != 2 {
			return p.errf("'.net' expects one index argument, got %q", line)
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return p.errf("'.net' index %q is not a number", fields[1])
		}
		if idx != len(p.db.Nets) {
			return p.errf("'.net %d' is out of order, expected %d", idx, len(p.db.Nets))
		}
		p.db.Nets = append(p.db.Nets, Net{Index: ChipNetIndex(idx)})
		p.state = stateNet
		p.curNet = idx
		return nil

	case ".buffer", ".routing":
		if len(fields) < 4 {
			return p.errf("'%s' expects x, y, and a destination net, got %q", first, line)
		}
		x, err := p.parseU8(fields[1])
		if err != nil {
			return err
		}
		y, err := p.parseU8(fields[2])
		if err != nil {
			return err
		}
		destIdx, err := strconv.Atoi(fields[3])
		if err != nil {
			return p.errf("destination net %q is not a number", fields[3])
		}
		names := make([]string, 0, len(fields)-4)
		for _, n := range fields[4:] {
			names = append(names, p.db.interner.intern(n))
		}
		p.db.Arcs = append(p.db.Arcs, ArcEntry{
			Tile:           TilePos{X: x, Y: y},
			Dest:           ChipNetIndex(destIdx),
			ConfigBitNames: names,
			IsBuffer:       first == ".buffer",
		})
		p.state = stateArc
		p.curArc = len(p.db.Arcs) - 1
		return nil

	default:
		if strings.HasPrefix(first, ".") {
			p.state = stateNone
			return nil
		}
	}

	switch p.state {
	case statePins:
		return p.handlePinLine(fields)
	case stateNet:
		return p.handleNetLine(fields)
	case stateArc:
		return p.handleArcLine(fields)
	default:
		return nil
	}
}

func (p *parser) handlePinLine(fields []string) error {
	if len(fields) != 4 {
		return p.errf("pin line expects name, x, y, which, got %d fields", len(fields))
	}
	name := fields[0]
	x, err := p.parseU8(fields[1])
	if err != nil {
		return err
	}
	y, err := p.parseU8(fields[2])
	if err != nil {
		return err
	}
	which, err := p.parseU8(fields[3])
	if err != nil {
		return err
	}
	pins := p.db.PinsByPackage[p.pinsPkg]
	if _, dup := pins.PinNameToPos[name]; dup {
		return p.errf("duplicate pin name: %s", name)
	}
	pins.PinNameToPos[name] = PinLoc{Tile: TilePos{X: x, Y: y}, Which: which}
	return nil
}

func (p *parser) handleNetLine(fields []string) error {
	if len(fields) != 3 {
		return p.errf("net location line expects x, y, name, got %d fields", len(fields))
	}
	x, err := p.parseU8(fields[0])
	if err != nil {
		return err
	}
	y, err := p.parseU8(fields[1])
	if err != nil {
		return err
	}
	name := fields[2]
	tile := TilePos{X: x, Y: y}
	key := netKey{Tile: tile, Name: name}
	if _, dup := p.db.NetByName[key]; dup {
		return p.errf("duplicate net location name: %s at %s", name, tile)
	}
	net := &p.db.Nets[p.curNet]
	net.Locations = append(net.Locations, NetLocation{Tile: tile, Name: name})
	p.db.NetByName[key] = ChipNetIndex(p.curNet)
	return nil
}

func (p *parser) handleArcLine(fields []string) error {
	if len(fields) != 2 {
		return p.errf("arc connection line expects a bit string and a source net, got %d fields", len(fields))
	}
	bitStr := fields[0]
	arc := &p.db.Arcs[p.curArc]
	if len(bitStr) != len(arc.ConfigBitNames) {
		return p.errf("arc connection bit string %q has length %d, expected %d to match config-bit names",
			bitStr, len(bitStr), len(arc.ConfigBitNames))
	}
	bits := make([]bool, len(bitStr))
	for i, c := range bitStr {
		switch c {
		case '0':
			bits[i] = false
		case '1':
			bits[i] = true
		default:
			return p.errf("invalid config-bit character %q in %q", c, bitStr)
		}
	}
	srcIdx, err := strconv.Atoi(fields[1])
	if err != nil {
		return p.errf("source net %q is not a number", fields[1])
	}
	arc.Connections = append(arc.Connections, Connection{ConfigBits: bits, Source: ChipNetIndex(srcIdx)})
	return nil
}

func (p *parser) parseU8(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, p.errf("expected a number in [0,256), got %q", s)
	}
	return uint8(v), nil
}

func (p *parser) errf(format string, args ...any) error {
	return pnrerr.Parsef("chipdb line %d: "+format, append([]any{p.lineNo}, args...)...)
}

// buildFroms inverts every arc's connections into the reverse-adjacency
// table the path finder walks.
func (db *ChipDb) buildFroms() {
	for arcIdx := range db.Arcs {
		arc := &db.Arcs[arcIdx]
		for connIdx, conn := range arc.Connections {
			db.Froms[arc.Dest] = append(db.Froms[arc.Dest], FromEdge{
				Source: conn.Source,
				Arc:    ConfiguredArc{Arc: ArcIndex(arcIdx), ConnIndex: connIdx},
			})
		}
	}
}
