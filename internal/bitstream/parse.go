package bitstream

import (
	"bufio"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/xyproto/pnr5k/internal/pnrerr"
)

// Parse reads a bitstream template (or any previously serialized
// bitstream) from its textual ASC form.
func Parse(r io.Reader) (*BitStream, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var entries []Entry
	var cur *Entry
	var rows []string
	cols := -1

	flush := func() error {
		if cur == nil {
			return nil
		}
		data := make([]bool, 0, len(rows)*max(cols, 0))
		for _, line := range rows {
			for _, c := range line {
				switch c {
				case '0':
					data = append(data, false)
				case '1':
					data = append(data, true)
				default:
					return pnrerr.Parsef("invalid character %q in data block for section %q", c, cur.Name)
				}
			}
		}
		m := NewBitMatrix(len(rows), max(cols, 0))
		for i, v := range data {
			if v {
				m.data.Set(uint(i))
			}
		}
		cur.Matrix = m
		entries = append(entries, *cur)
		cur = nil
		rows = nil
		cols = -1
		return nil
	}

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := flush(); err != nil {
				return nil, err
			}
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, pnrerr.Parsef("bitstream line %d: empty section header", lineNo)
			}
			cur = &Entry{Name: fields[0], Args: fields[1:]}
			continue
		}
		if cur == nil {
			return nil, pnrerr.Parsef("bitstream line %d: expected a '.' section header, got %q", lineNo, line)
		}
		if cols == -1 {
			cols = len(line)
		} else if len(line) != cols {
			return nil, pnrerr.Parsef("bitstream line %d: expected %d columns, got %d", lineNo, cols, len(line))
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, pnrerr.Parsef("reading bitstream: %v", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	bs, err := fromEntries(entries)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"sections": len(bs.Entries),
		"tiles":    len(bs.TileIndex),
	}).Debug("bitstream template parsed")
	return bs, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Serialize renders the bitstream back to its textual ASC form.
func Serialize(bs *BitStream) string {
	var sb strings.Builder
	for _, e := range bs.Entries {
		sb.WriteByte('.')
		sb.WriteString(e.Name)
		for _, a := range e.Args {
			sb.WriteByte(' ')
			sb.WriteString(a)
		}
		sb.WriteByte('\n')
		writeMatrix(&sb, e.Matrix)
		if !onlyOneNewline[e.Name] {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func writeMatrix(sb *strings.Builder, m BitMatrix) {
	for row := 0; row < m.Rows; row++ {
		for col := 0; col < m.Cols; col++ {
			if m.Get(row, col) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
}
