// Package pathfind implements the router's shortest-path search: a
// breadth-first search run backwards from the sink, with a cost field kept
// around in the frontier table purely so the signature could later support
// weighted edges without changing callers.
package pathfind

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/xyproto/pnr5k/internal/device"
)

type frontierEntry struct {
	hasEdge bool
	edge    device.ConfiguredArc
	succ    device.ChipNetIndex
	cost    int
}

// Find searches backwards from end toward start (or any node in
// extraStarts), refusing to pass through any node in blocked. It returns
// the path in forward, driver-to-sink order, and false if no path exists.
//
// blocked is treated as pre-visited: start and extraStarts are reachable
// even if they appear in blocked, because the search only consults
// "visited" to decide whether to re-expand a candidate predecessor, not to
// reject a realized start.
func Find(
	start device.ChipNetIndex,
	extraStarts []device.ChipNetIndex,
	end device.ChipNetIndex,
	froms map[device.ChipNetIndex][]device.FromEdge,
	blocked *bitset.BitSet,
) ([]device.ConfiguredArc, bool) {
	next := make(map[device.ChipNetIndex]frontierEntry)
	visited := blocked.Clone()

	next[end] = frontierEntry{succ: end, cost: 0}
	queue := []device.ChipNetIndex{end}

	isStart := func(n device.ChipNetIndex) bool {
		if n == start {
			return true
		}
		for _, s := range extraStarts {
			if n == s {
				return true
			}
		}
		return false
	}

	var realizedStart device.ChipNetIndex
	found := false

outer:
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, pred := range froms[node] {
			source := pred.Source
			if isStart(source) {
				next[source] = frontierEntry{hasEdge: true, edge: pred.Arc, succ: node, cost: 0}
				realizedStart = source
				found = true
				break outer
			}
			newCost := next[node].cost + 1
			if !visited.Test(uint(source)) {
				next[source] = frontierEntry{hasEdge: true, edge: pred.Arc, succ: node, cost: newCost}
				visited.Set(uint(source))
				queue = append(queue, source)
				continue
			}
			if existing, ok := next[source]; ok && newCost < existing.cost {
				next[source] = frontierEntry{hasEdge: true, edge: pred.Arc, succ: node, cost: newCost}
				queue = append(queue, source)
			}
		}
	}

	if !found {
		return nil, false
	}

	var path []device.ConfiguredArc
	cur := realizedStart
	for cur != end {
		entry := next[cur]
		path = append(path, entry.edge)
		cur = entry.succ
	}
	return path, true
}
