package world

import (
	"slices"

	"github.com/talgya/hexrealm/internal/rules"
)

// NeighborsWithin returns every coord reachable within r hex steps of c,
// c excluded. The expansion memoizes the best remaining range per tile
// and re-expands only on improvement, so overlapping branches stay
// cheap. An optional filter gates both inclusion of a tile and
// recursion through it. Result order is expansion order; callers must
// not rely on it.
func (m *Map) NeighborsWithin(c Coord, r int, filter func(*Tile) bool) []Coord {
	start, ok := m.Normalize(c)
	if !ok || r <= 0 {
		return nil
	}

	type frame struct {
		c Coord
		r int
	}
	// Remaining range already granted per tile; expand again only when
	// a shorter path in grants more.
	rangeLeft := map[int]int{m.Pos(start): r}
	var out []Coord

	stack := []frame{{c: start, r: r}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, raw := range AdjacentCoords(f.c) {
			nc, ok := m.Normalize(raw)
			if !ok {
				continue
			}
			t := m.Tiles[m.Pos(nc)]
			if filter != nil && !filter(t) {
				continue
			}
			pos := m.Pos(nc)
			prev, seen := rangeLeft[pos]
			if seen && prev >= f.r-1 {
				continue
			}
			if !seen {
				out = append(out, nc)
			}
			rangeLeft[pos] = f.r - 1
			if f.r-1 > 0 {
				stack = append(stack, frame{c: nc, r: f.r - 1})
			}
		}
	}
	return out
}

// PathTree is the result of a bounded shortest-path search: for every
// reached tile, its best-known distance and the coord it was reached
// from.
type PathTree struct {
	Src    Coord
	Parent map[int]Coord
	Dist   map[int]int
}

// PathTree runs a cost-aware BFS from src, bounded by rng. Terrain with
// no movement cost for the mode is impassable; AIR moves at cost 1
// everywhere. The search uses a FIFO queue and relaxes on strict
// improvement, which converges because per-step costs are small
// nonnegative integers.
func (m *Map) PathTree(src Coord, rng int, mode rules.MovementClass) *PathTree {
	start, ok := m.Normalize(src)
	if !ok {
		return &PathTree{Src: src, Parent: map[int]Coord{}, Dist: map[int]int{}}
	}
	tree := &PathTree{
		Src:    start,
		Parent: make(map[int]Coord),
		Dist:   map[int]int{m.Pos(start): 0},
	}

	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curDist := tree.Dist[m.Pos(cur)]
		for _, raw := range AdjacentCoords(cur) {
			nc, ok := m.Normalize(raw)
			if !ok {
				continue
			}
			pos := m.Pos(nc)
			cost := m.stepCost(nc, mode)
			if cost <= 0 {
				continue
			}
			next := curDist + cost
			if next > rng {
				continue
			}
			if known, seen := tree.Dist[pos]; seen && known <= next {
				continue
			}
			tree.Dist[pos] = next
			tree.Parent[pos] = cur
			queue = append(queue, nc)
		}
	}
	return tree
}

func (m *Map) stepCost(c Coord, mode rules.MovementClass) int {
	if mode == rules.Air {
		return 1
	}
	t := m.TileAt(c)
	if t == nil {
		return 0
	}
	return t.Terrain.MovementCost(mode)
}

// byDistance returns the reached positions ordered nearest first, with
// a stable tie-break on position for determinism.
func (t *PathTree) byDistance() []int {
	positions := make([]int, 0, len(t.Dist))
	for pos := range t.Dist {
		positions = append(positions, pos)
	}
	slices.SortFunc(positions, func(a, b int) int {
		if d := t.Dist[a] - t.Dist[b]; d != 0 {
			return d
		}
		return a - b
	})
	return positions
}

// FindPath walks parent pointers back from target and returns the hops
// from the first step after the tree's source through target. Nil when
// the target was never reached.
func (m *Map) FindPath(tree *PathTree, target Coord) []Coord {
	tc, ok := m.Normalize(target)
	if !ok {
		return nil
	}
	pos := m.Pos(tc)
	if _, reached := tree.Dist[pos]; !reached {
		return nil
	}
	var rev []Coord
	cur := tc
	for cur != tree.Src {
		rev = append(rev, cur)
		parent, ok := tree.Parent[m.Pos(cur)]
		if !ok {
			return nil
		}
		cur = parent
	}
	out := make([]Coord, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

// FindRoute builds the full source-inclusive path and verifies that its
// endpoints resolve to the same tiles as the requested src and target.
// Returns nil on any mismatch.
func (m *Map) FindRoute(tree *PathTree, src, target Coord) *Route {
	hops := m.FindPath(tree, target)
	if hops == nil {
		return nil
	}
	full := append([]Coord{tree.Src}, hops...)
	srcTile := m.TileAt(src)
	dstTile := m.TileAt(target)
	if srcTile == nil || dstTile == nil {
		return nil
	}
	if m.TileAt(full[0]) != srcTile || m.TileAt(full[len(full)-1]) != dstTile {
		return nil
	}
	return &Route{
		Coords:   full,
		Distance: tree.Dist[m.Pos(full[len(full)-1])],
	}
}
