package world

import (
	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// Tile is one hex cell. Tiles are created at map construction and never
// destroyed. Invariants: the unit slot holds at most one unit; an owner
// is set only on settleable tiles; visibility counters are nonnegative
// at rest (transient dips during a stale light-off are tolerated and
// corrected by the steady-state relight).
type Tile struct {
	Coords    Coord
	Terrain   Terrain
	BaseYield economy.Yield

	// Ownership by integer handle. City IDs start at 1, 0 = unowned.
	// The city itself lives on the map's city list. OwnerCiv is -1 when
	// unowned (civ IDs start at 0).
	OwnerCity int
	OwnerCiv  int

	Unit        *Unit
	Improvement *Improvement

	// Knowledge points accumulated per branch, bounded by the registry.
	Knowledge map[rules.KnowledgeBranch]int

	// Per-civ visibility: discovered is monotone-sticky, visible is a
	// reference count of overlapping vision cones.
	discoveredBy []bool
	visibleTo    []int
}

// NewTile creates a tile with the given terrain and per-civ bookkeeping
// sized for civCount civilizations.
func NewTile(c Coord, t Terrain, civCount int) *Tile {
	return &Tile{
		Coords:       c,
		Terrain:      t,
		BaseYield:    t.BaseYield(),
		OwnerCiv:     -1,
		Knowledge:    make(map[rules.KnowledgeBranch]int),
		discoveredBy: make([]bool, civCount),
		visibleTo:    make([]int, civCount),
	}
}

// TotalElevation is the terrain height plus the improvement height, the
// quantity line-of-sight rays compare against.
func (t *Tile) TotalElevation(reg *rules.Registry) int {
	h := t.Terrain.Stats().Height
	if t.Improvement != nil {
		h += reg.Improvements[t.Improvement.Type].Height
	}
	return h
}

// Yield is the tile's published per-turn yield: base terrain yield plus
// the improvement's output. Natural improvements add nothing.
func (t *Tile) Yield(reg *rules.Registry) economy.Yield {
	out := t.BaseYield.Clone()
	if t.Improvement != nil {
		out.Add(t.Improvement.Yield(reg))
	}
	return out
}

// SetVisibility adjusts the per-civ visibility counter. Turning a tile
// visible also marks it discovered, permanently.
func (t *Tile) SetVisibility(civID int, on bool) {
	if civID < 0 || civID >= len(t.visibleTo) {
		return
	}
	if on {
		t.visibleTo[civID]++
		if t.visibleTo[civID] > 0 {
			t.discoveredBy[civID] = true
		}
	} else {
		t.visibleTo[civID]--
	}
}

// VisibleTo reports whether the tile is currently in some vision cone
// of the civ.
func (t *Tile) VisibleTo(civID int) bool {
	return civID >= 0 && civID < len(t.visibleTo) && t.visibleTo[civID] > 0
}

// VisibilityCount exposes the raw reference count, for bookkeeping
// checks and serialization.
func (t *Tile) VisibilityCount(civID int) int {
	if civID < 0 || civID >= len(t.visibleTo) {
		return 0
	}
	return t.visibleTo[civID]
}

// DiscoveredBy reports whether the civ has ever seen the tile.
func (t *Tile) DiscoveredBy(civID int) bool {
	return civID >= 0 && civID < len(t.discoveredBy) && t.discoveredBy[civID]
}

// clearVisibility zeroes the civ's counter without touching discovery.
// Used by the per-turn relight.
func (t *Tile) clearVisibility(civID int) {
	if civID >= 0 && civID < len(t.visibleTo) {
		t.visibleTo[civID] = 0
	}
}

// AddKnowledge credits points to a branch after applying decay, clamped
// to max. Knowledge never decreases: if the tile already holds max or
// more, the call is a no-op.
func (t *Tile) AddKnowledge(branch rules.KnowledgeBranch, points int, decay float64, max int) {
	credited := int(float64(points) * (1 - decay))
	if credited <= 0 {
		return
	}
	next := t.Knowledge[branch] + credited
	if next > max {
		next = max
	}
	if next > t.Knowledge[branch] {
		t.Knowledge[branch] = next
	}
}

// CanSettleOn reports whether a city may be founded here: the terrain
// must permit settling and the tile must be unowned.
func (t *Tile) CanSettleOn() bool {
	return !settleBlocked[t.Terrain] && t.OwnerCity == 0
}

// CanBuildOn reports whether an improvement may occupy this terrain.
func (t *Tile) CanBuildOn() bool {
	return !buildBlocked[t.Terrain]
}
