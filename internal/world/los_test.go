package world

import (
	"testing"

	"github.com/talgya/hexrealm/internal/rules"
)

func visibleSet(m *Map, c Coord, rng int) map[Coord]bool {
	out := map[Coord]bool{}
	for _, v := range m.VisibleTilesFrom(c, rng, DefaultStepLength) {
		out[v] = true
	}
	return out
}

func TestVisibleTilesIncludesOriginAndNeighbors(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	seen := visibleSet(m, Coord{X: 10, Y: 10}, 2)
	if !seen[Coord{X: 10, Y: 10}] {
		t.Error("origin must be visible")
	}
	for _, nc := range AdjacentCoords(Coord{X: 10, Y: 10}) {
		if !seen[nc] {
			t.Errorf("adjacent tile %v not visible on flat ground", nc)
		}
	}
}

func TestMountainBlocksSightBehindIt(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	viewer := Coord{X: 5, Y: 2}
	// Direction 5 is straight south for both column parities, which
	// keeps the ray geometry obvious.
	m.TileAt(Coord{X: 5, Y: 4}).Terrain = TerrainMountain

	seen := visibleSet(m, viewer, 4)
	if !seen[Coord{X: 5, Y: 3}] {
		t.Error("tile before the mountain should be visible")
	}
	if !seen[Coord{X: 5, Y: 4}] {
		t.Error("the mountain itself should be visible")
	}
	if seen[Coord{X: 5, Y: 5}] {
		t.Error("tile in the mountain's shadow should be hidden")
	}
	if seen[Coord{X: 5, Y: 6}] {
		t.Error("deep shadow tile should be hidden")
	}
}

func TestElevatedViewerSeesRidgeAndNearTile(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	viewer := Coord{X: 5, Y: 2}
	// Viewer on a mountain, a forest ridge below: the ceiling starts at
	// ground level, so the peak does not hide the near tile, and the
	// ridge itself is seen.
	m.TileAt(viewer).Terrain = TerrainMountain
	m.TileAt(Coord{X: 5, Y: 4}).Terrain = TerrainForest

	seen := visibleSet(m, viewer, 4)
	if !seen[Coord{X: 5, Y: 4}] {
		t.Error("ridge visible from the peak")
	}
	if !seen[Coord{X: 5, Y: 3}] {
		t.Error("near tile visible from the peak")
	}
}

func TestImprovementHeightCountsForElevation(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	tile := m.TileAt(Coord{X: 3, Y: 3})
	reg := m.Registry()
	if tile.TotalElevation(reg) != 0 {
		t.Fatalf("bare grass elevation: got %d", tile.TotalElevation(reg))
	}
	tile.Improvement = NewImprovement(rules.Settlement, reg)
	if tile.TotalElevation(reg) != 1 {
		t.Errorf("settlement adds height 1, got %d", tile.TotalElevation(reg))
	}
}

func TestVisionRangeZeroSeesOnlySelf(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	got := m.VisibleTilesFrom(Coord{X: 2, Y: 2}, 0, DefaultStepLength)
	if len(got) != 1 || got[0] != (Coord{X: 2, Y: 2}) {
		t.Errorf("range 0: got %v", got)
	}
}
