package world

import (
	"testing"

	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

func testRegistry() *rules.Registry {
	return rules.Default()
}

// flatMap builds an all-grass map, the simplest passable terrain.
func flatMap(t *testing.T, w, h, civs int) *Map {
	t.Helper()
	return NewMap(w, h, civs, testRegistry())
}

func TestNeighborsWithinWrapsWestEdge(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	got := m.NeighborsWithin(Coord{X: 0, Y: 5}, 1, nil)

	found := map[Coord]bool{}
	for _, c := range got {
		found[c] = true
	}
	if !found[Coord{X: 9, Y: 5}] || !found[Coord{X: 9, Y: 4}] {
		t.Errorf("expected x=9 neighbors across the wrap, got %v", got)
	}
	if len(got) != 6 {
		t.Errorf("interior tile has 6 neighbors, got %d", len(got))
	}
}

func TestNeighborsWithinFilterGatesTraversal(t *testing.T) {
	m := flatMap(t, 12, 12, 1)
	// A wall of mountains between the origin and the far side.
	for y := 0; y < 12; y++ {
		m.TileAt(Coord{X: 7, Y: y}).Terrain = TerrainMountain
	}
	land := func(tile *Tile) bool { return tile.Terrain != TerrainMountain }
	got := m.NeighborsWithin(Coord{X: 5, Y: 5}, 2, land)
	for _, c := range got {
		if c.X == 7 {
			t.Errorf("filtered tile %v included", c)
		}
	}
}

func TestNeighborsWithinRadiusTwoCount(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	got := m.NeighborsWithin(Coord{X: 10, Y: 10}, 2, nil)
	// A full interior disk of radius 2, center excluded: 6 + 12.
	if len(got) != 18 {
		t.Errorf("radius-2 disk: got %d coords, want 18", len(got))
	}
}

func TestPathTreeImpassableRing(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	center := Coord{X: 5, Y: 5}

	inner := m.NeighborsWithin(center, 1, nil)
	outer := m.NeighborsWithin(center, 2, nil)
	innerSet := map[int]bool{}
	for _, c := range inner {
		innerSet[m.Pos(c)] = true
	}
	// The radius-2 ring becomes mountains.
	for _, c := range outer {
		if !innerSet[m.Pos(c)] {
			m.TileAt(c).Terrain = TerrainMountain
		}
	}

	tree := m.PathTree(center, 10, rules.Land)
	if len(tree.Dist) != 7 {
		t.Errorf("sealed pocket should hold center + 6 neighbors, got %d tiles", len(tree.Dist))
	}
	for pos := range tree.Dist {
		if m.tileAtPos(pos).Terrain == TerrainMountain {
			t.Error("impassable tile appeared in the path tree")
		}
	}
}

func TestPathTreeAirIgnoresTerrain(t *testing.T) {
	m := flatMap(t, 20, 20, 1)
	for _, c := range m.NeighborsWithin(Coord{X: 5, Y: 5}, 1, nil) {
		m.TileAt(c).Terrain = TerrainMountain
	}
	tree := m.PathTree(Coord{X: 5, Y: 5}, 3, rules.Air)
	pos := m.Pos(Coord{X: 6, Y: 5})
	if _, ok := tree.Dist[pos]; !ok {
		t.Error("air movement should cross mountains")
	}
}

func TestFindRouteEndpoints(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	src := Coord{X: 2, Y: 2}
	dst := Coord{X: 5, Y: 2}
	tree := m.PathTree(src, 10, rules.Land)
	route := m.FindRoute(tree, src, dst)
	if route == nil {
		t.Fatal("route not found on open ground")
	}
	if route.Coords[0] != src {
		t.Errorf("route starts at %v, want %v", route.Coords[0], src)
	}
	if last := route.Coords[len(route.Coords)-1]; last != dst {
		t.Errorf("route ends at %v, want %v", last, dst)
	}
	if route.Distance <= 0 {
		t.Errorf("route distance %d, want positive", route.Distance)
	}
	// Consecutive coords must be adjacent.
	for i := 1; i < len(route.Coords); i++ {
		adj := false
		for _, n := range AdjacentCoords(route.Coords[i-1]) {
			if nn, ok := m.Normalize(n); ok && nn == route.Coords[i] {
				adj = true
				break
			}
		}
		if !adj {
			t.Errorf("route hop %v -> %v not adjacent", route.Coords[i-1], route.Coords[i])
		}
	}
}

func TestSettleCityClaimsNeighborhood(t *testing.T) {
	m := flatMap(t, 10, 10, 2)
	city := m.SettleCityAt(Coord{X: 4, Y: 4}, "Thornwall", 0)
	if city == nil {
		t.Fatal("settle refused on open grass")
	}
	center := m.TileAt(Coord{X: 4, Y: 4})
	if center.OwnerCity != city.ID || center.OwnerCiv != 0 {
		t.Error("center not owned by the new city")
	}
	if center.Improvement == nil || center.Improvement.Type != rules.Settlement {
		t.Error("settlement improvement missing at center")
	}
	for _, nc := range AdjacentCoords(center.Coords) {
		if tile := m.TileAt(nc); tile != nil && tile.OwnerCity != city.ID {
			t.Errorf("neighbor %v not claimed", nc)
		}
	}
	if len(city.Owned) != 7 {
		t.Errorf("city owns %d tiles, want 7", len(city.Owned))
	}
}

func TestSettleGates(t *testing.T) {
	m := flatMap(t, 10, 10, 2)
	m.TileAt(Coord{X: 3, Y: 3}).Terrain = TerrainMountain
	if m.SettleCityAt(Coord{X: 3, Y: 3}, "Peak", 0) != nil {
		t.Error("settled on a mountain")
	}

	if m.SettleCityAt(Coord{X: 6, Y: 6}, "First", 0) == nil {
		t.Fatal("first settle failed")
	}
	if m.SettleCityAt(Coord{X: 6, Y: 6}, "Second", 1) != nil {
		t.Error("settled on an owned tile")
	}
}

func TestSetTileOwnerNoOverwrite(t *testing.T) {
	m := flatMap(t, 12, 12, 2)
	a := m.SettleCityAt(Coord{X: 3, Y: 3}, "A", 0)
	b := m.SettleCityAt(Coord{X: 8, Y: 8}, "B", 1)
	if a == nil || b == nil {
		t.Fatal("settles failed")
	}
	contested := Coord{X: 4, Y: 3}
	m.SetTileOwner(b, contested, false)
	if m.TileAt(contested).OwnerCity != a.ID {
		t.Error("overwrite=false stole an owned tile")
	}
	m.SetTileOwner(b, contested, true)
	if m.TileAt(contested).OwnerCity != b.ID {
		t.Error("overwrite=true should reassign the tile")
	}
}

func TestCreateTradeRoutesFindsOwnedSupplier(t *testing.T) {
	m := flatMap(t, 12, 12, 1)

	farmAt := Coord{X: 6, Y: 5}
	siteAt := Coord{X: 4, Y: 5}
	m.TileAt(farmAt).OwnerCiv = 0
	m.TileAt(siteAt).OwnerCiv = 0
	if m.BuildImprovementAt(farmAt, rules.Farm) == nil {
		t.Fatal("farm build failed")
	}
	ws := m.StartConstructionAt(siteAt, rules.Campus)
	if ws == nil {
		t.Fatal("worksite failed")
	}
	// Campus costs production, farms make food: no supplier matches.
	made := m.CreateTradeRoutes(0, siteAt, ws, ws.Errand.Cost, 5, rules.Land)
	if len(made) != 0 {
		t.Errorf("farm should not supply a production requirement, got %d traders", len(made))
	}

	// A food requirement finds the farm.
	made = m.CreateTradeRoutes(0, siteAt, ws, economy.Yield{economy.Food: 5}, 5, rules.Land)
	if len(made) != 1 {
		t.Fatalf("want 1 trader from the farm, got %d", len(made))
	}
	tr := made[0]
	if tr.Route.Coords[0] != farmAt {
		t.Errorf("route starts at %v, want the farm %v", tr.Route.Coords[0], farmAt)
	}
	if last := tr.Route.Coords[len(tr.Route.Coords)-1]; last != siteAt {
		t.Errorf("route ends at %v, want the worksite %v", last, siteAt)
	}
	if tr.Capacity[economy.Food] != 5 {
		t.Errorf("capacity clamps to min(limit, requirement): got %v", tr.Capacity)
	}
}

func TestTileUpdateQueueDrainsInOrder(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	m.TileUpdate(Coord{X: 1, Y: 1})
	m.TileUpdate(Coord{X: 2, Y: 2})
	ups := m.Updates()
	if len(ups) != 2 {
		t.Fatalf("want 2 updates, got %d", len(ups))
	}
	if ups[0].Coords != (Coord{X: 1, Y: 1}) || ups[1].Coords != (Coord{X: 2, Y: 2}) {
		t.Error("updates out of mutation order")
	}
	if len(m.Updates()) != 0 {
		t.Error("drain should empty the queue")
	}
}
