package world

import (
	"testing"

	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// TestWorksiteBecomesFarm drives the full economic loop: a worksite
// with a construction errand, a farm supplying food over a trade
// route, and the turn tick carrying resources until completion.
func TestWorksiteBecomesFarm(t *testing.T) {
	m := flatMap(t, 12, 12, 1)
	reg := m.Registry()

	farmAt := Coord{X: 6, Y: 5}
	siteAt := Coord{X: 4, Y: 5}
	m.TileAt(farmAt).OwnerCiv = 0
	m.TileAt(siteAt).OwnerCiv = 0

	if m.BuildImprovementAt(farmAt, rules.Farm) == nil {
		t.Fatal("supplier farm failed")
	}
	ws := m.StartConstructionAt(siteAt, rules.Farm)
	if ws == nil {
		t.Fatal("worksite failed")
	}
	cost := ws.Errand.Cost
	if cost[economy.Food] != 5 {
		t.Fatalf("farm construction costs %v", cost)
	}
	if got := ws.Store.Capacity[economy.Food]; got < 5 {
		t.Fatalf("errand must raise capacity to cost, got %d", got)
	}

	if made := m.CreateTradeRoutes(0, siteAt, ws, cost, 5, rules.Land); len(made) != 1 {
		t.Fatalf("want 1 supplier trader, got %d", len(made))
	}

	var done bool
	for turn := 0; turn < 12; turn++ {
		m.Turn(nil)
		site := m.TileAt(siteAt)
		if site.Improvement != nil && site.Improvement.Type == rules.Farm {
			done = true
			break
		}
		// Store never exceeds capacity while work is in flight.
		if site.Improvement != nil {
			for k, v := range site.Improvement.Store.Value {
				if max, ok := site.Improvement.Store.Capacity[k]; ok && v > max {
					t.Fatalf("store %v exceeds capacity %v", site.Improvement.Store.Value, site.Improvement.Store.Capacity)
				}
			}
		}
	}
	if !done {
		t.Fatal("construction never completed")
	}

	site := m.TileAt(siteAt)
	if site.Improvement.Errand != nil {
		t.Error("errand should be gone after completion")
	}
	wantCap := reg.Improvements[rules.Farm].StoreCap
	for k, v := range wantCap {
		if site.Improvement.Store.Capacity[k] != v {
			t.Errorf("farm capacity %v, want %v", site.Improvement.Store.Capacity, wantCap)
		}
	}
	yield := site.Yield(reg)
	want := site.BaseYield.Clone()
	want.Add(reg.Improvements[rules.Farm].Yield)
	for k, v := range want {
		if yield[k] != v {
			t.Errorf("tile yield %v, want base+farm %v", yield, want)
		}
	}
	if len(m.Traders) != 0 {
		t.Errorf("supplier trader should be reaped after completion, %d remain", len(m.Traders))
	}
}

// TestTraderExpiresWithErrand is the expiry half in isolation: when the
// fed errand completes, the trader is marked expired and reaped at the
// end of that map turn.
func TestTraderExpiresWithErrand(t *testing.T) {
	m := flatMap(t, 12, 12, 1)

	prodAt := Coord{X: 3, Y: 3}
	sinkAt := Coord{X: 4, Y: 3}
	m.TileAt(prodAt).OwnerCiv = 0
	m.TileAt(sinkAt).OwnerCiv = 0
	m.BuildImprovementAt(prodAt, rules.Farm)

	sink := m.StartConstructionAt(sinkAt, rules.Farm)
	if sink == nil {
		t.Fatal("worksite failed")
	}
	made := m.CreateTradeRoutes(0, sinkAt, sink, sink.Errand.Cost, 5, rules.Land)
	if len(made) != 1 {
		t.Fatalf("want 1 trader, got %d", len(made))
	}
	tr := made[0]

	// Hand the sink its full cost directly: the errand completes on the
	// next work pass, which must expire and reap the supplier.
	sink.Store.Incr(sink.Errand.Cost)
	m.Turn(nil)

	if !tr.Expired {
		t.Error("trader should expire when its errand completes")
	}
	if len(m.Traders) != 0 {
		t.Errorf("expired trader should be reaped, %d remain", len(m.Traders))
	}
}

// TestReplacingImprovementReleasesTraders rebuilds both endpoints of a
// live trade route: the attached carriers must expire rather than keep
// shunting against the successor improvements' stores.
func TestReplacingImprovementReleasesTraders(t *testing.T) {
	m := flatMap(t, 12, 12, 1)

	prodAt := Coord{X: 3, Y: 3}
	sinkAt := Coord{X: 5, Y: 3}
	m.TileAt(prodAt).OwnerCiv = 0
	m.TileAt(sinkAt).OwnerCiv = 0
	m.BuildImprovementAt(prodAt, rules.Farm)

	sink := m.StartConstructionAt(sinkAt, rules.Campus)
	if sink == nil {
		t.Fatal("worksite failed")
	}
	made := m.CreateTradeRoutes(0, sinkAt, sink, economy.Yield{economy.Food: 5}, 5, rules.Land)
	if len(made) != 1 {
		t.Fatalf("want 1 trader, got %d", len(made))
	}

	// Rebuilding the producer discards the farm the trader was created
	// against.
	if m.BuildImprovementAt(prodAt, rules.Mine) == nil {
		t.Fatal("rebuild failed")
	}
	if !made[0].Expired {
		t.Error("trader should expire with its replaced producer")
	}
	m.Turn(nil)
	if len(m.Traders) != 0 {
		t.Errorf("released trader should be reaped, %d remain", len(m.Traders))
	}

	// Same from the sink side: a fresh route, then the sink worksite is
	// replaced outright.
	m.BuildImprovementAt(prodAt, rules.Farm)
	made = m.CreateTradeRoutes(0, sinkAt, sink, economy.Yield{economy.Food: 5}, 5, rules.Land)
	if len(made) != 1 {
		t.Fatalf("want 1 trader on the second route, got %d", len(made))
	}
	if m.BuildImprovementAt(sinkAt, rules.Encampment) == nil {
		t.Fatal("sink rebuild failed")
	}
	if !made[0].Expired {
		t.Error("trader should expire with its replaced sink")
	}
}

func TestTrainingErrandSpawnsUnit(t *testing.T) {
	m := flatMap(t, 12, 12, 1)
	at := Coord{X: 5, Y: 5}
	city := m.SettleCityAt(at, "Forge", 0)
	if city == nil {
		t.Fatal("settle failed")
	}
	im := m.TileAt(at).Improvement
	cost := m.Registry().Units[rules.Scout].Cost
	if !im.StartErrand(&WorkErrand{
		Type:   ErrandUnitTraining,
		Option: string(rules.Scout),
		Cost:   cost,
	}) {
		t.Fatal("errand refused")
	}
	im.Store.Incr(cost)

	spawner := &recordingSpawner{}
	m.Turn(spawner)

	if len(spawner.spawned) != 1 {
		t.Fatalf("want 1 spawn, got %d", len(spawner.spawned))
	}
	if spawner.spawned[0].t != rules.Scout || spawner.spawned[0].civ != 0 {
		t.Errorf("spawn call %+v", spawner.spawned[0])
	}
	if im.Errand != nil {
		t.Error("errand should be cleared after completion")
	}
}

type spawnCall struct {
	civ int
	t   rules.UnitType
	c   Coord
}

type recordingSpawner struct {
	spawned []spawnCall
}

func (r *recordingSpawner) SpawnUnitAt(civID int, t rules.UnitType, c Coord) *Unit {
	r.spawned = append(r.spawned, spawnCall{civ: civID, t: t, c: c})
	return nil
}

func TestResearchErrandCreditsKnowledge(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	at := Coord{X: 4, Y: 4}
	m.TileAt(at).OwnerCiv = 0
	im := m.BuildImprovementAt(at, rules.Campus)
	if im == nil {
		t.Fatal("campus failed")
	}
	cost := m.Registry().ResearchCost(rules.Masonry)
	if !im.StartErrand(&WorkErrand{
		Type:   ErrandResearch,
		Option: string(rules.Masonry),
		Cost:   cost,
	}) {
		t.Fatal("errand refused")
	}
	im.Store.Incr(cost)
	m.Turn(nil)

	if pts := m.TileAt(at).Knowledge[rules.Masonry]; pts <= 0 {
		t.Errorf("masonry points after research: %d", pts)
	}
}

func TestKnowledgeSpilloverDecaysAndClamps(t *testing.T) {
	m := flatMap(t, 10, 10, 1)
	src := m.TileAt(Coord{X: 5, Y: 5})
	src.Knowledge[rules.Masonry] = 50

	m.Turn(nil)

	for _, nc := range AdjacentCoords(src.Coords) {
		n := m.TileAt(nc)
		if n.Knowledge[rules.Masonry] != 45 {
			t.Errorf("neighbor %v: got %d points, want 45 (decay 0.1)", nc, n.Knowledge[rules.Masonry])
		}
	}

	// A saturated tile stops emitting, and neighbors above the incoming
	// amount never decrease.
	max := m.Registry().Knowledge[rules.Masonry]
	src.Knowledge[rules.Masonry] = max
	high := m.TileAt(AdjacentCoords(src.Coords)[0])
	high.Knowledge[rules.Masonry] = max
	m.Turn(nil)
	if high.Knowledge[rules.Masonry] != max {
		t.Errorf("knowledge decreased at clamp: %d", high.Knowledge[rules.Masonry])
	}
}

func TestAddKnowledgeNeverDecreases(t *testing.T) {
	m := flatMap(t, 4, 4, 1)
	tile := m.TileAt(Coord{X: 1, Y: 1})
	tile.Knowledge[rules.Military] = 80
	tile.AddKnowledge(rules.Military, 100, 0, 60)
	if tile.Knowledge[rules.Military] != 80 {
		t.Errorf("clamped add must be a no-op above max, got %d", tile.Knowledge[rules.Military])
	}
	tile.AddKnowledge(rules.Military, 10, 0, 100)
	if tile.Knowledge[rules.Military] != 90 {
		t.Errorf("add below max: got %d, want 90", tile.Knowledge[rules.Military])
	}
}
