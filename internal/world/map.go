package world

import (
	"fmt"

	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// knowledgeSpilloverDecay is applied per hex step when knowledge leaks
// to neighboring tiles at end of turn.
const knowledgeSpilloverDecay = 0.1

// researchPoints is the knowledge credited to a tile when a RESEARCH
// errand completes.
const researchPoints = 10

// UnitSpawner is the hook the map uses to materialize units when a
// training errand completes. The game implements it: spawning touches
// the civ roster, which the map does not own.
type UnitSpawner interface {
	SpawnUnitAt(civID int, t rules.UnitType, c Coord) *Unit
}

// PendingUpdate is one queued tile change notice. The queue preserves
// mutation order; the game drains it and renders a per-civ view of each
// touched tile.
type PendingUpdate struct {
	Coords Coord
	Tile   *Tile
}

// Map owns every tile, city, and trader. All mutation runs on the
// simulation goroutine.
type Map struct {
	Width    int
	Height   int
	CivCount int

	Tiles   []*Tile // row-major, pos = y*width + mod(x, width)
	Cities  []*City
	Traders []*Trader

	reg     *rules.Registry
	updates []PendingUpdate

	nextCityID int
}

// NewMap builds an empty map; terrain comes from Generate or import.
func NewMap(width, height, civCount int, reg *rules.Registry) *Map {
	m := &Map{
		Width:      width,
		Height:     height,
		CivCount:   civCount,
		Tiles:      make([]*Tile, width*height),
		reg:        reg,
		nextCityID: 1,
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := Coord{X: x, Y: y}
			m.Tiles[m.Pos(c)] = NewTile(c, TerrainGrass, civCount)
		}
	}
	return m
}

// Registry exposes the read-only rule tables the map was built with.
func (m *Map) Registry() *rules.Registry {
	return m.reg
}

// Pos maps a coord to its flat row-major index. The x axis wraps.
func (m *Map) Pos(c Coord) int {
	return c.Y*m.Width + mod(c.X, m.Width)
}

// Normalize wraps x into [0, width) and reports whether y is on the map.
func (m *Map) Normalize(c Coord) (Coord, bool) {
	if c.Y < 0 || c.Y >= m.Height {
		return Coord{}, false
	}
	return Coord{X: mod(c.X, m.Width), Y: c.Y}, true
}

// TileAt returns the tile at c, nil when y is off the map.
func (m *Map) TileAt(c Coord) *Tile {
	n, ok := m.Normalize(c)
	if !ok {
		return nil
	}
	return m.Tiles[m.Pos(n)]
}

func (m *Map) tileAtPos(p int) *Tile {
	if p < 0 || p >= len(m.Tiles) {
		return nil
	}
	return m.Tiles[p]
}

// TileUpdate queues a change notice for the tile at c. Every mutation
// that alters a tile's published state must call it.
func (m *Map) TileUpdate(c Coord) {
	t := m.TileAt(c)
	if t == nil {
		return
	}
	m.updates = append(m.updates, PendingUpdate{Coords: t.Coords, Tile: t})
}

// Updates drains the queued change notices in mutation order.
func (m *Map) Updates() []PendingUpdate {
	out := m.updates
	m.updates = nil
	return out
}

// SetTileVisibility adjusts one tile's visibility counter for a civ.
func (m *Map) SetTileVisibility(civID int, c Coord, on bool) {
	if t := m.TileAt(c); t != nil {
		t.SetVisibility(civID, on)
	}
}

// CityByID returns a city by its handle, nil if unknown.
func (m *Map) CityByID(id int) *City {
	for _, c := range m.Cities {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// SettleCityAt founds a city at c for the civ, claims the center and
// its six neighbors, and raises a settlement improvement. Returns nil
// when the tile refuses settlement.
func (m *Map) SettleCityAt(c Coord, name string, civID int) *City {
	t := m.TileAt(c)
	if t == nil || !t.CanSettleOn() {
		return nil
	}
	city := &City{
		ID:     m.nextCityID,
		Name:   name,
		CivID:  civID,
		Center: t.Coords,
	}
	m.nextCityID++
	m.Cities = append(m.Cities, city)

	m.SetTileOwner(city, t.Coords, true)
	for _, nc := range AdjacentCoords(t.Coords) {
		m.SetTileOwner(city, nc, false)
	}

	if t.Improvement != nil {
		t.Improvement.release()
	}
	t.Improvement = NewImprovement(rules.Settlement, m.reg)
	m.TileUpdate(t.Coords)
	return city
}

// SetTileOwner assigns a tile to a city. With overwrite false, a tile
// that already has an owner is left alone. Unsettleable terrain never
// takes an owner.
func (m *Map) SetTileOwner(city *City, c Coord, overwrite bool) {
	t := m.TileAt(c)
	if t == nil {
		return
	}
	if settleBlocked[t.Terrain] {
		return
	}
	if t.OwnerCity != 0 && !overwrite {
		return
	}
	if t.OwnerCity == city.ID {
		return
	}
	t.OwnerCity = city.ID
	t.OwnerCiv = city.CivID
	if !city.ownsCoord(t.Coords) {
		city.Owned = append(city.Owned, t.Coords)
	}
	m.TileUpdate(t.Coords)
}

// BuildImprovementAt raises a finished improvement on the tile,
// replacing any prior one. The tile's base yield is untouched.
func (m *Map) BuildImprovementAt(c Coord, t rules.ImprovementType) *Improvement {
	tile := m.TileAt(c)
	if tile == nil || !tile.CanBuildOn() {
		return nil
	}
	if tile.Improvement != nil {
		tile.Improvement.release()
	}
	im := NewImprovement(t, m.reg)
	tile.Improvement = im
	m.TileUpdate(tile.Coords)
	return im
}

// StartConstructionAt raises a worksite on the tile and attaches a
// CONSTRUCTION errand for the target improvement type.
func (m *Map) StartConstructionAt(c Coord, target rules.ImprovementType) *Improvement {
	tile := m.TileAt(c)
	if tile == nil || !tile.CanBuildOn() {
		return nil
	}
	ws := NewImprovement(rules.Worksite, m.reg)
	if !ws.StartErrand(&WorkErrand{
		Type:   ErrandConstruction,
		Option: string(target),
		Cost:   m.reg.ConstructionCost(target),
	}) {
		return nil
	}
	if tile.Improvement != nil {
		tile.Improvement.release()
	}
	tile.Improvement = ws
	m.TileUpdate(tile.Coords)
	return ws
}

// PlaceUnit puts an unplaced unit into the tile's slot. Fails when the
// slot is taken.
func (m *Map) PlaceUnit(u *Unit, c Coord) error {
	t := m.TileAt(c)
	if t == nil {
		return fmt.Errorf("place unit: no tile at %v", c)
	}
	if t.Unit != nil {
		return fmt.Errorf("place unit: tile %v occupied", t.Coords)
	}
	t.Unit = u
	coords := t.Coords
	u.Coords = &coords
	m.TileUpdate(t.Coords)
	return nil
}

// RemoveUnit clears a unit from its tile slot, leaving it unplaced.
func (m *Map) RemoveUnit(u *Unit) {
	if u.Coords == nil {
		return
	}
	t := m.TileAt(*u.Coords)
	if t != nil && t.Unit == u {
		t.Unit = nil
		m.TileUpdate(t.Coords)
	}
	u.Coords = nil
}

// RelocateUnit moves a unit between tile slots atomically: the old slot
// is cleared and the new one filled in one step, so the unit is never
// referenced by zero or two tiles.
func (m *Map) RelocateUnit(u *Unit, to Coord) error {
	dst := m.TileAt(to)
	if dst == nil {
		return fmt.Errorf("relocate unit: no tile at %v", to)
	}
	if dst.Unit != nil && dst.Unit != u {
		return fmt.Errorf("relocate unit: tile %v occupied", dst.Coords)
	}
	if u.Coords != nil {
		if src := m.TileAt(*u.Coords); src != nil && src.Unit == u {
			src.Unit = nil
			m.TileUpdate(src.Coords)
		}
	}
	dst.Unit = u
	coords := dst.Coords
	u.Coords = &coords
	m.TileUpdate(dst.Coords)
	return nil
}

// CreateTradeRoutes discovers producers for a requirement around the
// sink and launches a trader from each. Candidates are owned tiles of
// the civ within range whose improvement can supply the requirement,
// visited nearest first. A candidate whose route cannot be validated is
// skipped; discovery continues with the rest.
func (m *Map) CreateTradeRoutes(civID int, sinkCoords Coord, sink *Improvement, requirement economy.Yield, rng int, mode rules.MovementClass) []*Trader {
	sinkTile := m.TileAt(sinkCoords)
	if sinkTile == nil || sinkTile.Improvement != sink {
		return nil
	}
	tree := m.PathTree(sinkCoords, rng, mode)
	var made []*Trader
	for _, pos := range tree.byDistance() {
		t := m.tileAtPos(pos)
		if t == nil || t == sinkTile {
			continue
		}
		if t.OwnerCiv != civID || t.Improvement == nil {
			continue
		}
		if !t.Improvement.CanSupply(requirement, m.reg) {
			continue
		}
		// Route is discovered from the sink outward; reverse it so the
		// trader walks producer → sink.
		route := m.FindRoute(tree, sinkCoords, t.Coords)
		if route == nil {
			continue
		}
		reverseCoords(route.Coords)
		tr := &Trader{
			CivID:    civID,
			Route:    *route,
			Producer: m.Pos(route.Coords[0]),
			Sink:     m.Pos(route.Coords[len(route.Coords)-1]),
			Speed:    TraderSpeed,
			Capacity: requirement.Min(fullTraderCapacity()),
			Carried:  economy.NewYield(),
			Outbound: true,
		}
		t.Improvement.Traders = append(t.Improvement.Traders, tr)
		sink.Suppliers = append(sink.Suppliers, tr)
		m.Traders = append(m.Traders, tr)
		made = append(made, tr)
	}
	return made
}

func fullTraderCapacity() economy.Yield {
	full := economy.NewYield()
	for _, r := range economy.AllResources {
		full[r] = TraderCapacity
	}
	return full
}

func reverseCoords(cs []Coord) {
	for i, j := 0, len(cs)-1; i < j; i, j = i+1, j-1 {
		cs[i], cs[j] = cs[j], cs[i]
	}
}

// Turn advances the whole map by one turn: every improvement works and
// completes errands, knowledge spills over, traders advance, expired
// traders are reaped.
func (m *Map) Turn(spawner UnitSpawner) {
	for _, t := range m.Tiles {
		if t.Improvement != nil {
			t.Improvement.work(m.reg)
			if e := t.Improvement.Errand; e != nil && e.Completed {
				m.completeErrand(t, e, spawner)
				if t.Improvement != nil {
					t.Improvement.Errand = nil
				}
				m.TileUpdate(t.Coords)
			}
		}
	}

	m.spillKnowledge()

	for _, tr := range m.Traders {
		tr.shunt(m)
	}
	m.reapTraders()
}

// completeErrand applies the type-specific completion effect.
func (m *Map) completeErrand(t *Tile, e *WorkErrand, spawner UnitSpawner) {
	switch e.Type {
	case ErrandConstruction:
		// Suppliers expired when the errand completed; outgoing traders
		// of the replaced worksite are released with it.
		if t.Improvement != nil {
			t.Improvement.release()
		}
		built := NewImprovement(rules.ImprovementType(e.Option), m.reg)
		t.Improvement = built
	case ErrandUnitTraining:
		at := t.Coords
		if e.Location != nil {
			at = *e.Location
		}
		if spawner != nil {
			spawner.SpawnUnitAt(t.OwnerCiv, rules.UnitType(e.Option), at)
		}
	case ErrandResearch:
		branch := rules.KnowledgeBranch(e.Option)
		t.AddKnowledge(branch, researchPoints, 0, m.reg.Knowledge[branch])
	}
}

// spillKnowledge leaks knowledge from every tile still below its branch
// cap to the six neighbors, with one decay step applied. Emissions are
// collected first so a single turn cannot cascade.
func (m *Map) spillKnowledge() {
	type emission struct {
		to     *Tile
		branch rules.KnowledgeBranch
		points int
	}
	var emissions []emission
	for _, t := range m.Tiles {
		for branch, points := range t.Knowledge {
			if points <= 0 || points >= m.reg.Knowledge[branch] {
				continue
			}
			for _, nc := range AdjacentCoords(t.Coords) {
				if nt := m.TileAt(nc); nt != nil {
					emissions = append(emissions, emission{to: nt, branch: branch, points: points})
				}
			}
		}
	}
	for _, e := range emissions {
		e.to.AddKnowledge(e.branch, e.points, knowledgeSpilloverDecay, m.reg.Knowledge[e.branch])
	}
}

// reapTraders removes expired traders from the map and from their
// endpoint improvements' subscriber lists.
func (m *Map) reapTraders() {
	kept := m.Traders[:0]
	for _, tr := range m.Traders {
		if !tr.Expired {
			kept = append(kept, tr)
			continue
		}
		if pt := m.tileAtPos(tr.Producer); pt != nil && pt.Improvement != nil {
			pt.Improvement.pruneTrader(tr)
		}
		if st := m.tileAtPos(tr.Sink); st != nil && st.Improvement != nil {
			st.Improvement.pruneTrader(tr)
		}
	}
	m.Traders = kept
}
