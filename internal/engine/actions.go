package engine

import (
	"log/slog"

	"github.com/talgya/hexrealm/internal/protocol"
	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

// tradeRange is how far trade-route discovery searches around a sink.
const tradeRange = 5

// meleeDamage is the flat damage an attack deals. Combat depth is not a
// core concern; the handler exists so promotion classes and attack
// envelopes are exercised.
const meleeDamage = 10

// Action handlers. Every handler validates completely before mutating
// anything and silently ignores illegal requests; the caller gets a
// bool for logging only. Handlers flush the update queue on success so
// connected players see changes mid-turn.

// MoveUnit walks a unit toward target within its remaining movement,
// relighting its vision cone at the destination.
func (g *Game) MoveUnit(civID, unitID int, target world.Coord) bool {
	civ := g.civByID(civID)
	if civ == nil {
		return false
	}
	u := civ.UnitByID(unitID)
	if u == nil || u.Coords == nil || u.MovesLeft <= 0 {
		return false
	}
	stats := u.Stats(g.Reg)
	tree := g.Map.PathTree(*u.Coords, u.MovesLeft, stats.Move)
	route := g.Map.FindRoute(tree, *u.Coords, target)
	if route == nil || route.Distance == 0 {
		return false
	}
	dst := g.Map.TileAt(target)
	if dst == nil || (dst.Unit != nil && dst.Unit != u) {
		return false
	}

	// Light off at the stale position, relocate, light back on: shared
	// tiles of overlapping cones stay lit throughout.
	g.Map.LightUnit(u, false)
	if err := g.Map.RelocateUnit(u, target); err != nil {
		// Re-light at the old position; the move never happened.
		g.Map.LightUnit(u, true)
		slog.Debug("move refused", "civ", civID, "unit", unitID, "error", err)
		return false
	}
	g.Map.LightUnit(u, true)
	u.MovesLeft -= route.Distance
	if u.MovesLeft < 0 {
		u.MovesLeft = 0
	}

	g.sendToCiv(civID, protocol.UnitPositions(civ.UnitCoords()))
	g.FlushUpdates()
	return true
}

// SettleCity consumes a settler standing at c and founds a city there.
func (g *Game) SettleCity(civID int, c world.Coord, name string) bool {
	civ := g.civByID(civID)
	if civ == nil {
		return false
	}
	t := g.Map.TileAt(c)
	if t == nil || t.Unit == nil || t.Unit.CivID != civID {
		return false
	}
	u := t.Unit
	if u.Stats(g.Reg).Promotion != rules.Civillian || u.Type != rules.Settler {
		return false
	}
	if !t.CanSettleOn() {
		return false
	}

	g.Map.LightUnit(u, false)
	g.Map.RemoveUnit(u)
	civ.removeUnit(u)

	city := g.Map.SettleCityAt(c, name, civID)
	if city == nil {
		// Gates were checked above; reaching here means the map state
		// changed under us, which the single-writer model excludes.
		return false
	}
	// Light the settlement's surroundings for the rest of this turn; the
	// per-turn visibility rebuild relights from units only.
	for _, vc := range g.Map.VisibleTilesFrom(c, 2, world.DefaultStepLength) {
		g.Map.SetTileVisibility(civID, vc, true)
	}
	slog.Info("city founded", "civ", civID, "name", name, "at", c)
	g.FlushUpdates()
	return true
}

// BuildImprovement raises a finished improvement on an owned tile.
func (g *Game) BuildImprovement(civID int, c world.Coord, t rules.ImprovementType) bool {
	tile := g.Map.TileAt(c)
	if tile == nil || tile.OwnerCiv != civID || !tile.CanBuildOn() {
		return false
	}
	if _, known := g.Reg.Improvements[t]; !known || t == rules.Worksite {
		return false
	}
	if g.Map.BuildImprovementAt(c, t) == nil {
		return false
	}
	g.FlushUpdates()
	return true
}

// StartConstruction opens a worksite on an owned tile and wires trade
// routes to feed its construction errand.
func (g *Game) StartConstruction(civID int, c world.Coord, target rules.ImprovementType) bool {
	tile := g.Map.TileAt(c)
	if tile == nil || tile.OwnerCiv != civID || !tile.CanBuildOn() {
		return false
	}
	if tile.Improvement != nil && tile.Improvement.Errand != nil {
		return false
	}
	if _, known := g.Reg.Improvements[target]; !known || target == rules.Worksite {
		return false
	}
	ws := g.Map.StartConstructionAt(c, target)
	if ws == nil {
		return false
	}
	g.Map.CreateTradeRoutes(civID, c, ws, ws.Errand.Cost, tradeRange, rules.Land)
	g.FlushUpdates()
	return true
}

// TrainUnit starts a training errand at an owned improvement, fed by
// trade routes. The unit appears at location (or the improvement) once
// the cost is covered.
func (g *Game) TrainUnit(civID int, c world.Coord, t rules.UnitType, location *world.Coord) bool {
	tile := g.Map.TileAt(c)
	if tile == nil || tile.OwnerCiv != civID || tile.Improvement == nil {
		return false
	}
	stats, known := g.Reg.Units[t]
	if !known {
		return false
	}
	im := tile.Improvement
	if !im.StartErrand(&world.WorkErrand{
		Type:     world.ErrandUnitTraining,
		Option:   string(t),
		Cost:     stats.Cost,
		Location: location,
	}) {
		return false
	}
	g.Map.CreateTradeRoutes(civID, c, im, stats.Cost, tradeRange, rules.Land)
	g.Map.TileUpdate(c)
	g.FlushUpdates()
	return true
}

// Research starts a research errand at an owned improvement; completion
// credits knowledge to the hosting tile.
func (g *Game) Research(civID int, c world.Coord, branch rules.KnowledgeBranch) bool {
	tile := g.Map.TileAt(c)
	if tile == nil || tile.OwnerCiv != civID || tile.Improvement == nil {
		return false
	}
	if _, known := g.Reg.Knowledge[branch]; !known {
		return false
	}
	cost := g.Reg.ResearchCost(branch)
	im := tile.Improvement
	if !im.StartErrand(&world.WorkErrand{
		Type:   world.ErrandResearch,
		Option: string(branch),
		Cost:   cost,
	}) {
		return false
	}
	g.Map.CreateTradeRoutes(civID, c, im, cost, tradeRange, rules.Land)
	g.Map.TileUpdate(c)
	g.FlushUpdates()
	return true
}

// Attack strikes an enemy unit inside the attacker's attack envelope.
func (g *Game) Attack(civID, unitID int, target world.Coord) bool {
	civ := g.civByID(civID)
	if civ == nil {
		return false
	}
	u := civ.UnitByID(unitID)
	if u == nil || u.Coords == nil {
		return false
	}
	stats := u.Stats(g.Reg)
	if stats.Promotion == rules.Civillian {
		return false
	}
	victim := g.Map.TileAt(target)
	if victim == nil || victim.Unit == nil || victim.Unit.CivID == civID {
		return false
	}
	if !g.inAttackEnvelope(u, victim.Coords) {
		return false
	}

	victim.Unit.HP -= meleeDamage
	g.Map.TileUpdate(victim.Coords)
	if victim.Unit.HP <= 0 {
		g.killUnit(victim.Unit)
	}
	g.FlushUpdates()
	return true
}

// inAttackEnvelope checks reach: adjacency for melee, the raycast
// attack envelope for ranged units.
func (g *Game) inAttackEnvelope(u *world.Unit, target world.Coord) bool {
	stats := u.Stats(g.Reg)
	if stats.AttackRange > 0 {
		for _, c := range g.Map.VisibleTilesForUnit(u, true) {
			if n, ok := g.Map.Normalize(c); ok && n == target {
				return true
			}
		}
		return false
	}
	for _, c := range world.AdjacentCoords(*u.Coords) {
		if n, ok := g.Map.Normalize(c); ok && n == target {
			return true
		}
	}
	return false
}

// killUnit removes a dead unit from its tile and its civ's roster.
func (g *Game) killUnit(u *world.Unit) {
	g.Map.LightUnit(u, false)
	g.Map.RemoveUnit(u)
	if civ := g.civByID(u.CivID); civ != nil {
		civ.removeUnit(u)
	}
	slog.Info("unit destroyed", "civ", u.CivID, "unit", u.ID, "type", u.Type)
}

func (g *Game) civByID(civID int) *Civilization {
	if civID < 0 || civID >= len(g.Civs) {
		return nil
	}
	return g.Civs[civID]
}
