package world

import (
	"github.com/talgya/hexrealm/internal/economy"
	"github.com/talgya/hexrealm/internal/rules"
)

// civSightRange is the vision radius used when a civ's visibility is
// rebuilt from scratch at the start of its turn.
const civSightRange = 3

// UnitView is the published snapshot of a unit on a visible tile.
type UnitView struct {
	ID    int             `json:"id"`
	CivID int             `json:"civId"`
	Type  rules.UnitType  `json:"type"`
	HP    int             `json:"hp"`
}

// TileView is the fog-of-war-filtered snapshot of one tile published to
// a civ. Undiscovered tiles have no view at all; discovered-but-unseen
// tiles get the snapshot minus the unit.
type TileView struct {
	Coords      Coord                 `json:"coords"`
	Terrain     Terrain               `json:"terrain"`
	Yield       economy.Yield         `json:"yield"`
	Improvement rules.ImprovementType `json:"improvement,omitempty"`
	Pillaged    bool                  `json:"pillaged,omitempty"`
	OwnerCity   int                   `json:"ownerCity,omitempty"`
	OwnerCiv    int                   `json:"ownerCiv"`
	Visible     bool                  `json:"visible"`
	Unit        *UnitView             `json:"unit,omitempty"`
}

// CivTileView renders the per-civ snapshot of a tile: nil when the civ
// has not discovered it, the full view while visible, and a unit-free
// stale view once discovered but out of sight.
func (m *Map) CivTileView(civID int, t *Tile) *TileView {
	if t == nil || !t.DiscoveredBy(civID) {
		return nil
	}
	v := &TileView{
		Coords:    t.Coords,
		Terrain:   t.Terrain,
		Yield:     t.Yield(m.reg),
		OwnerCity: t.OwnerCity,
		OwnerCiv:  t.OwnerCiv,
		Visible:   t.VisibleTo(civID),
	}
	if t.Improvement != nil {
		v.Improvement = t.Improvement.Type
		v.Pillaged = t.Improvement.Pillaged
	}
	if v.Visible && t.Unit != nil {
		v.Unit = &UnitView{
			ID:    t.Unit.ID,
			CivID: t.Unit.CivID,
			Type:  t.Unit.Type,
			HP:    t.Unit.HP,
		}
	}
	return v
}

// CivMap renders the full per-civ map: width*height entries row-major,
// nil for undiscovered tiles.
func (m *Map) CivMap(civID int) []*TileView {
	out := make([]*TileView, len(m.Tiles))
	for i, t := range m.Tiles {
		out[i] = m.CivTileView(civID, t)
	}
	return out
}

// LightUnit turns the unit's vision cone on or off, reference-counting
// each covered tile. Movement uses light-off at the old position and
// light-on at the new one; overlapping cones keep shared tiles lit.
func (m *Map) LightUnit(u *Unit, on bool) {
	for _, c := range m.VisibleTilesForUnit(u, false) {
		m.SetTileVisibility(u.CivID, c, on)
	}
}

// RebuildCivVisibility clears every visibility counter of the civ and
// relights from each of its units with the turn sight range. Discovery
// flags are untouched. The unit list is supplied by the caller: rosters
// belong to civilizations, not the map.
func (m *Map) RebuildCivVisibility(civID int, units []*Unit) {
	for _, t := range m.Tiles {
		t.clearVisibility(civID)
	}
	for _, u := range units {
		if u.Coords == nil {
			continue
		}
		for _, c := range m.VisibleTilesFrom(*u.Coords, civSightRange, DefaultStepLength) {
			m.SetTileVisibility(civID, c, true)
		}
	}
}
