package world

import "github.com/talgya/hexrealm/internal/rules"

// Unit is a mobile piece on the map. Coords is nil until the unit is
// placed; exactly one tile's slot references a placed unit, and that
// tile's coords equal the unit's.
type Unit struct {
	ID        int
	CivID     int
	Type      rules.UnitType
	HP        int
	MovesLeft int
	Coords    *Coord
}

// NewUnit creates an unplaced unit of the given type with full hp and
// movement.
func NewUnit(id, civID int, t rules.UnitType, reg *rules.Registry) *Unit {
	stats := reg.Units[t]
	return &Unit{
		ID:        id,
		CivID:     civID,
		Type:      t,
		HP:        stats.HP,
		MovesLeft: stats.Movement,
	}
}

// Stats returns the registry row for this unit's type.
func (u *Unit) Stats(reg *rules.Registry) rules.UnitStats {
	return reg.Units[u.Type]
}

// NewTurn refreshes the unit's movement allowance.
func (u *Unit) NewTurn(reg *rules.Registry) {
	u.MovesLeft = reg.Units[u.Type].Movement
}
