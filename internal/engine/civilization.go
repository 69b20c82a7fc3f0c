// Package engine owns the authoritative game state and advances it in
// discrete turns. All mutation runs on the single simulation goroutine
// driven by the Runner.
package engine

import (
	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

// civColors is the palette assigned to civs in ID order.
var civColors = []string{
	"#d44", "#48d", "#4a4", "#da2", "#a4d", "#2cc", "#d82", "#888",
}

// Civilization is one player-owned faction.
type Civilization struct {
	ID    int
	Color string
	Units []*world.Unit
}

// NewCivilization creates a civ with its palette color.
func NewCivilization(id int) *Civilization {
	return &Civilization{
		ID:    id,
		Color: civColors[id%len(civColors)],
	}
}

// NewTurn refreshes movement for every unit in the roster.
func (c *Civilization) NewTurn(reg *rules.Registry) {
	for _, u := range c.Units {
		u.NewTurn(reg)
	}
}

// UnitByID returns the roster unit with the given ID, nil if absent.
func (c *Civilization) UnitByID(id int) *world.Unit {
	for _, u := range c.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// removeUnit drops a unit from the roster.
func (c *Civilization) removeUnit(u *world.Unit) {
	out := c.Units[:0]
	for _, x := range c.Units {
		if x != u {
			out = append(out, x)
		}
	}
	c.Units = out
}

// UnitCoords lists the coords of every placed unit.
func (c *Civilization) UnitCoords() []world.Coord {
	var out []world.Coord
	for _, u := range c.Units {
		if u.Coords != nil {
			out = append(out, *u.Coords)
		}
	}
	return out
}
