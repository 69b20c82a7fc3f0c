package engine

import (
	"fmt"

	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

// Snapshot shapes for the whole game. Import accepts any Export output
// and rebuilds an equivalent game; a shape it cannot reconstruct is
// fatal at load time and no partial state is published.

type UnitExport struct {
	ID        int             `json:"id"`
	CivID     int             `json:"civId"`
	Type      rules.UnitType  `json:"type"`
	HP        int             `json:"hp"`
	MovesLeft int             `json:"movesLeft"`
	Coords    *world.Coord    `json:"coords,omitempty"`
}

type CivExport struct {
	ID    int          `json:"id"`
	Color string       `json:"color"`
	Units []UnitExport `json:"units"`
}

type PlayerExport struct {
	CivID    int  `json:"civId"`
	AI       bool `json:"ai"`
	TurnDone bool `json:"turnDone"`
}

type WorldExport struct {
	Map  world.MapExport `json:"map"`
	Civs []CivExport     `json:"civs"`
	Turn int             `json:"turn"`
}

type GameExport struct {
	World       WorldExport    `json:"world"`
	Players     []PlayerExport `json:"players"`
	PlayerCount int            `json:"playerCount"`
	MetaData    Meta           `json:"metaData"`
	HasStarted  bool           `json:"hasStarted"`
}

// Export snapshots the complete game.
func (g *Game) Export() GameExport {
	out := GameExport{
		World: WorldExport{
			Map:  g.Map.Export(),
			Turn: g.Turn,
		},
		PlayerCount: g.PlayerCount(),
		MetaData:    g.MetaData,
		HasStarted:  g.HasStarted,
	}
	for _, c := range g.Civs {
		ce := CivExport{ID: c.ID, Color: c.Color}
		for _, u := range c.Units {
			ce.Units = append(ce.Units, UnitExport{
				ID:        u.ID,
				CivID:     u.CivID,
				Type:      u.Type,
				HP:        u.HP,
				MovesLeft: u.MovesLeft,
				Coords:    u.Coords,
			})
		}
		out.World.Civs = append(out.World.Civs, ce)
	}
	for _, p := range g.Players {
		out.Players = append(out.Players, PlayerExport{CivID: p.CivID, AI: p.AI, TurnDone: p.TurnDone})
	}
	return out
}

// Import rebuilds a game from a snapshot.
func Import(ex GameExport, reg *rules.Registry) (*Game, error) {
	m, err := world.ImportMap(ex.World.Map, reg)
	if err != nil {
		return nil, err
	}
	g := &Game{
		Map:        m,
		Reg:        reg,
		Turn:       ex.World.Turn,
		MetaData:   ex.MetaData,
		HasStarted: ex.HasStarted,
		nextUnitID: 1,
	}
	for _, ce := range ex.World.Civs {
		civ := &Civilization{ID: ce.ID, Color: ce.Color}
		for _, ue := range ce.Units {
			u := &world.Unit{
				ID:        ue.ID,
				CivID:     ue.CivID,
				Type:      ue.Type,
				HP:        ue.HP,
				MovesLeft: ue.MovesLeft,
			}
			if _, known := reg.Units[u.Type]; !known {
				return nil, fmt.Errorf("import game: unknown unit type %q", u.Type)
			}
			if ue.Coords != nil {
				if err := m.PlaceUnit(u, *ue.Coords); err != nil {
					return nil, fmt.Errorf("import game: %w", err)
				}
			}
			if u.ID >= g.nextUnitID {
				g.nextUnitID = u.ID + 1
			}
			civ.Units = append(civ.Units, u)
		}
		g.Civs = append(g.Civs, civ)
	}
	for _, pe := range ex.Players {
		g.Players = append(g.Players, &Player{CivID: pe.CivID, AI: pe.AI, TurnDone: pe.TurnDone})
	}
	if len(g.Players) != ex.PlayerCount {
		return nil, fmt.Errorf("import game: player count mismatch: %d vs %d", len(g.Players), ex.PlayerCount)
	}
	// Placement queued change notices; a restored game starts clean.
	m.Updates()
	return g, nil
}
