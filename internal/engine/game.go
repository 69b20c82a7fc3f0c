package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/hexrealm/internal/protocol"
	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

// Sender is the transport sink of one connected player. AIs have none.
type Sender interface {
	Send(msg string) error
}

// Player is one seat at the table. A disconnect flips the seat to AI;
// the civ keeps existing and keeps being ticked.
type Player struct {
	CivID    int
	AI       bool
	TurnDone bool

	conn Sender
}

// Meta is free-form game metadata carried through snapshots.
type Meta struct {
	Name string `json:"name"`
}

// Game composes the map, the civilizations, and the seats, and owns the
// turn lifecycle.
type Game struct {
	Map     *world.Map
	Reg     *rules.Registry
	Civs    []*Civilization
	Players []*Player // indexed by civ ID
	Turn    int

	HasStarted bool
	MetaData   Meta

	nextUnitID int
}

// NewGame wires a fresh game around a generated map.
func NewGame(m *world.Map, reg *rules.Registry, playerCount int, meta Meta) *Game {
	g := &Game{
		Map:        m,
		Reg:        reg,
		MetaData:   meta,
		nextUnitID: 1,
	}
	for i := 0; i < playerCount; i++ {
		g.Civs = append(g.Civs, NewCivilization(i))
		g.Players = append(g.Players, &Player{CivID: i, AI: true})
	}
	return g
}

// PlayerCount returns the number of seats.
func (g *Game) PlayerCount() int {
	return len(g.Players)
}

// Connect binds a transport sink to a seat, flipping it human.
func (g *Game) Connect(civID int, conn Sender) {
	if civID < 0 || civID >= len(g.Players) {
		return
	}
	p := g.Players[civID]
	p.conn = conn
	p.AI = false
	slog.Info("player connected", "civ", civID)
}

// Disconnect converts the seat to AI. No in-flight action is rolled
// back; the civ is ticked as usual from the next turn on.
func (g *Game) Disconnect(civID int) {
	if civID < 0 || civID >= len(g.Players) {
		return
	}
	p := g.Players[civID]
	p.conn = nil
	p.AI = true
	slog.Info("player disconnected, seat now AI", "civ", civID)
}

// sendToCiv delivers events to a seat. Messages to AI seats are
// silently dropped; a human seat without a live sink is logged and
// skipped, the simulation is unaffected.
func (g *Game) sendToCiv(civID int, events ...protocol.Event) {
	if civID < 0 || civID >= len(g.Players) {
		return
	}
	p := g.Players[civID]
	if p.AI {
		return
	}
	if p.conn == nil {
		slog.Warn("no connected player for civ", "civ", civID)
		return
	}
	msg, err := protocol.Encode(events...)
	if err != nil {
		slog.Error("encode message", "civ", civID, "error", err)
		return
	}
	if err := p.conn.Send(msg); err != nil {
		slog.Warn("send to civ failed", "civ", civID, "error", err)
	}
}

// Start opens the game: initial units are spawned, every seat gets the
// opening handshake and its first turn.
func (g *Game) Start() {
	if g.HasStarted {
		return
	}
	g.HasStarted = true

	civData := make(map[int]protocol.CivInfo, len(g.Civs))
	for _, c := range g.Civs {
		civData[c.ID] = protocol.CivInfo{Color: c.Color}
	}
	for _, c := range g.Civs {
		g.sendToCiv(c.ID,
			protocol.BeginGame(g.Map.Width, g.Map.Height, g.PlayerCount()),
			protocol.CivData(civData),
		)
	}

	g.placeStartingUnits()
	g.Turn = 1
	for _, c := range g.Civs {
		g.beginTurn(c.ID)
	}
	slog.Info("game started", "civs", len(g.Civs), "map", fmt.Sprintf("%dx%d", g.Map.Width, g.Map.Height))
}

// placeStartingUnits drops a settler and a scout for each civ on
// settleable land, spread across the map by column.
func (g *Game) placeStartingUnits() {
	for _, civ := range g.Civs {
		home := g.findStartTile(civ.ID)
		if home == nil {
			slog.Warn("no start tile for civ", "civ", civ.ID)
			continue
		}
		g.SpawnUnitAt(civ.ID, rules.Settler, home.Coords)
		for _, nc := range world.AdjacentCoords(home.Coords) {
			if t := g.Map.TileAt(nc); t != nil && t.CanSettleOn() && t.Unit == nil {
				g.SpawnUnitAt(civ.ID, rules.Scout, t.Coords)
				break
			}
		}
	}
}

// findStartTile scans the civ's slice of the map for settleable ground.
func (g *Game) findStartTile(civID int) *world.Tile {
	stride := g.Map.Width / len(g.Civs)
	if stride == 0 {
		stride = 1
	}
	startX := civID * stride
	for dx := 0; dx < g.Map.Width; dx++ {
		for y := 0; y < g.Map.Height; y++ {
			t := g.Map.TileAt(world.Coord{X: startX + dx, Y: y})
			if t != nil && t.CanSettleOn() && t.Unit == nil {
				return t
			}
		}
	}
	return nil
}

// SpawnUnitAt creates a unit, adds it to the civ roster, places it, and
// lights its vision cone. Returns nil when the civ is unknown or the
// tile slot is taken. Implements world.UnitSpawner for errand
// completion.
func (g *Game) SpawnUnitAt(civID int, t rules.UnitType, c world.Coord) *world.Unit {
	if civID < 0 || civID >= len(g.Civs) {
		return nil
	}
	if _, known := g.Reg.Units[t]; !known {
		return nil
	}
	u := world.NewUnit(g.nextUnitID, civID, t, g.Reg)
	if err := g.Map.PlaceUnit(u, c); err != nil {
		slog.Debug("spawn refused", "civ", civID, "type", t, "error", err)
		return nil
	}
	g.nextUnitID++
	g.Civs[civID].Units = append(g.Civs[civID].Units, u)
	g.Map.LightUnit(u, true)
	return u
}

// MarkTurnDone records a human seat's end-turn request; the world
// advances once every human seat is done.
func (g *Game) MarkTurnDone(civID int) {
	if civID < 0 || civID >= len(g.Players) {
		return
	}
	g.Players[civID].TurnDone = true
	if g.allHumansDone() {
		g.EndTurn()
	}
}

func (g *Game) allHumansDone() bool {
	for _, p := range g.Players {
		if !p.AI && !p.TurnDone {
			return false
		}
	}
	return true
}

// EndTurn advances the whole world by one turn:
//
//  1. every human seat is told its turn ended;
//  2. AI seats take their (stub) turns;
//  3. pending tile updates are flushed;
//  4. the map ticks: improvements work, errands complete, knowledge
//     spills, traders move and are reaped;
//  5. every civ begins its next turn with a rebuilt view.
func (g *Game) EndTurn() {
	for _, p := range g.Players {
		if !p.AI {
			g.sendToCiv(p.CivID, protocol.EndTurn())
		}
	}

	for _, p := range g.Players {
		if p.AI {
			g.aiTurn(p.CivID)
		}
	}

	g.FlushUpdates()
	g.Map.Turn(g)
	g.FlushUpdates()
	g.Turn++

	for _, p := range g.Players {
		p.TurnDone = false
	}
	for _, c := range g.Civs {
		g.beginTurn(c.ID)
	}
	slog.Info("turn complete", "turn", g.Turn, "traders", len(g.Map.Traders), "cities", len(g.Map.Cities))
}

// beginTurn refreshes one civ: movement reset, visibility rebuilt from
// scratch, then the full fog-filtered map and the turn signal.
func (g *Game) beginTurn(civID int) {
	civ := g.Civs[civID]
	civ.NewTurn(g.Reg)
	g.Map.RebuildCivVisibility(civID, civ.Units)
	g.sendToCiv(civID,
		protocol.SetMap(g.Map.CivMap(civID)),
		protocol.UnitPositions(civ.UnitCoords()),
		protocol.BeginTurn(),
	)
}

// ResendOpening replays the opening handshake and current view for one
// seat, used when a player (re)connects to a running game.
func (g *Game) ResendOpening(civID int) {
	if civID < 0 || civID >= len(g.Civs) {
		return
	}
	civData := make(map[int]protocol.CivInfo, len(g.Civs))
	for _, c := range g.Civs {
		civData[c.ID] = protocol.CivInfo{Color: c.Color}
	}
	civ := g.Civs[civID]
	g.sendToCiv(civID,
		protocol.BeginGame(g.Map.Width, g.Map.Height, g.PlayerCount()),
		protocol.CivData(civData),
		protocol.SetMap(g.Map.CivMap(civID)),
		protocol.UnitPositions(civ.UnitCoords()),
		protocol.BeginTurn(),
	)
}

// aiTurn is the decision hook for AI seats. Decision-making is an
// external concern; the core only guarantees the civ is ticked.
func (g *Game) aiTurn(civID int) {}

// FlushUpdates drains the map's update queue and forwards each change
// to every human seat, rendered through that seat's fog of war. Order
// of mutations is preserved.
func (g *Game) FlushUpdates() {
	updates := g.Map.Updates()
	if len(updates) == 0 {
		return
	}
	for _, p := range g.Players {
		if p.AI {
			continue
		}
		events := make([]protocol.Event, 0, len(updates))
		for _, up := range updates {
			events = append(events, protocol.TileUpdate(up.Coords, g.Map.CivTileView(p.CivID, up.Tile)))
		}
		g.sendToCiv(p.CivID, events...)
	}
}
