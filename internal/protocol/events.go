// Package protocol defines the closed set of outbound events and their
// wire encoding. An event serializes to a two-element JSON array
// [name, args]; a message batches events as {"update": [...]}.
package protocol

import (
	"encoding/json"

	"github.com/talgya/hexrealm/internal/world"
)

// Event is one named notification with positional arguments.
type Event struct {
	Name string
	Args []any
}

// MarshalJSON renders the [name, args] array shape.
func (e Event) MarshalJSON() ([]byte, error) {
	args := e.Args
	if args == nil {
		args = []any{}
	}
	return json.Marshal([]any{e.Name, args})
}

// Message is the outbound envelope.
type Message struct {
	Update []Event `json:"update"`
}

// Encode renders a batch of events into one wire message.
func Encode(events ...Event) (string, error) {
	b, err := json.Marshal(Message{Update: events})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CivInfo is the per-civilization blob published at game start.
type CivInfo struct {
	Color string `json:"color"`
}

// BeginGame announces map dimensions and the player count.
func BeginGame(width, height, playerCount int) Event {
	return Event{Name: "beginGame", Args: []any{[2]int{width, height}, playerCount}}
}

// CivData publishes the civ table keyed by civ ID.
func CivData(civs map[int]CivInfo) Event {
	return Event{Name: "civData", Args: []any{civs}}
}

// SetMap carries a civ's full fog-filtered map, row-major, null for
// undiscovered tiles.
func SetMap(tiles []*world.TileView) Event {
	return Event{Name: "setMap", Args: []any{tiles}}
}

// BeginTurn signals the start of the recipient's turn.
func BeginTurn() Event {
	return Event{Name: "beginTurn"}
}

// EndTurn acknowledges the end of the recipient's turn.
func EndTurn() Event {
	return Event{Name: "endTurn"}
}

// TileUpdate carries one changed tile as the recipient may see it; the
// view is null when the recipient has not discovered the tile.
func TileUpdate(c world.Coord, view *world.TileView) Event {
	return Event{Name: "tileUpdate", Args: []any{c, view}}
}

// UnitPositions lists the recipient's own unit coordinates.
func UnitPositions(coords []world.Coord) Event {
	return Event{Name: "unitPositions", Args: []any{coords}}
}
