package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/talgya/hexrealm/internal/engine"
	"github.com/talgya/hexrealm/internal/persistence"
	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

// Server exposes the game: /ws for players, read-only JSON for
// observers, and an admin save endpoint.
type Server struct {
	Game     *engine.Game
	Runner   *engine.Runner
	DB       *persistence.DB
	Addr     string
	GameName string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	slog.Info("server starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")
	go func() {
		if err := http.ListenAndServe(s.Addr, mux); err != nil {
			slog.Error("http server error", "error", err)
		}
	}()
}

// command is the inbound message shape: a name and a per-command blob.
type command struct {
	Name string          `json:"name"`
	Msg  json.RawMessage `json:"msg"`
}

type moveUnitMsg struct {
	UnitID int         `json:"unitId"`
	Target world.Coord `json:"target"`
}

type settleCityMsg struct {
	Coords world.Coord `json:"coords"`
	Name   string      `json:"name"`
}

type buildMsg struct {
	Coords world.Coord `json:"coords"`
	Type   string      `json:"type"`
}

type trainUnitMsg struct {
	Coords   world.Coord  `json:"coords"`
	Type     string       `json:"type"`
	Location *world.Coord `json:"location,omitempty"`
}

type researchMsg struct {
	Coords world.Coord `json:"coords"`
	Branch string      `json:"branch"`
}

type attackMsg struct {
	UnitID int         `json:"unitId"`
	Target world.Coord `json:"target"`
}

// handleWS upgrades the connection, seats the player, and runs the
// read loop. Each decoded command is enqueued for the simulation
// goroutine; nothing here touches game state directly.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "error", err)
		return
	}

	seated := make(chan int, 1)
	s.Runner.Do(func() {
		seated <- s.seatPlayer()
	})
	civID := <-seated
	if civID < 0 {
		slog.Warn("no free seat for connection", "remote", r.RemoteAddr)
		ws.Close()
		return
	}

	sess := newSession(civID, ws)
	go sess.writePump()
	s.Runner.Do(func() {
		s.Game.Connect(civID, sess)
		if s.Game.HasStarted {
			// Late joiner: resend the opening state for its seat.
			s.Game.ResendOpening(civID)
		} else if s.allSeatsFilled() {
			s.Game.Start()
		}
	})
	slog.Info("session opened", "session", sess.id, "civ", civID, "remote", r.RemoteAddr)

	defer func() {
		sess.close()
		s.Runner.Do(func() { s.Game.Disconnect(civID) })
		slog.Info("session closed", "session", sess.id, "civ", civID)
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var cmd command
		if err := json.Unmarshal(data, &cmd); err != nil {
			slog.Debug("bad command frame", "session", sess.id, "error", err)
			continue
		}
		s.dispatch(civID, cmd)
	}
}

// seatPlayer claims the first AI seat for a human. Runs on the
// simulation goroutine.
func (s *Server) seatPlayer() int {
	for _, p := range s.Game.Players {
		if p.AI {
			p.AI = false
			return p.CivID
		}
	}
	return -1
}

func (s *Server) allSeatsFilled() bool {
	for _, p := range s.Game.Players {
		if p.AI {
			return false
		}
	}
	return true
}

// dispatch enqueues the handler for a decoded command. Unknown names
// and malformed blobs are dropped; action legality is the handlers'
// concern.
func (s *Server) dispatch(civID int, cmd command) {
	switch cmd.Name {
	case "endTurn":
		s.Runner.Do(func() { s.Game.MarkTurnDone(civID) })
	case "moveUnit":
		var m moveUnitMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.MoveUnit(civID, m.UnitID, m.Target) })
		}
	case "settleCity":
		var m settleCityMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.SettleCity(civID, m.Coords, m.Name) })
		}
	case "buildImprovement":
		var m buildMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.BuildImprovement(civID, m.Coords, rules.ImprovementType(m.Type)) })
		}
	case "startConstruction":
		var m buildMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.StartConstruction(civID, m.Coords, rules.ImprovementType(m.Type)) })
		}
	case "trainUnit":
		var m trainUnitMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.TrainUnit(civID, m.Coords, rules.UnitType(m.Type), m.Location) })
		}
	case "research":
		var m researchMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.Research(civID, m.Coords, rules.KnowledgeBranch(m.Branch)) })
		}
	case "attack":
		var m attackMsg
		if json.Unmarshal(cmd.Msg, &m) == nil {
			s.Runner.Do(func() { s.Game.Attack(civID, m.UnitID, m.Target) })
		}
	default:
		slog.Debug("unknown command", "name", cmd.Name, "civ", civID)
	}
}

// handleStatus reports coarse game state for observers.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type status struct {
		Turn    int  `json:"turn"`
		Civs    int  `json:"civs"`
		Width   int  `json:"width"`
		Height  int  `json:"height"`
		Started bool `json:"started"`
	}
	result := make(chan status, 1)
	s.Runner.Do(func() {
		result <- status{
			Turn:    s.Game.Turn,
			Civs:    len(s.Game.Civs),
			Width:   s.Game.Map.Width,
			Height:  s.Game.Map.Height,
			Started: s.Game.HasStarted,
		}
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(<-result)
}

// handleSave snapshots the game to the database.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "persistence disabled", http.StatusServiceUnavailable)
		return
	}
	result := make(chan error, 1)
	s.Runner.Do(func() {
		result <- s.DB.SaveGame(s.GameName, s.Game)
	})
	if err := <-result; err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	fmt.Fprintln(w, "saved")
}

// adminOnly gates a handler behind the bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		if r.Header.Get("Authorization") != "Bearer "+s.AdminKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
