// Package api serves the game over HTTP: a websocket endpoint for
// players and read-only JSON endpoints for observation.
package api

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// sendBuffer bounds the per-session outbound queue. A session that
// cannot drain its queue is considered dead and closed.
const sendBuffer = 64

// session is one connected player: a websocket plus an outbound pump.
// Send never blocks the simulation goroutine.
type session struct {
	id    string
	civID int
	ws    *websocket.Conn
	out   chan string
	done  chan struct{}

	closeOnce sync.Once
}

func newSession(civID int, ws *websocket.Conn) *session {
	return &session{
		id:    uuid.NewString(),
		civID: civID,
		ws:    ws,
		out:   make(chan string, sendBuffer),
		done:  make(chan struct{}),
	}
}

// Send queues a message for the write pump. Implements engine.Sender.
func (s *session) Send(msg string) error {
	select {
	case s.out <- msg:
		return nil
	case <-s.done:
		return websocket.ErrCloseSent
	default:
		// Queue full: the client has stalled. Drop the session rather
		// than stall the simulation.
		s.close()
		return websocket.ErrCloseSent
	}
}

// writePump drains the outbound queue onto the socket.
func (s *session) writePump() {
	for {
		select {
		case msg := <-s.out:
			if err := s.ws.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				slog.Debug("write failed, closing session", "session", s.id, "error", err)
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.ws.Close()
	})
}
