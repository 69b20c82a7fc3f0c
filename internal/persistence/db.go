// Package persistence provides SQLite-backed game snapshot storage.
// Snapshots are the engine's export shapes serialized as JSON blobs.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexrealm/internal/engine"
	"github.com/talgya/hexrealm/internal/rules"
)

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		name TEXT PRIMARY KEY,
		turn INTEGER NOT NULL,
		snapshot_json TEXT NOT NULL,
		saved_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS server_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveGame writes a full snapshot of the game under its name, replacing
// any previous save.
func (db *DB) SaveGame(name string, g *engine.Game) error {
	snapshot, err := json.Marshal(g.Export())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO games (name, turn, snapshot_json, saved_at)
		 VALUES (?, ?, ?, datetime('now'))`,
		name, g.Turn, string(snapshot),
	)
	if err != nil {
		return fmt.Errorf("insert game %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("game saved", "name", name, "turn", g.Turn, "bytes", len(snapshot))
	return nil
}

// LoadGame restores a game snapshot by name. A snapshot that cannot be
// reconstructed is fatal: no partial state is returned.
func (db *DB) LoadGame(name string, reg *rules.Registry) (*engine.Game, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT snapshot_json FROM games WHERE name = ?", name)
	if err != nil {
		return nil, fmt.Errorf("load game %q: %w", name, err)
	}

	var ex engine.GameExport
	if err := json.Unmarshal([]byte(raw), &ex); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", name, err)
	}
	g, err := engine.Import(ex, reg)
	if err != nil {
		return nil, fmt.Errorf("import snapshot %q: %w", name, err)
	}
	return g, nil
}

// HasGame reports whether a save exists under the name.
func (db *DB) HasGame(name string) bool {
	var turn int
	err := db.conn.Get(&turn, "SELECT turn FROM games WHERE name = ?", name)
	return err == nil
}

// SaveMeta stores a key-value pair in server metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO server_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value; empty string when absent.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM server_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
