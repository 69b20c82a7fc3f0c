// Command gameserver runs the authoritative hexrealm game server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexrealm/internal/api"
	"github.com/talgya/hexrealm/internal/config"
	"github.com/talgya/hexrealm/internal/engine"
	"github.com/talgya/hexrealm/internal/persistence"
	"github.com/talgya/hexrealm/internal/rules"
	"github.com/talgya/hexrealm/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfgPath := "hexrealm.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}

	reg := rules.Default()

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate World State ─────────────────────────────────
	var game *engine.Game
	if db.HasGame(cfg.GameName) {
		slog.Info("found saved game, loading...", "name", cfg.GameName)
		game, err = db.LoadGame(cfg.GameName, reg)
		if err != nil {
			slog.Error("failed to load game", "error", err)
			os.Exit(1)
		}
		slog.Info("game restored",
			"name", cfg.GameName,
			"turn", game.Turn,
			"civs", len(game.Civs),
		)
	} else {
		slog.Info("no saved game, generating world...",
			"width", cfg.Map.Width,
			"height", cfg.Map.Height,
			"seed", cfg.Map.Seed,
		)
		gen := world.DefaultGenConfig()
		gen.Width = cfg.Map.Width
		gen.Height = cfg.Map.Height
		gen.Seed = cfg.Map.Seed
		m := world.Generate(gen, cfg.Players, reg)
		game = engine.NewGame(m, reg, cfg.Players, engine.Meta{Name: cfg.GameName})
		slog.Info("world ready",
			"tiles", humanize.Comma(int64(len(m.Tiles))),
			"players", cfg.Players,
		)
	}

	// ── Simulation loop + server ─────────────────────────────────────
	runner := engine.NewRunner()
	apiServer := &api.Server{
		Game:     game,
		Runner:   runner,
		DB:       db,
		Addr:     cfg.ListenAddr,
		GameName: cfg.GameName,
		AdminKey: os.Getenv("HEXREALM_ADMIN_KEY"),
	}
	apiServer.Start()

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	runner.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveGame(cfg.GameName, game); err != nil {
		slog.Error("final save failed", "error", err)
	}
}
