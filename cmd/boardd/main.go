// Command boardd serves a hex tabletop board to browser renderers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hexboard/internal/api"
	"github.com/talgya/hexboard/internal/config"
	"github.com/talgya/hexboard/internal/engine"
	"github.com/talgya/hexboard/internal/interaction"
	"github.com/talgya/hexboard/internal/persistence"
	"github.com/talgya/hexboard/internal/world"
)

func main() {
	configFlag := flag.String("config", "", "path to board.yaml (default $HEXBOARD_CONFIG or "+config.DefaultPath+")")
	flag.Parse()

	path, explicit := config.Locate(*configFlag)
	cfg, err := config.Load(path, !explicit)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(cfg.Logging.NewLogger())
	slog.Info("hexboard starting", "config", path, "layout", cfg.Board.Layout, "orientation", cfg.Board.Orientation)

	// ── Board (always regenerated, deterministic from config) ─────────
	layout, err := cfg.Board.HexLayout()
	if err != nil {
		slog.Error("invalid hex layout", "error", err)
		os.Exit(1)
	}
	entries, err := world.Generate(cfg.Board.GenConfig())
	if err != nil {
		slog.Error("failed to generate board layout", "error", err)
		os.Exit(1)
	}
	board, err := world.Build(entries, cfg.Board.HeightTable())
	if err != nil {
		slog.Error("failed to build board", "error", err)
		os.Exit(1)
	}

	counts := board.TerrainCounts()
	for _, t := range world.SortedTerrains(counts) {
		slog.Info("terrain", "type", t, "count", counts[t])
	}
	decorations := world.Decorate(board, cfg.Board.Seed)
	slog.Info("board ready", "cells", board.Len(), "max_ring", board.MaxRing(), "decorated", len(decorations))

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	mode, err := db.Pragma("journal_mode")
	if err != nil {
		slog.Warn("read journal mode", "error", err)
	}
	slog.Info("database opened", "path", cfg.Database.Path, "journal_mode", mode)

	// ── Pieces: restore or place fresh ───────────────────────────────
	table := interaction.NewTable(board, layout, nil)
	table.SetPieceLift(cfg.Board.PieceLift)

	fresh := !db.HasState()
	if fresh {
		slog.Info("no saved pieces found, placing starting set...")
		table.Restore(world.PlacePieces(board, cfg.Board.PieceSpecs()))
	} else {
		pieces, err := db.LoadPieces()
		if err != nil {
			slog.Error("failed to load pieces", "error", err)
			os.Exit(1)
		}
		table.Restore(pieces)

		lastSave := "unknown"
		if t, ok := db.LastSaved(); ok {
			lastSave = humanize.Time(t)
		}
		slog.Info("pieces restored", "pieces", len(pieces), "saved", lastSave)
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("HEXBOARD_ADMIN_KEY not set, admin POST endpoints will be disabled")
	}

	eng := engine.NewEngine(cfg.Autosave.Interval)
	apiServer := &api.Server{
		Table:        table,
		DB:           db,
		Eng:          eng,
		Policy:       cfg.Board.GenConfig().Policy,
		Decorations:  decorations,
		Port:         cfg.Server.Port,
		AdminKey:     cfg.Server.AdminKey,
		CORSOrigins:  cfg.Server.CORSOrigins,
		ResetPerHour: cfg.Server.ResetPerHour,
	}

	if fresh {
		if err := apiServer.SaveState(true); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// Wire engine callbacks: autosave when pieces moved, prune move history on sweep.
	eng.OnTick = func(tick uint64) {
		if err := apiServer.SaveState(false); err != nil {
			slog.Error("autosave failed", "tick", tick, "error", err)
		}
	}
	eng.OnSweep = func(tick uint64) {
		n, err := db.PruneMoves(cfg.Autosave.KeepMoves)
		if err != nil {
			slog.Error("prune moves failed", "error", err)
			return
		}
		if n > 0 {
			slog.Info("pruned move history", "removed", humanize.Comma(n))
		}
	}

	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("\nhexboard is up: %d cells, %d pieces.\n", board.Len(), len(table.Pieces()))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	fmt.Printf("Drag socket: ws://localhost:%d/ws\n", cfg.Server.Port)

	eng.Run(ctx)
	slog.Info("received signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}

	// Final save on shutdown.
	slog.Info("final save...")
	if err := apiServer.SaveState(true); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Board stopped. Piece positions saved.")
}
