package cmd

import (
	"fmt"
	"log/slog"

	"github.com/playsync/playsync/internal/config"
	"github.com/playsync/playsync/internal/database"
	"github.com/playsync/playsync/internal/observability"
	"github.com/playsync/playsync/internal/repository"
	"github.com/playsync/playsync/internal/syncer"
)

// app bundles the wired-up services shared by the CLI commands.
type app struct {
	cfg          *config.Config
	db           *database.DB
	logger       *slog.Logger
	playlists    repository.PlaylistRepository
	chunks       repository.ChunkRepository
	orchestrator *syncer.Orchestrator
}

// newApp loads configuration, opens the database, runs migrations, and
// wires the repositories and sync orchestrator. Callers must Close().
func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.Default()

	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	playlists := repository.NewPlaylistRepository(db.DB)
	chunks := repository.NewChunkRepository(db.DB, observability.WithComponent(logger, "chunks"))

	orchestrator := syncer.New(playlists, chunks, observability.WithComponent(logger, "syncer"))
	orchestrator.RegisterHandler(syncer.NewM3UHandler(cfg.Sync, nil))
	orchestrator.RegisterHandler(syncer.NewXtreamHandler(cfg.Sync, nil))

	return &app{
		cfg:          cfg,
		db:           db,
		logger:       logger,
		playlists:    playlists,
		chunks:       chunks,
		orchestrator: orchestrator,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close database", slog.Any("error", err))
		}
	}
}
