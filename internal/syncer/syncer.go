package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/internal/observability"
	"github.com/playsync/playsync/internal/repository"
)

// Orchestrator coordinates playlist synchronization. Only one sync runs
// per playlist at a time; a new request for a syncing playlist supersedes
// the running one. Every sync reaches a terminal status and cleans up its
// staging data, regardless of how it ends.
type Orchestrator struct {
	playlists repository.PlaylistRepository
	chunks    repository.ChunkRepository
	handlers  map[models.PlaylistType]SourceHandler
	tokens    *tokenManager
	logger    *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer
}

// New creates an orchestrator. Handlers are registered separately.
func New(playlists repository.PlaylistRepository, chunks repository.ChunkRepository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		playlists: playlists,
		chunks:    chunks,
		handlers:  make(map[models.PlaylistType]SourceHandler),
		tokens:    newTokenManager(),
		logger:    logger,
	}
}

// RegisterHandler adds a source handler for its playlist type.
func (o *Orchestrator) RegisterHandler(h SourceHandler) {
	o.handlers[h.Type()] = h
}

// AddObserver registers an observer for sync lifecycle notifications.
func (o *Orchestrator) AddObserver(obs Observer) {
	o.obsMu.Lock()
	defer o.obsMu.Unlock()
	o.observers = append(o.observers, obs)
}

// IsSyncing reports whether a sync is currently running for the playlist.
func (o *Orchestrator) IsSyncing(id models.ULID) bool {
	return o.tokens.active(id)
}

// CancelSync requests cancellation of the running sync for the playlist.
// It returns false when no sync is running. The sync itself observes the
// cancellation at its next suspension point and settles the terminal
// status, so callers should not assume the sync has stopped on return.
func (o *Orchestrator) CancelSync(id models.ULID) bool {
	return o.tokens.cancel(id)
}

// Load returns the committed dataset for a playlist. A playlist that has
// never synced, or whose data cannot be read, yields an empty dataset.
func (o *Orchestrator) Load(ctx context.Context, id models.ULID) *models.Dataset {
	return o.chunks.GetAll(ctx, models.OwnerID(id))
}

// Delete removes a playlist and all of its stored data. Any running sync
// is cancelled first. Both chunk namespaces are cleared: the committed one
// and the temp: staging one, since a removed playlist never syncs again
// and the next sync's defensive cleanup would otherwise never reclaim
// staging leftovers from a crashed pass.
func (o *Orchestrator) Delete(ctx context.Context, id models.ULID) error {
	o.tokens.cancel(id)

	if err := o.chunks.DeleteAll(ctx, models.OwnerID(id)); err != nil {
		return fmt.Errorf("deleting playlist data: %w", err)
	}
	if err := o.chunks.DeleteAll(ctx, models.TempOwnerID(id)); err != nil {
		return fmt.Errorf("deleting playlist staging data: %w", err)
	}
	if err := o.playlists.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}

// Sync runs a full synchronization pass for the playlist and returns the
// committed dataset on success.
//
// The pass stages every fetched chunk under the playlist's temporary
// owner, and only after the source is fully consumed replaces the
// committed data: delete the old chunks, move the staged ones over, then
// re-read. A crash mid-pass leaves the committed data untouched.
func (o *Orchestrator) Sync(ctx context.Context, id models.ULID) (*models.Dataset, error) {
	playlist, err := o.playlists.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading playlist: %w", err)
	}
	if playlist == nil {
		return nil, models.ErrPlaylistNotFound
	}

	handler, ok := o.handlers[playlist.Type]
	if !ok {
		return nil, fmt.Errorf("no handler registered for playlist type %s", playlist.Type)
	}

	tok := o.tokens.acquire(ctx, id)
	defer o.tokens.release(id, tok)

	log := o.logger.With(
		slog.String("session_id", uuid.NewString()),
		slog.String("playlist_id", id.String()),
		slog.String("playlist", playlist.Name),
	)
	done := observability.TimedOperation(ctx, log.With(slog.String("type", string(playlist.Type))), "sync")
	defer done()

	if err := o.setStatus(ctx, id, models.PlaylistStatusSyncing, ""); err != nil {
		return nil, err
	}

	tempOwner := models.TempOwnerID(id)

	// Leftovers from an interrupted earlier pass.
	if err := o.chunks.DeleteAll(tok.ctx, tempOwner); err != nil {
		observability.WithError(log, err).Warn("failed to clear stale staging data")
	}

	stats, err := o.stage(tok.ctx, handler, playlist, tempOwner)
	if err != nil {
		return nil, o.settleFailure(ctx, log, id, tempOwner, err)
	}

	dataset, err := o.commit(tok.ctx, id, tempOwner)
	if err != nil {
		return nil, o.settleFailure(ctx, log, id, tempOwner, err)
	}

	if err := o.playlists.UpdateSynced(context.WithoutCancel(ctx), id, stats); err != nil {
		observability.WithError(log, err).Error("failed to record sync completion")
		return dataset, fmt.Errorf("recording sync completion: %w", err)
	}

	o.notifyProgress(id, stats)
	o.notifyStatus(id, models.PlaylistStatusSynced, "")
	log.Info("sync completed",
		slog.Int("channels", stats.Channels),
		slog.Int("movies", stats.Movies),
		slog.Int("series", stats.Series),
	)

	return dataset, nil
}

// stage fetches the source and writes every batch as a chunk under the
// temporary owner. A producer goroutine drives the handler while a writer
// goroutine persists chunks from a bounded channel, so slow storage
// backpressures the fetch.
func (o *Orchestrator) stage(ctx context.Context, handler SourceHandler, playlist *models.Playlist, tempOwner string) (models.Stats, error) {
	type chunk struct {
		id    int
		items models.ItemList
	}

	ch := make(chan chunk, 1)
	g, gctx := errgroup.WithContext(ctx)

	var stats models.Stats
	g.Go(func() error {
		defer close(ch)

		next := 0
		s, err := handler.Fetch(gctx, playlist,
			func(ctx context.Context, items []models.PlaylistItem) error {
				c := chunk{id: next, items: models.ItemList(items)}
				next++
				select {
				case ch <- c:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			func(s models.Stats) {
				o.notifyProgress(playlist.ID, s)
			},
		)
		stats = s
		return err
	})

	g.Go(func() error {
		for c := range ch {
			if err := o.chunks.Put(gctx, tempOwner, c.id, c.items); err != nil {
				return fmt.Errorf("staging chunk %d: %w", c.id, err)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// commit replaces the playlist's committed chunks with the staged ones and
// re-reads the result.
//
// By the time commit runs the source is fully consumed, so cancellation no
// longer has anything to abort: interrupting between the delete and the
// move would leave neither the old nor the new dataset readable, and the
// failure path would then wipe the staged rows too. The swap therefore runs
// detached from the sync's cancellable context.
func (o *Orchestrator) commit(ctx context.Context, id models.ULID, tempOwner string) (*models.Dataset, error) {
	ctx = context.WithoutCancel(ctx)
	owner := models.OwnerID(id)

	if err := o.chunks.DeleteAll(ctx, owner); err != nil {
		return nil, fmt.Errorf("clearing committed data: %w", err)
	}
	if err := o.chunks.Move(ctx, tempOwner, owner); err != nil {
		return nil, fmt.Errorf("committing staged data: %w", err)
	}

	return o.chunks.GetAll(ctx, owner), nil
}

// settleFailure drives a failed or cancelled sync to its terminal status
// and removes staging data. Terminal bookkeeping runs detached from the
// (possibly cancelled) sync context.
func (o *Orchestrator) settleFailure(ctx context.Context, log *slog.Logger, id models.ULID, tempOwner string, cause error) error {
	cleanupCtx := context.WithoutCancel(ctx)

	if err := o.chunks.DeleteAll(cleanupCtx, tempOwner); err != nil {
		observability.WithError(log, err).Warn("failed to clean up staging data")
	}

	if errors.Is(cause, context.Canceled) {
		if err := o.setStatusDetached(cleanupCtx, id, models.PlaylistStatusCancelled, ""); err != nil {
			observability.WithError(log, err).Error("failed to record cancellation")
		}
		log.Info("sync cancelled")
		return cause
	}

	if err := o.setStatusDetached(cleanupCtx, id, models.PlaylistStatusError, cause.Error()); err != nil {
		observability.WithError(log, err).Error("failed to record sync failure")
	}
	observability.WithError(log, cause).Error("sync failed")
	return cause
}

func (o *Orchestrator) setStatus(ctx context.Context, id models.ULID, status models.PlaylistStatus, message string) error {
	if err := o.playlists.UpdateStatus(ctx, id, status, message); err != nil {
		return fmt.Errorf("updating playlist status: %w", err)
	}
	o.notifyStatus(id, status, message)
	return nil
}

func (o *Orchestrator) setStatusDetached(ctx context.Context, id models.ULID, status models.PlaylistStatus, message string) error {
	err := o.playlists.UpdateStatus(ctx, id, status, message)
	o.notifyStatus(id, status, message)
	return err
}

func (o *Orchestrator) notifyStatus(id models.ULID, status models.PlaylistStatus, message string) {
	o.obsMu.RLock()
	defer o.obsMu.RUnlock()
	for _, obs := range o.observers {
		if obs.OnStatus != nil {
			obs.OnStatus(id, status, message)
		}
	}
}

func (o *Orchestrator) notifyProgress(id models.ULID, stats models.Stats) {
	o.obsMu.RLock()
	defer o.obsMu.RUnlock()
	for _, obs := range o.observers {
		if obs.OnProgress != nil {
			obs.OnProgress(id, stats)
		}
	}
}
