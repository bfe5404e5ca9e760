// Package syncer orchestrates playlist synchronization: fetching source
// content, staging it through the chunk store under a temporary owner, and
// committing it atomically to the playlist's real owner on success. It owns
// the playlist status state machine and per-playlist cancellation.
package syncer

import (
	"context"

	"github.com/playsync/playsync/internal/models"
)

// BatchSink receives item batches during a fetch pass. The handler waits
// for the sink to return before producing more content.
type BatchSink func(ctx context.Context, items []models.PlaylistItem) error

// ProgressFunc receives running stats during a fetch pass.
type ProgressFunc func(stats models.Stats)

// SourceHandler fetches one playlist source type and streams its content
// into the sink as classified item batches.
type SourceHandler interface {
	// Type returns the playlist type this handler supports.
	Type() models.PlaylistType

	// Validate checks that the playlist is usable by this handler.
	Validate(playlist *models.Playlist) error

	// Fetch retrieves the source and delivers every item through the
	// sink. It returns the final stats for the pass.
	Fetch(ctx context.Context, playlist *models.Playlist, sink BatchSink, progress ProgressFunc) (models.Stats, error)
}

// Observer receives sync lifecycle notifications. Callbacks are invoked
// synchronously from the sync goroutine and must not block.
type Observer struct {
	// OnStatus fires on every playlist status transition. The message
	// carries the failure description for error states.
	OnStatus func(playlistID models.ULID, status models.PlaylistStatus, message string)

	// OnProgress fires with running stats during a sync, throttled by
	// the source handler, plus once with the final stats.
	OnProgress func(playlistID models.ULID, stats models.Stats)
}
