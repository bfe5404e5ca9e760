package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playsync/playsync/internal/config"
	"github.com/playsync/playsync/internal/httpclient"
	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/pkg/m3u8"
)

// M3UHandler fetches and parses M3U playlist sources. The fetch follows
// the acquisition policy: one direct attempt, then at most one attempt
// through the configured proxy indirection.
type M3UHandler struct {
	httpClient     *httpclient.Client
	batchSize      int
	progressPeriod time.Duration
}

// NewM3UHandler creates an M3U handler from sync configuration.
func NewM3UHandler(cfg config.SyncConfig, client *httpclient.Client) *M3UHandler {
	if client == nil {
		hc := httpclient.DefaultConfig()
		hc.Timeout = cfg.FetchTimeout
		hc.RetryAttempts = cfg.RetryAttempts
		hc.RetryDelay = cfg.RetryDelay
		hc.ProxyPrefix = cfg.ProxyURL
		client = httpclient.New(hc)
	}

	return &M3UHandler{
		httpClient:     client,
		batchSize:      cfg.BatchSize,
		progressPeriod: cfg.ProgressPeriod,
	}
}

// Type returns the playlist type this handler supports.
func (h *M3UHandler) Type() models.PlaylistType {
	return models.PlaylistTypeM3U
}

// Validate checks that the playlist is usable for M3U fetching.
func (h *M3UHandler) Validate(playlist *models.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("playlist is nil")
	}
	if playlist.Type != models.PlaylistTypeM3U {
		return fmt.Errorf("playlist type must be m3u, got %s", playlist.Type)
	}
	if playlist.URL == "" {
		return models.ErrURLRequired
	}
	if !strings.HasPrefix(playlist.URL, "http://") && !strings.HasPrefix(playlist.URL, "https://") {
		return models.ErrInvalidURL
	}
	return nil
}

// Fetch retrieves the playlist text and streams it through the parser,
// delivering classified item batches to the sink.
func (h *M3UHandler) Fetch(ctx context.Context, playlist *models.Playlist, sink BatchSink, progress ProgressFunc) (models.Stats, error) {
	if err := h.Validate(playlist); err != nil {
		return models.Stats{}, fmt.Errorf("validation failed: %w", err)
	}

	resp, err := h.httpClient.GetWithProxyFallback(ctx, playlist.URL)
	if err != nil {
		return models.Stats{}, fmt.Errorf("fetching playlist: %w", err)
	}
	defer resp.Body.Close()

	parser := &m3u8.Parser{
		BatchSize:      h.batchSize,
		ProgressPeriod: h.progressPeriod,
		OnBatch:        m3u8.BatchFunc(sink),
		OnProgress:     m3u8.ProgressFunc(progress),
	}

	stats, err := parser.ParseCompressed(ctx, resp.Body)
	if err != nil {
		return stats, fmt.Errorf("parsing playlist: %w", err)
	}
	return stats, nil
}

var _ SourceHandler = (*M3UHandler)(nil)
