package syncer

import (
	"context"
	"fmt"

	"github.com/playsync/playsync/internal/config"
	"github.com/playsync/playsync/internal/httpclient"
	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/pkg/xtream"
)

// XtreamHandler fetches playlist content from Xtream Codes providers via
// the structured API. Items arrive with their content type attached, so
// no URL classification happens on this path.
type XtreamHandler struct {
	httpClient *httpclient.Client
	batchSize  int

	// newClient is swappable for tests.
	newClient func(playlist *models.Playlist) *xtream.Client
}

// NewXtreamHandler creates an Xtream handler from sync configuration.
func NewXtreamHandler(cfg config.SyncConfig, client *httpclient.Client) *XtreamHandler {
	if client == nil {
		hc := httpclient.DefaultConfig()
		hc.Timeout = cfg.FetchTimeout
		hc.RetryAttempts = cfg.RetryAttempts
		hc.RetryDelay = cfg.RetryDelay
		client = httpclient.New(hc)
	}

	h := &XtreamHandler{
		httpClient: client,
		batchSize:  cfg.BatchSize,
	}
	h.newClient = func(playlist *models.Playlist) *xtream.Client {
		return xtream.NewClient(playlist.URL, playlist.Username, playlist.Password,
			xtream.WithHTTPClient(h.httpClient.StandardClient()))
	}
	return h
}

// Type returns the playlist type this handler supports.
func (h *XtreamHandler) Type() models.PlaylistType {
	return models.PlaylistTypeXtream
}

// Validate checks that the playlist carries Xtream credentials.
func (h *XtreamHandler) Validate(playlist *models.Playlist) error {
	if playlist == nil {
		return fmt.Errorf("playlist is nil")
	}
	if playlist.Type != models.PlaylistTypeXtream {
		return fmt.Errorf("playlist type must be xtream, got %s", playlist.Type)
	}
	if playlist.URL == "" {
		return models.ErrURLRequired
	}
	if playlist.Username == "" || playlist.Password == "" {
		return models.ErrXtreamCredentialsRequired
	}
	return nil
}

// Fetch verifies credentials and walks the provider's live, VOD, and
// series catalogues, delivering classified batches to the sink.
func (h *XtreamHandler) Fetch(ctx context.Context, playlist *models.Playlist, sink BatchSink, progress ProgressFunc) (models.Stats, error) {
	if err := h.Validate(playlist); err != nil {
		return models.Stats{}, fmt.Errorf("validation failed: %w", err)
	}

	client := h.newClient(playlist)

	info, err := client.GetAuthInfo(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("authenticating: %w", err)
	}
	if !info.UserInfo.IsAuthenticated() {
		return models.Stats{}, fmt.Errorf("provider rejected credentials: %s", info.UserInfo.Message)
	}
	if info.UserInfo.IsExpired() {
		return models.Stats{}, fmt.Errorf("provider account expired at %s", info.UserInfo.ExpirationTime())
	}

	stats, err := client.FetchAll(ctx, xtream.FetchOptions{
		BatchSize:  h.batchSize,
		OnBatch:    sink,
		OnProgress: progress,
	})
	if err != nil {
		return stats, fmt.Errorf("fetching catalogue: %w", err)
	}
	return stats, nil
}

var _ SourceHandler = (*XtreamHandler)(nil)
