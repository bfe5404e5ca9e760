package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/playsync/playsync/internal/models"
)

// playlistRepo implements PlaylistRepository using GORM.
type playlistRepo struct {
	db *gorm.DB
}

// NewPlaylistRepository creates a new PlaylistRepository.
func NewPlaylistRepository(db *gorm.DB) *playlistRepo {
	return &playlistRepo{db: db}
}

// Create creates a new playlist.
func (r *playlistRepo) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return fmt.Errorf("creating playlist: %w", err)
	}
	return nil
}

// GetByID retrieves a playlist by ID. Returns nil when not found.
func (r *playlistRepo) GetByID(ctx context.Context, id models.ULID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&playlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting playlist by ID: %w", err)
	}
	return &playlist, nil
}

// GetByName retrieves a playlist by name. Returns nil when not found.
func (r *playlistRepo) GetByName(ctx context.Context, name string) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&playlist).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting playlist by name: %w", err)
	}
	return &playlist, nil
}

// GetAll retrieves all playlists.
func (r *playlistRepo) GetAll(ctx context.Context) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("getting all playlists: %w", err)
	}
	return playlists, nil
}

// GetEnabled retrieves all enabled playlists.
func (r *playlistRepo) GetEnabled(ctx context.Context) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := r.db.WithContext(ctx).Where("enabled = ?", true).Order("name ASC").Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("getting enabled playlists: %w", err)
	}
	return playlists, nil
}

// Update updates an existing playlist after validating the full struct.
func (r *playlistRepo) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validating playlist: %w", err)
	}
	if err := r.db.WithContext(ctx).Save(playlist).Error; err != nil {
		return fmt.Errorf("updating playlist: %w", err)
	}
	return nil
}

// UpdateStatus updates only the status and last error.
func (r *playlistRepo) UpdateStatus(ctx context.Context, id models.ULID, status models.PlaylistStatus, lastError string) error {
	updates := map[string]any{
		"status":     status,
		"last_error": lastError,
	}

	if err := r.db.WithContext(ctx).Model(&models.Playlist{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating playlist status: %w", err)
	}
	return nil
}

// UpdateSynced records a committed sync: status, stats, and timestamp.
func (r *playlistRepo) UpdateSynced(ctx context.Context, id models.ULID, stats models.Stats) error {
	updates := map[string]any{
		"status":         models.PlaylistStatusSynced,
		"stats_channels": stats.Channels,
		"stats_movies":   stats.Movies,
		"stats_series":   stats.Series,
		"last_synced_at": models.Now(),
		"last_error":     "",
	}

	if err := r.db.WithContext(ctx).Model(&models.Playlist{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("updating playlist after sync: %w", err)
	}
	return nil
}

// Delete removes a playlist descriptor by ID.
// Chunk rows are removed separately by the caller via ChunkRepository.
func (r *playlistRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Playlist{}).Error; err != nil {
		return fmt.Errorf("deleting playlist: %w", err)
	}
	return nil
}

// Ensure playlistRepo implements PlaylistRepository at compile time.
var _ PlaylistRepository = (*playlistRepo)(nil)
