package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/playsync/playsync/internal/models"
)

func createTestPlaylist(t *testing.T, db *gorm.DB, name string) *models.Playlist {
	t.Helper()

	playlist := &models.Playlist{
		Name: name,
		Type: models.PlaylistTypeM3U,
		URL:  "http://example.com/" + name + ".m3u8",
	}
	require.NoError(t, db.Create(playlist).Error)
	return playlist
}

func TestPlaylistRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	playlist := &models.Playlist{
		Name: "provider-a",
		Type: models.PlaylistTypeM3U,
		URL:  "http://example.com/playlist.m3u8",
	}
	require.NoError(t, repo.Create(ctx, playlist))
	assert.False(t, playlist.ID.IsZero())
	assert.Equal(t, models.PlaylistStatusPending, playlist.Status)

	got, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "provider-a", got.Name)

	byName, err := repo.GetByName(ctx, "provider-a")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, playlist.ID, byName.ID)
}

func TestPlaylistRepo_Create_Validation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	t.Run("missing URL", func(t *testing.T) {
		err := repo.Create(ctx, &models.Playlist{Name: "x", Type: models.PlaylistTypeM3U})
		assert.ErrorIs(t, err, models.ErrURLRequired)
	})

	t.Run("xtream without credentials", func(t *testing.T) {
		err := repo.Create(ctx, &models.Playlist{
			Name: "x",
			Type: models.PlaylistTypeXtream,
			URL:  "http://example.com",
		})
		assert.ErrorIs(t, err, models.ErrXtreamCredentialsRequired)
	})

	t.Run("duplicate name", func(t *testing.T) {
		createTestPlaylist(t, db, "dup")
		err := repo.Create(ctx, &models.Playlist{
			Name: "dup",
			Type: models.PlaylistTypeM3U,
			URL:  "http://example.com/other.m3u8",
		})
		assert.Error(t, err)
	})
}

func TestPlaylistRepo_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)

	got, err := repo.GetByID(context.Background(), models.NewULID())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPlaylistRepo_GetEnabled(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	createTestPlaylist(t, db, "on")
	disabled := createTestPlaylist(t, db, "off")
	disabled.Enabled = models.BoolPtr(false)
	require.NoError(t, repo.Update(ctx, disabled))

	enabled, err := repo.GetEnabled(ctx)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
	assert.Equal(t, "on", enabled[0].Name)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPlaylistRepo_UpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, db, "p")

	require.NoError(t, repo.UpdateStatus(ctx, playlist.ID, models.PlaylistStatusError, "fetch failed"))

	got, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlaylistStatusError, got.Status)
	assert.Equal(t, "fetch failed", got.LastError)
}

func TestPlaylistRepo_Update_Validation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, db, "p")

	playlist.Name = "renamed"
	require.NoError(t, repo.Update(ctx, playlist))

	playlist.URL = ""
	err := repo.Update(ctx, playlist)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrURLRequired)

	// The invalid update did not land.
	got, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.NotEmpty(t, got.URL)
}

func TestPlaylistRepo_UpdateSynced(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, db, "p")
	require.NoError(t, repo.UpdateStatus(ctx, playlist.ID, models.PlaylistStatusError, "old failure"))

	stats := models.Stats{Channels: 100, Movies: 20, Series: 5}
	require.NoError(t, repo.UpdateSynced(ctx, playlist.ID, stats))

	got, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlaylistStatusSynced, got.Status)
	assert.Equal(t, stats, got.Stats)
	assert.NotNil(t, got.LastSyncedAt)
	assert.Empty(t, got.LastError)
}

func TestPlaylistRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlaylistRepository(db)
	ctx := context.Background()

	playlist := createTestPlaylist(t, db, "gone")
	require.NoError(t, repo.Delete(ctx, playlist.ID))

	got, err := repo.GetByID(ctx, playlist.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
