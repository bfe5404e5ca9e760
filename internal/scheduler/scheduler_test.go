package scheduler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/playsync/playsync/internal/config"
	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/internal/repository"
	"github.com/playsync/playsync/internal/syncer"
)

func setupTest(t *testing.T) (*Scheduler, repository.PlaylistRepository, *syncer.Orchestrator) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Playlist{}, &models.Chunk{}))

	playlists := repository.NewPlaylistRepository(db)
	chunks := repository.NewChunkRepository(db, nil)

	orch := syncer.New(playlists, chunks, nil)
	orch.RegisterHandler(syncer.NewM3UHandler(config.SyncConfig{
		BatchSize:      2000,
		FetchTimeout:   time.Minute,
		ProgressPeriod: time.Millisecond,
	}, nil))

	return New(playlists, orch, nil), playlists, orch
}

func TestScheduler_IsDue(t *testing.T) {
	s, playlists, _ := setupTest(t)
	ctx := context.Background()

	playlist := &models.Playlist{
		Name:         "hourly",
		Type:         models.PlaylistTypeM3U,
		URL:          "http://example.com/list.m3u8",
		CronSchedule: "0 * * * *",
	}
	require.NoError(t, playlists.Create(ctx, playlist))

	created, err := playlists.GetByID(ctx, playlist.ID)
	require.NoError(t, err)

	t.Run("not due right after creation", func(t *testing.T) {
		s.now = func() time.Time { return created.UpdatedAt.Add(time.Second) }
		assert.False(t, s.isDue(created))
	})

	t.Run("due once the next occurrence passes", func(t *testing.T) {
		s.now = func() time.Time { return created.UpdatedAt.Add(2 * time.Hour) }
		assert.True(t, s.isDue(created))
	})

	t.Run("last sync time resets the schedule", func(t *testing.T) {
		synced := created.UpdatedAt.Add(90 * time.Minute)
		p := *created
		p.LastSyncedAt = &synced

		s.now = func() time.Time { return synced.Add(time.Minute) }
		assert.False(t, s.isDue(&p))

		s.now = func() time.Time { return synced.Add(2 * time.Hour) }
		assert.True(t, s.isDue(&p))
	})

	t.Run("invalid cron is never due", func(t *testing.T) {
		p := *created
		p.CronSchedule = "not a cron"
		s.now = func() time.Time { return created.UpdatedAt.Add(24 * time.Hour) }
		assert.False(t, s.isDue(&p))
	})
}

func TestScheduler_RunDue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "#EXTM3U\n#EXTINF:-1,Only Channel\nhttp://example.com/1\n")
	}))
	defer server.Close()

	s, playlists, _ := setupTest(t)
	ctx := context.Background()

	due := &models.Playlist{
		Name:         "due",
		Type:         models.PlaylistTypeM3U,
		URL:          server.URL,
		CronSchedule: "* * * * *",
	}
	require.NoError(t, playlists.Create(ctx, due))

	unscheduled := &models.Playlist{
		Name: "unscheduled",
		Type: models.PlaylistTypeM3U,
		URL:  server.URL,
	}
	require.NoError(t, playlists.Create(ctx, unscheduled))

	disabled := &models.Playlist{
		Name:         "disabled",
		Type:         models.PlaylistTypeM3U,
		URL:          server.URL,
		Enabled:      models.BoolPtr(false),
		CronSchedule: "* * * * *",
	}
	require.NoError(t, playlists.Create(ctx, disabled))

	// Every minute is due as soon as the next minute boundary passes.
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.runDue(s.ctx)
	s.wg.Wait()
	s.cancel()

	got, err := playlists.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlaylistStatusSynced, got.Status)
	assert.Equal(t, 1, got.Stats.Channels)

	for _, p := range []*models.Playlist{unscheduled, disabled} {
		got, err := playlists.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PlaylistStatusPending, got.Status)
	}
}

func TestScheduler_StartStop(t *testing.T) {
	s, _, _ := setupTest(t)

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))

	s.Stop()

	// Restartable after a clean stop.
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
