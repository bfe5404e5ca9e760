// Package scheduler provides cron-based automatic playlist re-sync.
// Each tick it evaluates the cron schedule of every enabled playlist and
// starts a sync for the ones that are due.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/internal/repository"
	"github.com/playsync/playsync/internal/syncer"
)

// DefaultTick is how often schedules are evaluated.
const DefaultTick = time.Minute

// Scheduler evaluates playlist cron schedules and triggers syncs.
type Scheduler struct {
	mu sync.RWMutex

	playlists    repository.PlaylistRepository
	orchestrator *syncer.Orchestrator
	logger       *slog.Logger

	// parser validates and parses standard five-field cron expressions.
	parser cron.Parser

	tick time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// now is swappable for tests.
	now func() time.Time
}

// New creates a scheduler.
func New(playlists repository.PlaylistRepository, orchestrator *syncer.Orchestrator, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		playlists:    playlists,
		orchestrator: orchestrator,
		logger:       logger,
		parser:       cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		tick:         DefaultTick,
		now:          time.Now,
	}
}

// WithTick sets the schedule evaluation interval.
func (s *Scheduler) WithTick(tick time.Duration) *Scheduler {
	if tick > 0 {
		s.tick = tick
	}
	return s
}

// Start begins the background evaluation loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("scheduler started", slog.Duration("tick", s.tick))
	return nil
}

// Stop cancels the scheduler context and waits for the loop and any
// in-flight syncs to finish. Cancelled syncs settle as cancelled and leave
// previously committed data untouched.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	// Evaluate immediately on start.
	s.runDue(s.ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runDue(s.ctx)
		}
	}
}

// runDue starts a sync for every enabled playlist whose schedule is due.
func (s *Scheduler) runDue(ctx context.Context) {
	playlists, err := s.playlists.GetEnabled(ctx)
	if err != nil {
		s.logger.Error("failed to list playlists for scheduling", slog.Any("error", err))
		return
	}

	for _, playlist := range playlists {
		if playlist.CronSchedule == "" {
			continue
		}
		if s.orchestrator.IsSyncing(playlist.ID) {
			continue
		}
		if !s.isDue(playlist) {
			continue
		}

		s.logger.Info("scheduled sync due",
			slog.String("playlist", playlist.Name),
			slog.String("cron", playlist.CronSchedule),
		)

		s.wg.Add(1)
		go func(id models.ULID, name string) {
			defer s.wg.Done()
			if _, err := s.orchestrator.Sync(ctx, id); err != nil {
				s.logger.Error("scheduled sync failed",
					slog.String("playlist", name),
					slog.Any("error", err),
				)
			}
		}(playlist.ID, playlist.Name)
	}
}

// isDue reports whether the playlist's next scheduled run time has passed.
// The reference point is the playlist's last activity, so a failed sync is
// retried at the next cron occurrence after the failure, not immediately.
func (s *Scheduler) isDue(playlist *models.Playlist) bool {
	schedule, err := s.parser.Parse(playlist.CronSchedule)
	if err != nil {
		s.logger.Warn("invalid cron expression",
			slog.String("playlist", playlist.Name),
			slog.String("cron", playlist.CronSchedule),
			slog.Any("error", err),
		)
		return false
	}

	last := playlist.UpdatedAt
	if playlist.LastSyncedAt != nil && playlist.LastSyncedAt.After(last) {
		last = *playlist.LastSyncedAt
	}

	next := schedule.Next(last)
	return !next.After(s.now())
}
