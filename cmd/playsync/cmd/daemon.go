package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/playsync/playsync/internal/observability"
	"github.com/playsync/playsync/internal/scheduler"
	"github.com/playsync/playsync/internal/version"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the cron scheduler in the foreground",
	Long: `Run playsync as a long-lived process that evaluates each enabled
playlist's cron schedule and syncs playlists when due. Stop with
SIGINT or SIGTERM; an in-flight sync is cancelled cleanly and the
previously committed data is preserved.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		sched := scheduler.New(a.playlists, a.orchestrator,
			observability.WithComponent(a.logger, "scheduler")).
			WithTick(a.cfg.Scheduler.Tick)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}

		a.logger.Info("daemon started",
			slog.String("version", version.Short()),
			slog.Duration("tick", a.cfg.Scheduler.Tick))

		<-ctx.Done()

		a.logger.Info("shutting down")
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}
