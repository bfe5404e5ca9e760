package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/playsync/playsync/internal/models"
	"github.com/playsync/playsync/internal/syncer"
)

var (
	syncAll     bool
	syncVerbose bool
)

var syncCmd = &cobra.Command{
	Use:   "sync [name]",
	Short: "Sync one playlist, or all enabled playlists with --all",
	Long: `Fetch the playlist source, parse it into channels, movies, and series,
and replace the previously synced data atomically. Interrupting the sync
(Ctrl-C) leaves the previously committed data untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncAll == (len(args) == 1) {
			return fmt.Errorf("provide exactly one playlist name or --all")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if syncVerbose {
			a.orchestrator.AddObserver(progressObserver())
		}

		if syncAll {
			return syncEnabled(ctx, a)
		}
		return syncOne(ctx, a, args[0])
	},
}

func syncOne(ctx context.Context, a *app, name string) error {
	p, err := lookupPlaylist(ctx, a, name)
	if err != nil {
		return err
	}

	dataset, err := a.orchestrator.Sync(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("syncing %q: %w", p.Name, err)
	}

	stats := dataset.Stats()
	fmt.Printf("Synced %q: %d channels, %d movies, %d series\n",
		p.Name, stats.Channels, stats.Movies, stats.Series)
	return nil
}

func syncEnabled(ctx context.Context, a *app) error {
	playlists, err := a.playlists.GetEnabled(ctx)
	if err != nil {
		return fmt.Errorf("listing playlists: %w", err)
	}
	if len(playlists) == 0 {
		fmt.Println("No enabled playlists")
		return nil
	}

	var failed int
	for _, p := range playlists {
		if err := ctx.Err(); err != nil {
			return err
		}
		dataset, err := a.orchestrator.Sync(ctx, p.ID)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Sync failed for %q: %v\n", p.Name, err)
			continue
		}
		stats := dataset.Stats()
		fmt.Printf("Synced %q: %d channels, %d movies, %d series\n",
			p.Name, stats.Channels, stats.Movies, stats.Series)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d playlists failed to sync", failed, len(playlists))
	}
	return nil
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status for all playlists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return playlistListCmd.RunE(cmd, nil)
	},
}

// progressObserver prints sync lifecycle updates for interactive syncs.
func progressObserver() syncer.Observer {
	return syncer.Observer{
		OnStatus: func(_ models.ULID, status models.PlaylistStatus, message string) {
			if message != "" {
				fmt.Fprintf(os.Stderr, "status: %s (%s)\n", status, message)
				return
			}
			fmt.Fprintf(os.Stderr, "status: %s\n", status)
		},
		OnProgress: func(_ models.ULID, stats models.Stats) {
			fmt.Fprintf(os.Stderr, "\rparsed %d items", stats.Total())
		},
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncAll, "all", false, "sync all enabled playlists")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "print live progress to stderr")
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}
