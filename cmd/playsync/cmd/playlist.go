package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/playsync/playsync/internal/models"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage playlist sources",
}

var playlistAddFlags struct {
	typ      string
	url      string
	username string
	password string
	cron     string
	disabled bool
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a playlist source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		enabled := !playlistAddFlags.disabled
		playlist := &models.Playlist{
			Name:         args[0],
			Type:         models.PlaylistType(playlistAddFlags.typ),
			URL:          playlistAddFlags.url,
			Username:     playlistAddFlags.username,
			Password:     playlistAddFlags.password,
			CronSchedule: playlistAddFlags.cron,
			Enabled:      &enabled,
		}

		if err := a.playlists.Create(cmd.Context(), playlist); err != nil {
			return fmt.Errorf("creating playlist: %w", err)
		}

		fmt.Printf("Added playlist %q (%s)\n", playlist.Name, playlist.ID)
		return nil
	},
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlist sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		playlists, err := a.playlists.GetAll(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing playlists: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tSTATUS\tENABLED\tITEMS\tLAST SYNCED")
		for _, p := range playlists {
			lastSynced := "never"
			if p.LastSyncedAt != nil {
				lastSynced = p.LastSyncedAt.Format("2006-01-02 15:04:05")
			}
			enabled := p.Enabled == nil || *p.Enabled
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%d\t%s\n",
				p.Name, p.Type, p.Status, enabled, p.Stats.Total(), lastSynced)
		}
		return w.Flush()
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show details for a playlist source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := lookupPlaylist(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Name:      %s\n", p.Name)
		fmt.Printf("ID:        %s\n", p.ID)
		fmt.Printf("Type:      %s\n", p.Type)
		fmt.Printf("URL:       %s\n", p.URL)
		fmt.Printf("Status:    %s\n", p.Status)
		fmt.Printf("Enabled:   %t\n", p.Enabled == nil || *p.Enabled)
		if p.CronSchedule != "" {
			fmt.Printf("Schedule:  %s\n", p.CronSchedule)
		}
		if p.LastSyncedAt != nil {
			fmt.Printf("Synced at: %s\n", p.LastSyncedAt.Format("2006-01-02 15:04:05"))
		}
		if p.LastError != "" {
			fmt.Printf("Error:     %s\n", p.LastError)
		}
		fmt.Printf("Channels:  %d\n", p.Stats.Channels)
		fmt.Printf("Movies:    %d\n", p.Stats.Movies)
		fmt.Printf("Series:    %d\n", p.Stats.Series)
		return nil
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a playlist source and its synced data",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := lookupPlaylist(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}

		if err := a.orchestrator.Delete(cmd.Context(), p.ID); err != nil {
			return fmt.Errorf("removing playlist %q: %w", p.Name, err)
		}

		fmt.Printf("Removed playlist %q\n", p.Name)
		return nil
	},
}

var playlistEnableCmd = &cobra.Command{
	Use:   "enable <name>",
	Short: "Enable a playlist source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlaylistEnabled(cmd.Context(), args[0], true)
	},
}

var playlistDisableCmd = &cobra.Command{
	Use:   "disable <name>",
	Short: "Disable a playlist source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setPlaylistEnabled(cmd.Context(), args[0], false)
	},
}

func setPlaylistEnabled(ctx context.Context, name string, enabled bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := lookupPlaylist(ctx, a, name)
	if err != nil {
		return err
	}

	p.Enabled = &enabled
	if err := a.playlists.Update(ctx, p); err != nil {
		return fmt.Errorf("updating playlist: %w", err)
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("Playlist %q %s\n", p.Name, state)
	return nil
}

// lookupPlaylist resolves a playlist by name.
func lookupPlaylist(ctx context.Context, a *app, name string) (*models.Playlist, error) {
	p, err := a.playlists.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up playlist %q: %w", name, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q", models.ErrPlaylistNotFound, name)
	}
	return p, nil
}

func init() {
	playlistAddCmd.Flags().StringVar(&playlistAddFlags.typ, "type", "m3u", "playlist type (m3u, xtream)")
	playlistAddCmd.Flags().StringVar(&playlistAddFlags.url, "url", "", "playlist URL or Xtream server base URL")
	playlistAddCmd.Flags().StringVar(&playlistAddFlags.username, "username", "", "Xtream username")
	playlistAddCmd.Flags().StringVar(&playlistAddFlags.password, "password", "", "Xtream password")
	playlistAddCmd.Flags().StringVar(&playlistAddFlags.cron, "cron", "", "cron schedule for automatic re-sync (e.g. \"0 */6 * * *\")")
	playlistAddCmd.Flags().BoolVar(&playlistAddFlags.disabled, "disabled", false, "add the playlist in a disabled state")
	_ = playlistAddCmd.MarkFlagRequired("url")

	playlistCmd.AddCommand(playlistAddCmd)
	playlistCmd.AddCommand(playlistListCmd)
	playlistCmd.AddCommand(playlistShowCmd)
	playlistCmd.AddCommand(playlistRemoveCmd)
	playlistCmd.AddCommand(playlistEnableCmd)
	playlistCmd.AddCommand(playlistDisableCmd)
	rootCmd.AddCommand(playlistCmd)
}
