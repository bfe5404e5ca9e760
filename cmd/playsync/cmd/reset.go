package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all synced data from the local store",
	Long: `Wipe every stored chunk from the database. Playlist definitions are
kept; their status returns to pending on the next listing that follows a
fresh sync. Requires --force.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !resetForce {
			return fmt.Errorf("refusing to wipe the store without --force")
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.chunks.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}

		fmt.Println("Store cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "confirm wiping all synced data")
	rootCmd.AddCommand(resetCmd)
}
