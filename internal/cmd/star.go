package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var starCmd = &cobra.Command{
	Use:   "star <owner/repo>...",
	Short: "Star one or more repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db := openBudgetStore(ctx)
		defer closeStore(db)

		svc := newStarsService(db)
		for _, name := range args {
			if err := svc.Star(ctx, name); err != nil {
				return fmt.Errorf("star %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starred %s\n", name)
		}
		return nil
	},
}

var unstarCmd = &cobra.Command{
	Use:   "unstar <owner/repo>...",
	Short: "Remove the star from one or more repositories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db := openBudgetStore(ctx)
		defer closeStore(db)

		svc := newStarsService(db)
		for _, name := range args {
			if err := svc.Unstar(ctx, name); err != nil {
				return fmt.Errorf("unstar %s: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unstarred %s\n", name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(starCmd, unstarCmd)
}
