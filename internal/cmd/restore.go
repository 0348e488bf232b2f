package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/observability"
)

var restoreCmd = &cobra.Command{
	Use:   "restore [snapshot-id]",
	Short: "Re-star repositories from a snapshot",
	Long: `Compare a snapshot against the currently starred set of the
authenticated user and star every repository present in the snapshot but
missing from the account. Nothing is ever unstarred. Without an id the
most recent snapshot is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		snapshot, wanted, err := db.GetSnapshot(ctx, id)
		if err != nil {
			return err
		}
		if snapshot == nil {
			if id == "" {
				return fmt.Errorf("no snapshots stored yet")
			}
			return fmt.Errorf("snapshot %q not found", id)
		}

		svc := newStarsService(db)
		current, err := svc.ListStarred(ctx, "")
		if err != nil {
			return err
		}

		starred := make(map[string]bool, len(current))
		for _, star := range current {
			starred[star.Repo.FullName] = true
		}

		var missing []string
		for _, star := range wanted {
			if !starred[star.Repo.FullName] {
				missing = append(missing, star.Repo.FullName)
			}
		}

		if len(missing) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing to restore: all %d repositories from snapshot %s are starred\n", len(wanted), snapshot.ID)
			return nil
		}

		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "Would star %d repositories:\n", len(missing))
			for _, name := range missing {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
			return nil
		}

		for _, name := range missing {
			if err := svc.Star(ctx, name); err != nil {
				return fmt.Errorf("star %s: %w", name, err)
			}
			observability.Logger.Info("restored star", zap.String("repo", name))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Restored %d stars from snapshot %s\n", len(missing), snapshot.ID)
		return nil
	},
}

func init() {
	restoreCmd.Flags().Bool("dry-run", false, "show what would be starred without starring")
	rootCmd.AddCommand(restoreCmd)
}
