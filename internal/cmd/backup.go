package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/observability"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot starred repositories into the local store",
	Long: `Enumerate all starred repositories and persist them as a snapshot in
the local store. Snapshots are immutable; restore re-stars from one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		note, err := cmd.Flags().GetString("note")
		if err != nil {
			return err
		}
		user, err := cmd.Flags().GetString("user")
		if err != nil {
			return err
		}
		if user == "" {
			user = appConfig.GitHub.User
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		svc := newStarsService(db)
		stars, err := svc.ListStarred(ctx, user)
		if err != nil {
			return err
		}

		account := user
		if account == "" {
			account = "authenticated user"
		}

		id, err := db.SaveSnapshot(ctx, account, note, stars)
		if err != nil {
			return err
		}

		observability.Logger.Info("snapshot saved",
			zap.String("id", id),
			zap.Int("repos", len(stars)))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%d repositories)\n", id, len(stars))
		return nil
	},
}

func init() {
	backupCmd.Flags().String("note", "", "free-form note stored with the snapshot")
	backupCmd.Flags().String("user", "", "GitHub account to back up (default: authenticated user)")
	rootCmd.AddCommand(backupCmd)
}
