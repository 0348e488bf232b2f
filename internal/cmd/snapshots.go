package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect stored snapshots",
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		formatter, err := resolveFormatter(cmd)
		if err != nil {
			return err
		}
		sink, err := resolveSink(cmd)
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			_ = sink.close() // nolint:errcheck // already failing
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		snapshots, err := db.ListSnapshots(ctx)
		if err != nil {
			_ = sink.close() // nolint:errcheck // already failing
			return err
		}

		rendered, err := formatter.FormatSnapshots(snapshots)
		return emit(sink, rendered, err)
	},
}

var snapshotsShowCmd = &cobra.Command{
	Use:   "show [snapshot-id]",
	Short: "Show the repositories captured in a snapshot",
	Long: `Show one snapshot's starred repositories. Without an id the most
recent snapshot is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		id := ""
		if len(args) == 1 {
			id = args[0]
		}

		formatter, err := resolveFormatter(cmd)
		if err != nil {
			return err
		}
		sink, err := resolveSink(cmd)
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			_ = sink.close() // nolint:errcheck // already failing
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		snapshot, stars, err := db.GetSnapshot(ctx, id)
		if err != nil {
			_ = sink.close() // nolint:errcheck // already failing
			return err
		}
		if snapshot == nil {
			_ = sink.close() // nolint:errcheck // already failing
			if id == "" {
				return fmt.Errorf("no snapshots stored yet")
			}
			return fmt.Errorf("snapshot %q not found", id)
		}

		rendered, err := formatter.FormatStars(stars)
		return emit(sink, rendered, err)
	},
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <snapshot-id>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		if err := db.DeleteSnapshot(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
		return nil
	},
}

func init() {
	registerOutputFlags(snapshotsListCmd)
	registerOutputFlags(snapshotsShowCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd, snapshotsShowCmd, snapshotsDeleteCmd)
	rootCmd.AddCommand(snapshotsCmd)
}
