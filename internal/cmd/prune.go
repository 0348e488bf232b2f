package cmd

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/core/stars"
	"github.com/starlens/starlens/internal/observability"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Unstar archived or stale repositories",
	Long: `Enumerate the authenticated user's stars and unstar the ones matching
the prune criteria: archived repositories and repositories without a push
within the --older-than window. Run with --dry-run first; without --yes a
confirmation prompt guards the destructive step.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		archived, err := cmd.Flags().GetBool("archived")
		if err != nil {
			return err
		}
		olderThan, err := cmd.Flags().GetDuration("older-than")
		if err != nil {
			return err
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}
		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return err
		}

		if !archived && olderThan <= 0 {
			return fmt.Errorf("nothing to prune: pass --archived and/or --older-than")
		}

		db := openBudgetStore(ctx)
		defer closeStore(db)

		svc := newStarsService(db)
		all, err := svc.ListStarred(ctx, "")
		if err != nil {
			return err
		}

		candidates := stars.PruneCandidates(all, stars.PruneOptions{
			Archived:  archived,
			OlderThan: olderThan,
			Now:       time.Now().UTC(),
		})
		if len(candidates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing matches the prune criteria")
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d starred repositories match:\n", len(candidates), len(all))
		for _, star := range candidates {
			reason := "stale"
			if star.Repo.Archived {
				reason = "archived"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", star.Repo.FullName, reason)
		}

		if dryRun {
			return nil
		}

		if !yes && !confirm(cmd, fmt.Sprintf("Unstar these %d repositories?", len(candidates))) {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
			return nil
		}

		for _, star := range candidates {
			if err := svc.Unstar(ctx, star.Repo.FullName); err != nil {
				return fmt.Errorf("unstar %s: %w", star.Repo.FullName, err)
			}
			observability.Logger.Info("pruned star", zap.String("repo", star.Repo.FullName))
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Unstarred %d repositories\n", len(candidates))
		return nil
	},
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	pruneCmd.Flags().Bool("archived", false, "prune archived repositories")
	pruneCmd.Flags().Duration("older-than", 0, "prune repositories without a push within this window (e.g. 17520h)")
	pruneCmd.Flags().Bool("dry-run", false, "show candidates without unstarring")
	pruneCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(pruneCmd)
}
