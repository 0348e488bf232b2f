package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List starred repositories",
	Long: `Enumerate the starred repositories of the configured account (or the
authenticated user when no account is set) and render them in the chosen
format.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		user, err := cmd.Flags().GetString("user")
		if err != nil {
			return err
		}
		if user == "" {
			user = appConfig.GitHub.User
		}

		formatter, err := resolveFormatter(cmd)
		if err != nil {
			return err
		}
		sink, err := resolveSink(cmd)
		if err != nil {
			return err
		}

		db := openBudgetStore(ctx)
		defer closeStore(db)

		svc := newStarsService(db)
		stars, err := svc.ListStarred(ctx, user)
		if err != nil {
			_ = sink.close() // nolint:errcheck // already failing
			return err
		}

		rendered, err := formatter.FormatStars(stars)
		return emit(sink, rendered, err)
	},
}

func init() {
	listCmd.Flags().String("user", "", "GitHub account to enumerate (default: authenticated user)")
	registerOutputFlags(listCmd)
	rootCmd.AddCommand(listCmd)
}
