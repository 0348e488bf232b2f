package cmd

import (
	"github.com/spf13/cobra"

	"github.com/starlens/starlens/internal/core/categorize"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Group starred repositories by category rules",
	Long: `Enumerate starred repositories and group them by pattern rules
matched against name, description, language and topics. Built-in rules
cover common languages and domains; a YAML rules file replaces them.`,
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
		rulesFile, err := cmd.Flags().GetString("rules")
		if err != nil {
			return err
		}
		if rulesFile == "" {
			rulesFile = appConfig.Categories.RulesFile
		}

		rules, err := categorize.LoadRules(rulesFile)
		if err != nil {
			return err
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

		report := categorize.BuildReport(rules, user, stars)
		rendered, err := formatter.FormatCategories(report)
		return emit(sink, rendered, err)
	},
}

func init() {
	categorizeCmd.Flags().String("user", "", "GitHub account to categorize (default: authenticated user)")
	categorizeCmd.Flags().String("rules", "", "YAML rules file overriding the built-in categories")
	registerOutputFlags(categorizeCmd)
	rootCmd.AddCommand(categorizeCmd)
}
