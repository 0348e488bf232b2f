package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Show the last observed API rate budget",
	Long: `Show the rate budget the server reported on the most recent API call,
as persisted in the local store. No API call is made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		endpoint := endpointHost(appConfig.GitHub.BaseURL)
		record, err := db.GetRateBudget(ctx, endpoint)
		if err != nil {
			return err
		}
		if record == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "No rate budget observed yet for %s\n", endpoint)
			return nil
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Endpoint:  %s\n", record.Endpoint)
		fmt.Fprintf(out, "Remaining: %d / %d\n", record.Remaining, record.Capacity)
		if !record.ResetAt.IsZero() {
			fmt.Fprintf(out, "Resets:    %s (%s)\n",
				record.ResetAt.Local().Format(time.RFC1123),
				formatUntil(record.ResetAt))
		}
		fmt.Fprintf(out, "Observed:  %s\n", record.ObservedAt.Local().Format(time.RFC1123))
		return nil
	},
}

func formatUntil(t time.Time) string {
	until := time.Until(t)
	if until <= 0 {
		return "already reset"
	}
	return "in " + until.Round(time.Second).String()
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
}
