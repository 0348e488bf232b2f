// Package cmd wires the starlens command tree.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/starlens/starlens/internal/config"
	"github.com/starlens/starlens/internal/observability"
)

var (
	cfgFile string
	verbose bool

	// appConfig is loaded once in the root PersistentPreRunE and read by
	// every subcommand.
	appConfig *config.Config

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by the main package to inject build metadata.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var rootCmd = &cobra.Command{
	Use:   "starlens",
	Short: "Manage GitHub starred repositories",
	Long: `starlens enumerates, backs up, restores, categorizes and prunes the
starred repositories of a GitHub account.

All API traffic flows through a token-bucket rate limiter and a retrying
client, so large star collections can be processed without tripping
server-side limits.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		return observability.Init(cfg.Logging.Level, verbose)
	},
}

// Execute runs the command tree and reports the outcome as a process exit
// code.
func Execute() int {
	defer observability.Sync()

	if err := rootCmd.Execute(); err != nil {
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/starlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
