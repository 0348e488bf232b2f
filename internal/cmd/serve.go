package cmd

import (
	"github.com/spf13/cobra"

	"github.com/starlens/starlens/internal/observability"
	"github.com/starlens/starlens/internal/server"
	"github.com/starlens/starlens/internal/server/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local snapshot report server",
	Long: `Serve stored snapshots over a small read-only HTTP API. The server
binds to the configured host and port and shuts down cleanly on SIGINT or
SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		host, err := cmd.Flags().GetString("host")
		if err != nil {
			return err
		}
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}

		cfg := appConfig.Server
		if host != "" {
			cfg.Host = host
		}
		if port != 0 {
			cfg.Port = port
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		handlers.SetVersionInfo(versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)

		srv := server.New(cfg, db, observability.Logger)
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("host", "", "bind host (default from config)")
	serveCmd.Flags().Int("port", 0, "bind port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
