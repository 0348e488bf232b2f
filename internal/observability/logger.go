// Package observability provides the shared zap logger used across the CLI
// and the report server.
package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It defaults to a no-op logger so that
// library code can log unconditionally; Init replaces it before any command
// runs.
var Logger = zap.NewNop()

// Init configures the global logger. Level accepts the usual zap level names
// ("debug", "info", "warn", "error"); verbose forces debug regardless of the
// configured level. Output goes to stderr so stdout stays clean for
// machine-readable command output.
func Init(level string, verbose bool) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.TrimSpace(level))
		if err != nil {
			return err
		}
		lvl = parsed
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)

	Logger = zap.New(core)
	return nil
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	_ = Logger.Sync() // nolint:errcheck // stderr sync errors are not actionable
}
