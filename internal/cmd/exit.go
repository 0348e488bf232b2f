package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/core/forge"
	"github.com/starlens/starlens/internal/observability"
)

// exitCode renders err to stderr and maps it to a process exit code.
// Classified API errors surface as "kind: message" with no stack trace;
// everything else prints verbatim. Any error exits 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}

	if kind := forge.KindOf(err); kind != forge.KindUnknown {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	observability.Logger.Debug("command failed", zap.Error(err))
	return 1
}
