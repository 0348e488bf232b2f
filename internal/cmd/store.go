package cmd

import (
	"context"

	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/core/store"
	"github.com/starlens/starlens/internal/observability"
)

func openStore(ctx context.Context) (*store.Store, error) {
	db, err := store.Open(ctx, appConfig.Store)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close() // nolint:errcheck // already failing
		return nil, err
	}

	return db, nil
}

// openBudgetStore opens the store only so observed rate budgets can be
// persisted. API commands still work without a writable store, they just
// leave the rate-limit view stale, so failures are tolerated.
func openBudgetStore(ctx context.Context) *store.Store {
	db, err := openStore(ctx)
	if err != nil {
		observability.Logger.Debug("rate budgets will not be persisted", zap.Error(err))
		return nil
	}
	return db
}

func closeStore(db *store.Store) {
	if db != nil {
		_ = db.Close() // nolint:errcheck // best-effort cleanup
	}
}
