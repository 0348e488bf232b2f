package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starlens/starlens/internal/core"
)

// GetRateBudget returns the last observed rate budget for an endpoint.
func (s *Store) GetRateBudget(ctx context.Context, endpoint string) (*core.RateBudgetRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}

	var (
		capacity   int
		remaining  int
		resetAt    sql.NullInt64
		observedAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT capacity, remaining, reset_at, observed_at
		FROM rate_budgets
		WHERE endpoint = ?
	`, endpoint)

	if err := row.Scan(&capacity, &remaining, &resetAt, &observedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch rate budget: %w", err)
	}

	record := &core.RateBudgetRecord{
		Endpoint:   endpoint,
		Capacity:   capacity,
		Remaining:  remaining,
		ObservedAt: time.Unix(observedAt, 0).UTC(),
	}
	if resetAt.Valid {
		record.ResetAt = time.Unix(resetAt.Int64, 0).UTC()
	}

	return record, nil
}

// UpdateRateBudget persists the latest server-reported budget for an
// endpoint.
func (s *Store) UpdateRateBudget(ctx context.Context, record *core.RateBudgetRecord) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if record == nil {
		return errors.New("rate budget record is required")
	}

	endpoint := strings.TrimSpace(record.Endpoint)
	if endpoint == "" {
		return errors.New("endpoint is required")
	}

	var resetAt sql.NullInt64
	if !record.ResetAt.IsZero() {
		resetAt = sql.NullInt64{Int64: record.ResetAt.UTC().Unix(), Valid: true}
	}

	observedAt := record.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO rate_budgets (endpoint, capacity, remaining, reset_at, observed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			capacity = excluded.capacity,
			remaining = excluded.remaining,
			reset_at = excluded.reset_at,
			observed_at = excluded.observed_at
	`, endpoint, record.Capacity, record.Remaining, resetAt, observedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("store rate budget: %w", err)
	}

	return nil
}
