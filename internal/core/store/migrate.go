package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		note TEXT,
		repo_count INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);`,
	`CREATE TABLE IF NOT EXISTS snapshot_repos (
		snapshot_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		starred_at INTEGER,
		data TEXT NOT NULL,
		PRIMARY KEY (snapshot_id, full_name)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_snapshot_repos_snapshot ON snapshot_repos(snapshot_id);`,
	`CREATE TABLE IF NOT EXISTS rate_budgets (
		endpoint TEXT PRIMARY KEY,
		capacity INTEGER NOT NULL,
		remaining INTEGER NOT NULL,
		reset_at INTEGER,
		observed_at INTEGER NOT NULL
	);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
