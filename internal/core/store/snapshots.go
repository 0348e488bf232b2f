package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starlens/starlens/internal/core"
)

// SaveSnapshot stores a complete star list as one backup and returns
// its snapshot id.
func (s *Store) SaveSnapshot(ctx context.Context, account, note string, stars []core.StarredRepo) (string, error) {
	if s == nil || s.DB == nil {
		return "", errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	account = strings.TrimSpace(account)
	if account == "" {
		return "", errors.New("account is required")
	}

	id := uuid.New().String()
	createdAt := time.Now().UTC().Unix()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, account, note, repo_count, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, account, strings.TrimSpace(note), len(stars), createdAt)
	if err != nil {
		return "", fmt.Errorf("store snapshot: %w", err)
	}

	for _, star := range stars {
		payload, err := json.Marshal(star)
		if err != nil {
			return "", fmt.Errorf("encode snapshot repo: %w", err)
		}

		var starredAt sql.NullInt64
		if !star.StarredAt.IsZero() {
			starredAt = sql.NullInt64{Int64: star.StarredAt.UTC().Unix(), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_repos (snapshot_id, full_name, starred_at, data)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(snapshot_id, full_name) DO UPDATE SET
				starred_at = excluded.starred_at,
				data = excluded.data
		`, id, star.Repo.FullName, starredAt, string(payload))
		if err != nil {
			return "", fmt.Errorf("store snapshot repo: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}

	return id, nil
}

// ListSnapshots returns stored snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context) ([]core.Snapshot, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, account, note, repo_count, created_at
		FROM snapshots
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var snapshots []core.Snapshot
	for rows.Next() {
		var (
			snap      core.Snapshot
			note      sql.NullString
			createdAt int64
		)
		if err := rows.Scan(&snap.ID, &snap.Account, &note, &snap.RepoCount, &createdAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.Note = note.String
		snap.CreatedAt = time.Unix(createdAt, 0).UTC()
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return snapshots, nil
}

// GetSnapshot loads one snapshot with its star list. An empty id loads
// the most recent snapshot.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*core.Snapshot, []core.StarredRepo, error) {
	if s == nil || s.DB == nil {
		return nil, nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)

	var (
		snap      core.Snapshot
		note      sql.NullString
		createdAt int64
		err       error
	)

	if id == "" {
		err = s.DB.QueryRowContext(ctx, `
			SELECT id, account, note, repo_count, created_at
			FROM snapshots
			ORDER BY created_at DESC
			LIMIT 1
		`).Scan(&snap.ID, &snap.Account, &note, &snap.RepoCount, &createdAt)
	} else {
		err = s.DB.QueryRowContext(ctx, `
			SELECT id, account, note, repo_count, created_at
			FROM snapshots
			WHERE id = ?
		`, id).Scan(&snap.ID, &snap.Account, &note, &snap.RepoCount, &createdAt)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	snap.Note = note.String
	snap.CreatedAt = time.Unix(createdAt, 0).UTC()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT data
		FROM snapshot_repos
		WHERE snapshot_id = ?
		ORDER BY full_name
	`, snap.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch snapshot repos: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var stars []core.StarredRepo
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, nil, fmt.Errorf("scan snapshot repo: %w", err)
		}

		var star core.StarredRepo
		if err := json.Unmarshal([]byte(data), &star); err != nil {
			return nil, nil, fmt.Errorf("decode snapshot repo: %w", err)
		}
		stars = append(stars, star)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("fetch snapshot repos: %w", err)
	}

	return &snap, stars, nil
}

// DeleteSnapshot removes a snapshot and its star list.
func (s *Store) DeleteSnapshot(ctx context.Context, id string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("snapshot id is required")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM snapshot_repos WHERE snapshot_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot repos: %w", err)
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}

	return nil
}
