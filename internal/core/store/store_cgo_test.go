//go:build cgo

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starlens/starlens/internal/config"
	"github.com/starlens/starlens/internal/core"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenMemoryStore(t *testing.T) {
	store := openMemoryStore(t)
	require.Equal(t, "libsql", store.Driver())
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	stars := []core.StarredRepo{
		{
			StarredAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			Repo:      core.Repository{ID: 1, FullName: "octo/alpha", Language: "Go"},
		},
		{
			StarredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			Repo:      core.Repository{ID: 2, FullName: "octo/beta", Archived: true},
		},
	}

	id, err := store.SaveSnapshot(ctx, "octo", "pre-prune backup", stars)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snapshots, err := store.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, "octo", snapshots[0].Account)
	require.Equal(t, 2, snapshots[0].RepoCount)

	snap, restored, err := store.GetSnapshot(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, restored, 2)
	require.Equal(t, "octo/alpha", restored[0].Repo.FullName)
	require.True(t, restored[1].Repo.Archived)
}

func TestGetSnapshotEmptyIDReturnsLatest(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	_, err := store.SaveSnapshot(ctx, "octo", "first", nil)
	require.NoError(t, err)

	// created_at has second granularity; force distinct ordering
	_, err = store.DB.ExecContext(ctx, `UPDATE snapshots SET created_at = created_at - 60`)
	require.NoError(t, err)

	latestID, err := store.SaveSnapshot(ctx, "octo", "second", nil)
	require.NoError(t, err)

	snap, _, err := store.GetSnapshot(ctx, "")
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, latestID, snap.ID)
}

func TestGetSnapshotMissing(t *testing.T) {
	store := openMemoryStore(t)

	snap, stars, err := store.GetSnapshot(context.Background(), "no-such-id")
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Nil(t, stars)
}

func TestDeleteSnapshot(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	id, err := store.SaveSnapshot(ctx, "octo", "", []core.StarredRepo{
		{Repo: core.Repository{FullName: "octo/alpha"}},
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteSnapshot(ctx, id))

	snap, _, err := store.GetSnapshot(ctx, id)
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestRateBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openMemoryStore(t)

	record, err := store.GetRateBudget(ctx, "api.github.com")
	require.NoError(t, err)
	require.Nil(t, record)

	reset := time.Now().Add(30 * time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, store.UpdateRateBudget(ctx, &core.RateBudgetRecord{
		Endpoint:  "api.github.com",
		Capacity:  5000,
		Remaining: 4990,
		ResetAt:   reset,
	}))

	record, err = store.GetRateBudget(ctx, "api.github.com")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, 5000, record.Capacity)
	require.Equal(t, 4990, record.Remaining)
	require.Equal(t, reset, record.ResetAt)
	require.False(t, record.ObservedAt.IsZero())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.ErrorContains(t, err, "unsupported store driver")
}

func TestResolveDSN(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  config.StoreConfig
		want string
	}{
		{"memory", config.StoreConfig{Path: ":memory:"}, ":memory:"},
		{"explicit file dsn", config.StoreConfig{Path: "file:/tmp/stars.db"}, "file:/tmp/stars.db"},
		{"explicit libsql dsn", config.StoreConfig{Path: "libsql://stars.turso.io"}, "libsql://stars.turso.io"},
		{"plain path gains scheme", config.StoreConfig{Path: filepath.Join(dir, "stars.db")}, "file:" + filepath.Join(dir, "stars.db")},
		{"url wins over path", config.StoreConfig{URL: "libsql://stars.turso.io", Path: ":memory:"}, "libsql://stars.turso.io"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveDSN(tc.cfg)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestResolveDSNRequiresTarget(t *testing.T) {
	_, err := resolveDSN(config.StoreConfig{})
	require.ErrorContains(t, err, "store path or url is required")
}

func TestResolveDSNCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stars.db")

	got, err := resolveDSN(config.StoreConfig{Path: path})
	require.NoError(t, err)
	require.Equal(t, "file:"+path, got)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestWithAuthToken(t *testing.T) {
	got, err := withAuthToken("libsql://stars.turso.io", "secret")
	require.NoError(t, err)
	require.Equal(t, "libsql://stars.turso.io?authToken=secret", got)

	// An existing token is never overwritten.
	got, err = withAuthToken("libsql://stars.turso.io?authToken=old", "new")
	require.NoError(t, err)
	require.Equal(t, "libsql://stars.turso.io?authToken=old", got)

	// No token leaves the DSN untouched.
	got, err = withAuthToken("libsql://stars.turso.io", "")
	require.NoError(t, err)
	require.Equal(t, "libsql://stars.turso.io", got)
}
