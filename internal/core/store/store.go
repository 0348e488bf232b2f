// Package store persists star snapshots and observed rate budgets in a
// libsql database, either a local file or a remote Turso instance.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/starlens/starlens/internal/config"
)

const driverLibsql = "libsql"

// Store wraps the snapshot database connection.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the configured database and verifies it is reachable.
// Callers run Migrate before touching the snapshot tables.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if driver := strings.TrimSpace(cfg.Driver); driver != "" && driver != driverLibsql {
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	dsn, err := resolveDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverLibsql, dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // nolint:errcheck // already failing
		return nil, fmt.Errorf("ping snapshot store: %w", err)
	}

	return &Store{DB: db, driver: driverLibsql}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// Driver returns the configured store driver.
func (s *Store) Driver() string {
	if s == nil {
		return ""
	}
	return s.driver
}

// resolveDSN turns the store config into a libsql DSN. A remote URL wins
// over the local path; a plain path gets its parent directory created and
// a file: scheme prepended, while explicit file:/libsql: DSNs and
// :memory: pass through untouched.
func resolveDSN(cfg config.StoreConfig) (string, error) {
	if remote := strings.TrimSpace(cfg.URL); remote != "" {
		return withAuthToken(remote, cfg.AuthToken)
	}

	path := strings.TrimSpace(cfg.Path)
	switch {
	case path == "":
		return "", errors.New("store path or url is required")
	case path == ":memory:",
		strings.HasPrefix(path, "file:"),
		strings.HasPrefix(path, "libsql:"):
		return path, nil
	}

	clean := filepath.Clean(path)
	if dir := filepath.Dir(clean); dir != "." && dir != string(filepath.Separator) {
		// #nosec G301 -- data directories use 0755 for multi-user access compatibility
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create store directory: %w", err)
		}
	}
	return "file:" + clean, nil
}

// withAuthToken appends the Turso auth token to a remote DSN unless the
// DSN already carries one.
func withAuthToken(dsn, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return dsn, nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}

	query := parsed.Query()
	if query.Get("authToken") == "" {
		query.Set("authToken", token)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}
