package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "https://api.github.com", cfg.GitHub.BaseURL)
	require.Equal(t, 100, cfg.GitHub.PageSize)
	require.Equal(t, 5000, cfg.RateLimit.Capacity)
	require.Equal(t, 45*time.Second, cfg.RateLimit.WaitCeiling)
	require.Equal(t, 3, cfg.Retry.MaxRetries)
	require.Equal(t, "libsql", cfg.Store.Driver)
	require.Equal(t, "table", cfg.Output.Format)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `github:
  base_url: https://github.example.com/api/v3
  user: octo
  page_size: 50
  timeout: 10s
retry:
  max_retries: 5
ratelimit:
  wait_ceiling: 60s
output:
  format: markdown
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://github.example.com/api/v3", cfg.GitHub.BaseURL)
	require.Equal(t, "octo", cfg.GitHub.User)
	require.Equal(t, 50, cfg.GitHub.PageSize)
	require.Equal(t, 10*time.Second, cfg.GitHub.Timeout)
	require.Equal(t, 5, cfg.Retry.MaxRetries)
	require.Equal(t, 60*time.Second, cfg.RateLimit.WaitCeiling)
	require.Equal(t, "markdown", cfg.Output.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("STARLENS_GITHUB_TOKEN", "env-token")
	t.Setenv("STARLENS_OUTPUT_FORMAT", "json")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "env-token", cfg.GitHub.Token)
	require.Equal(t, "json", cfg.Output.Format)
}

func TestLoadGitHubTokenFallback(t *testing.T) {
	t.Setenv("STARLENS_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "fallback-token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "fallback-token", cfg.GitHub.Token)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("github: [not a map"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
