package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starlens/starlens/internal/config"
	"github.com/starlens/starlens/internal/core/store"
)

func testConfig() *config.Config {
	return &config.Config{
		GitHub: config.GitHubConfig{
			BaseURL:   "https://api.github.com",
			Token:     "secret",
			UserAgent: "starlens-test",
			PageSize:  100,
			Timeout:   30 * time.Second,
		},
		RateLimit: config.RateLimitConfig{
			Capacity:        5000,
			RefillPerSecond: float64(5000) / 3600,
			WaitCeiling:     45 * time.Second,
		},
		Retry: config.RetryConfig{
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
			Multiplier:     2.0,
		},
	}
}

func TestNewForgeClientWithoutStoreHasNoObserver(t *testing.T) {
	appConfig = testConfig()
	t.Cleanup(func() { appConfig = nil })

	client := newForgeClient(nil)
	require.Nil(t, client.Observer)
}

func TestNewForgeClientPersistsObservedBudgets(t *testing.T) {
	appConfig = testConfig()
	t.Cleanup(func() { appConfig = nil })

	client := newForgeClient(&store.Store{})
	require.NotNil(t, client.Observer)

	// The observer is best-effort: an unusable store must not panic the
	// command that observed the budget.
	require.NotPanics(t, func() {
		client.Observer(4999, 5000, time.Now().Add(time.Hour))
	})
}

func TestNewStarsServiceCarriesClientSettings(t *testing.T) {
	appConfig = testConfig()
	t.Cleanup(func() { appConfig = nil })

	svc := newStarsService(&store.Store{})
	require.Equal(t, 100, svc.PageSize)
	require.NotNil(t, svc.Client)
	require.NotNil(t, svc.Client.Observer)
	require.Equal(t, "https://api.github.com", svc.Client.BaseURL)
	require.Equal(t, 3, svc.Client.Retry.MaxRetries)
}
