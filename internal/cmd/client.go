package cmd

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/starlens/starlens/internal/core"
	"github.com/starlens/starlens/internal/core/forge"
	"github.com/starlens/starlens/internal/core/stars"
	"github.com/starlens/starlens/internal/core/store"
	"github.com/starlens/starlens/internal/observability"
)

// newForgeClient assembles the API client from the loaded config. When a
// store is supplied, every server-reported rate budget is persisted so the
// rate-limit command can show the last observed state.
func newForgeClient(db *store.Store) *forge.Client {
	cfg := appConfig

	limiter := forge.NewLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSecond).
		WithWaitCeiling(cfg.RateLimit.WaitCeiling)

	client := forge.NewClient(cfg.GitHub.BaseURL, cfg.GitHub.Token)
	client.UserAgent = cfg.GitHub.UserAgent
	client.HTTPClient = &http.Client{Timeout: cfg.GitHub.Timeout}
	client.Limiter = limiter
	client.Retry = forge.RetryConfig{
		MaxRetries:     cfg.Retry.MaxRetries,
		InitialBackoff: cfg.Retry.InitialBackoff,
		MaxBackoff:     cfg.Retry.MaxBackoff,
		Multiplier:     cfg.Retry.Multiplier,
	}
	client.Logger = observability.Logger

	if db != nil {
		endpoint := endpointHost(cfg.GitHub.BaseURL)
		client.Observer = func(remaining, capacity int, resetAt time.Time) {
			record := &core.RateBudgetRecord{
				Endpoint:   endpoint,
				Capacity:   capacity,
				Remaining:  remaining,
				ResetAt:    resetAt,
				ObservedAt: time.Now().UTC(),
			}
			if err := db.UpdateRateBudget(context.Background(), record); err != nil {
				observability.Logger.Debug("failed to persist rate budget", zap.Error(err))
			}
		}
	}

	return client
}

func newStarsService(db *store.Store) *stars.Service {
	return &stars.Service{
		Client:   newForgeClient(db),
		PageSize: appConfig.GitHub.PageSize,
		Logger:   observability.Logger,
	}
}

func endpointHost(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return baseURL
	}
	return parsed.Host
}
