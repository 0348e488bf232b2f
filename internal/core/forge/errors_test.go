package forge

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func responseWithHeaders(status int, headers map[string]string) *http.Response {
	header := http.Header{}
	for key, value := range headers {
		header.Set(key, value)
	}
	return &http.Response{StatusCode: status, Header: header}
}

func TestClassifyNetworkError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	apiErr := Classify(nil, nil, cause)
	require.Equal(t, KindNetwork, apiErr.Kind)
	require.ErrorIs(t, apiErr, cause)
}

func TestClassifyAuth(t *testing.T) {
	apiErr := Classify(responseWithHeaders(401, nil), nil, nil)
	require.Equal(t, KindAuth, apiErr.Kind)
	require.Equal(t, 401, apiErr.StatusCode)
}

func TestClassifyForbiddenWithExhaustedQuota(t *testing.T) {
	reset := time.Now().Add(2 * time.Second).Unix()
	resp := responseWithHeaders(403, map[string]string{
		"x-ratelimit-remaining": "0",
		"x-ratelimit-reset":     fmt.Sprintf("%d", reset),
	})

	apiErr := Classify(resp, nil, nil)
	require.Equal(t, KindRateLimited, apiErr.Kind)
	require.Equal(t, time.Unix(reset, 0).UTC(), apiErr.ResetAt)
}

func TestClassifyForbiddenWithQuotaLeftIsUnknown(t *testing.T) {
	resp := responseWithHeaders(403, map[string]string{
		"x-ratelimit-remaining": "42",
	})

	apiErr := Classify(resp, []byte("forbidden"), nil)
	require.Equal(t, KindUnknown, apiErr.Kind)
}

func TestClassifyTooManyRequests(t *testing.T) {
	resp := responseWithHeaders(429, map[string]string{"Retry-After": "7"})

	apiErr := Classify(resp, nil, nil)
	require.Equal(t, KindRateLimited, apiErr.Kind)
	require.Equal(t, 7*time.Second, apiErr.RetryAfter)
}

func TestClassifyNotFound(t *testing.T) {
	apiErr := Classify(responseWithHeaders(404, nil), nil, nil)
	require.Equal(t, KindNotFound, apiErr.Kind)
}

func TestClassifyServerError(t *testing.T) {
	for _, status := range []int{500, 502, 503} {
		apiErr := Classify(responseWithHeaders(status, nil), nil, nil)
		require.Equal(t, KindServer, apiErr.Kind, "status %d", status)
	}
}

func TestClassifyUnknownCarriesBody(t *testing.T) {
	apiErr := Classify(responseWithHeaders(422, nil), []byte(`{"message":"validation failed"}`), nil)
	require.Equal(t, KindUnknown, apiErr.Kind)
	require.Contains(t, apiErr.Message, "validation failed")
}

func TestClassifyIdempotent(t *testing.T) {
	resp := responseWithHeaders(403, map[string]string{"x-ratelimit-remaining": "0"})

	first := Classify(resp, nil, nil)
	second := Classify(resp, nil, nil)
	require.Equal(t, first.Kind, second.Kind)
	require.Equal(t, first.StatusCode, second.StatusCode)
}

func TestRetryable(t *testing.T) {
	require.True(t, Retryable(&APIError{Kind: KindRateLimited}))
	require.True(t, Retryable(&APIError{Kind: KindServer}))
	require.True(t, Retryable(&APIError{Kind: KindNetwork}))
	require.False(t, Retryable(&APIError{Kind: KindAuth}))
	require.False(t, Retryable(&APIError{Kind: KindNotFound}))
	require.False(t, Retryable(&APIError{Kind: KindUnknown}))
	require.False(t, Retryable(errors.New("plain")))
}

func TestKindOfWrappedError(t *testing.T) {
	apiErr := &APIError{Kind: KindNotFound, StatusCode: 404, Message: "resource not found"}
	wrapped := fmt.Errorf("list stars: %w", apiErr)
	require.Equal(t, KindNotFound, KindOf(wrapped))
}
