package forge

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind buckets API failures so retry policy is a function of the
// kind rather than of raw status codes or message text.
type ErrorKind string

const (
	KindAuth        ErrorKind = "auth"
	KindNotFound    ErrorKind = "not_found"
	KindRateLimited ErrorKind = "rate_limited"
	KindServer      ErrorKind = "server"
	KindNetwork     ErrorKind = "network"
	KindUnknown     ErrorKind = "unknown"
)

// APIError is the classified form of a failed API call. It is immutable
// once constructed and carries everything the caller needs to decide
// retry vs. propagate without re-inspecting the response.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	RetryAfter time.Duration
	ResetAt    time.Time
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e == nil {
		return "api error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("github request failed (%s): status %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github request failed (%s): %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf returns the classified kind of err, or KindUnknown when err was
// never classified.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.Kind
	}
	return KindUnknown
}

// Retryable reports whether the client may retry the call locally.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindServer, KindNetwork:
		return true
	default:
		return false
	}
}

// Classify maps a response (or transport failure) to an APIError.
//
// The 403 branch must inspect the remaining-quota header before falling
// through: an exhausted rate budget and a permission error share the
// status code but need opposite retry policies.
func Classify(resp *http.Response, body []byte, netErr error) *APIError {
	if netErr != nil {
		return &APIError{Kind: KindNetwork, Message: netErr.Error(), Err: netErr}
	}
	if resp == nil {
		return &APIError{Kind: KindNetwork, Message: "no response received"}
	}

	status := resp.StatusCode
	switch {
	case status == http.StatusUnauthorized:
		return &APIError{Kind: KindAuth, StatusCode: status, Message: "authentication failed, check your token"}
	case status == http.StatusForbidden && rateExhausted(resp.Header):
		apiErr := &APIError{Kind: KindRateLimited, StatusCode: status, Message: "rate limit exhausted"}
		if reset, ok := resetHeader(resp.Header); ok {
			apiErr.ResetAt = reset
		}
		if wait := retryAfterHeader(resp.Header); wait > 0 {
			apiErr.RetryAfter = wait
		}
		return apiErr
	case status == http.StatusTooManyRequests:
		apiErr := &APIError{Kind: KindRateLimited, StatusCode: status, Message: "too many requests"}
		if reset, ok := resetHeader(resp.Header); ok {
			apiErr.ResetAt = reset
		}
		if wait := retryAfterHeader(resp.Header); wait > 0 {
			apiErr.RetryAfter = wait
		}
		return apiErr
	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, StatusCode: status, Message: "resource not found"}
	case status >= http.StatusInternalServerError:
		return &APIError{Kind: KindServer, StatusCode: status, Message: "server error"}
	default:
		return &APIError{Kind: KindUnknown, StatusCode: status, Message: snippet(body)}
	}
}

func rateExhausted(header http.Header) bool {
	value := strings.TrimSpace(header.Get(headerRateRemaining))
	if value == "" {
		return false
	}
	remaining, err := strconv.Atoi(value)
	return err == nil && remaining <= 0
}

func resetHeader(header http.Header) (time.Time, bool) {
	value := strings.TrimSpace(header.Get(headerRateReset))
	if value == "" {
		return time.Time{}, false
	}
	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil || epoch <= 0 {
		return time.Time{}, false
	}
	return time.Unix(epoch, 0).UTC(), true
}

func retryAfterHeader(header http.Header) time.Duration {
	retry := strings.TrimSpace(header.Get("Retry-After"))
	if retry == "" {
		return 0
	}

	if seconds, err := time.ParseDuration(retry + "s"); err == nil {
		return seconds
	}
	if parsed, err := http.ParseTime(retry); err == nil {
		return time.Until(parsed)
	}
	return 0
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "unexpected response"
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
