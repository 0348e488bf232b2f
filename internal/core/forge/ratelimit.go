package forge

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultWaitCeiling caps any single limiter sleep so bad server
	// data can never stall the tool indefinitely.
	DefaultWaitCeiling = 45 * time.Second

	defaultCapacity        = 5000
	defaultRefillPerSecond = float64(defaultCapacity) / 3600
)

// RateBudget is the limiter's view of the server-side quota. Remaining
// is fractional because tokens accrue continuously between requests.
type RateBudget struct {
	Capacity        int
	Remaining       float64
	RefillPerSecond float64
	ResetAt         time.Time
	LastRefill      time.Time
}

// Limiter is a token bucket kept in step with the quota the server
// reports. Acquire blocks until enough tokens accrue; Observe overwrites
// the local estimate with the server's authoritative numbers.
//
// Safe for concurrent use by multiple clients sharing one instance.
type Limiter struct {
	mu     sync.Mutex
	budget RateBudget

	waitCeiling time.Duration

	// Clock and Sleep are injectable for tests.
	clock func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter constructs a limiter with the given bucket shape. A
// capacity or refill rate of zero (or below) disables throttling
// entirely rather than blocking forever.
func NewLimiter(capacity int, refillPerSecond float64) *Limiter {
	l := &Limiter{
		budget: RateBudget{
			Capacity:        capacity,
			Remaining:       float64(capacity),
			RefillPerSecond: refillPerSecond,
		},
		waitCeiling: DefaultWaitCeiling,
		clock:       func() time.Time { return time.Now().UTC() },
		sleep:       sleepContext,
	}
	l.budget.LastRefill = l.clock()
	return l
}

// DefaultLimiter matches the authenticated GitHub REST quota of 5000
// requests per hour.
func DefaultLimiter() *Limiter {
	return NewLimiter(defaultCapacity, defaultRefillPerSecond)
}

// WithWaitCeiling overrides the maximum single sleep.
func (l *Limiter) WithWaitCeiling(d time.Duration) *Limiter {
	if l == nil || d <= 0 {
		return l
	}
	l.mu.Lock()
	l.waitCeiling = d
	l.mu.Unlock()
	return l
}

// WithClock swaps the time source; Sleep is replaced with a no-op tick
// against the same clock when fn advances it externally.
func (l *Limiter) WithClock(fn func() time.Time) *Limiter {
	if l == nil || fn == nil {
		return l
	}
	l.mu.Lock()
	l.clock = fn
	l.budget.LastRefill = fn()
	l.mu.Unlock()
	return l
}

// WithSleep swaps the wait primitive.
func (l *Limiter) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Limiter {
	if l == nil || fn == nil {
		return l
	}
	l.mu.Lock()
	l.sleep = fn
	l.mu.Unlock()
	return l
}

// Acquire blocks until cost tokens are available, then debits them
// atomically. It never returns with a partial debit. A cost larger than
// the bucket capacity is clamped to it. A misconfigured bucket (capacity
// or refill rate <= 0) fails open and returns immediately.
func (l *Limiter) Acquire(ctx context.Context, cost int) error {
	if l == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if cost <= 0 {
		cost = 1
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		l.mu.Lock()
		if l.budget.Capacity <= 0 || l.budget.RefillPerSecond <= 0 {
			l.mu.Unlock()
			return nil
		}

		l.refillLocked()

		// A cost above capacity could never be satisfied; clamp it so a
		// full bucket always suffices and the total wait stays bounded.
		want := float64(cost)
		if want > float64(l.budget.Capacity) {
			want = float64(l.budget.Capacity)
		}

		if l.budget.Remaining >= want {
			l.budget.Remaining -= want
			l.mu.Unlock()
			return nil
		}

		needed := want - l.budget.Remaining
		wait := time.Duration(needed / l.budget.RefillPerSecond * float64(time.Second))
		if !l.budget.ResetAt.IsZero() {
			if untilReset := l.budget.ResetAt.Sub(l.clock()); untilReset > 0 && untilReset < wait {
				wait = untilReset
			}
		}
		if wait > l.waitCeiling {
			wait = l.waitCeiling
		}
		if wait <= 0 {
			wait = time.Millisecond
		}
		sleep := l.sleep
		l.mu.Unlock()

		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Observe applies a server-reported rate budget. The reset timestamp,
// when present, takes precedence over local refill estimates: the
// refill rate is recomputed so the bucket is projected to be full again
// exactly at the reset boundary.
func (l *Limiter) Observe(remaining, capacity int, resetAt time.Time) {
	if l == nil || capacity <= 0 {
		return
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > capacity {
		remaining = capacity
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	l.budget.Capacity = capacity
	l.budget.Remaining = float64(remaining)
	l.budget.LastRefill = now

	if !resetAt.IsZero() {
		l.budget.ResetAt = resetAt.UTC()
		window := resetAt.Unix() - now.Unix()
		if window < 1 {
			window = 1
		}
		l.budget.RefillPerSecond = float64(capacity) / float64(window)
	}
}

// Snapshot returns a copy of the current budget for display.
func (l *Limiter) Snapshot() RateBudget {
	if l == nil {
		return RateBudget{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refillLocked()
	return l.budget
}

// refillLocked accrues tokens for the time elapsed since the last
// refill, capped at capacity. Caller holds l.mu.
func (l *Limiter) refillLocked() {
	now := l.clock()
	if l.budget.RefillPerSecond <= 0 {
		l.budget.LastRefill = now
		return
	}

	elapsed := now.Sub(l.budget.LastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	l.budget.Remaining += elapsed * l.budget.RefillPerSecond
	if l.budget.Remaining > float64(l.budget.Capacity) {
		l.budget.Remaining = float64(l.budget.Capacity)
	}
	if l.budget.Remaining < 0 {
		l.budget.Remaining = 0
	}
	l.budget.LastRefill = now
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
