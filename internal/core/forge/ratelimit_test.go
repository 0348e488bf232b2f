package forge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeTime is a manually advanced clock whose sleep moves the clock
// instead of blocking.
type fakeTime struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeTime() *fakeTime {
	return &fakeTime{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeTime) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.sleeps = append(f.sleeps, d)
	f.mu.Unlock()
	return nil
}

func (f *fakeTime) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fakeTime) SleepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sleeps)
}

func (f *fakeTime) TotalSlept() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total time.Duration
	for _, d := range f.sleeps {
		total += d
	}
	return total
}

func newTestLimiter(capacity int, refill float64) (*Limiter, *fakeTime) {
	ft := newFakeTime()
	limiter := NewLimiter(capacity, refill).WithClock(ft.Now).WithSleep(ft.Sleep)
	return limiter, ft
}

func TestLimiterBurstThenBlock(t *testing.T) {
	limiter, ft := newTestLimiter(5, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, limiter.Acquire(ctx, 1))
	}
	require.Zero(t, ft.SleepCount(), "burst within capacity must not block")

	require.NoError(t, limiter.Acquire(ctx, 1))
	require.NotZero(t, ft.SleepCount(), "sixth acquire must wait for refill")
}

func TestLimiterNeverDebitsPartially(t *testing.T) {
	limiter, _ := newTestLimiter(10, 10)

	require.NoError(t, limiter.Acquire(context.Background(), 7))

	budget := limiter.Snapshot()
	require.InDelta(t, 3, budget.Remaining, 0.01)
}

func TestLimiterBudgetInvariant(t *testing.T) {
	limiter, ft := newTestLimiter(10, 2)
	ctx := context.Background()

	check := func() {
		budget := limiter.Snapshot()
		require.GreaterOrEqual(t, budget.Remaining, 0.0)
		require.LessOrEqual(t, budget.Remaining, float64(budget.Capacity))
	}

	for i := 0; i < 12; i++ {
		require.NoError(t, limiter.Acquire(ctx, 1))
		check()
	}

	limiter.Observe(3, 10, ft.Now().Add(time.Minute))
	check()

	// server values outside the window are clamped, not propagated
	limiter.Observe(50, 10, ft.Now().Add(time.Minute))
	check()
	limiter.Observe(-2, 10, ft.Now().Add(time.Minute))
	check()

	ft.Advance(time.Hour)
	check()
}

func TestLimiterObserveRecomputesRefill(t *testing.T) {
	limiter, ft := newTestLimiter(100, 1)

	limiter.Observe(40, 100, ft.Now().Add(50*time.Second))

	budget := limiter.Snapshot()
	require.Equal(t, 100, budget.Capacity)
	require.InDelta(t, 40, budget.Remaining, 0.01)
	require.InDelta(t, 2.0, budget.RefillPerSecond, 0.01, "capacity / seconds-to-reset")
}

func TestLimiterObservePastResetClampsWindow(t *testing.T) {
	limiter, ft := newTestLimiter(100, 1)

	limiter.Observe(0, 100, ft.Now().Add(-time.Minute))

	budget := limiter.Snapshot()
	require.LessOrEqual(t, budget.RefillPerSecond, float64(budget.Capacity))
	require.Greater(t, budget.RefillPerSecond, 0.0)
}

func TestLimiterFailsOpenOnBadConfig(t *testing.T) {
	ctx := context.Background()

	for _, limiter := range []*Limiter{
		func() *Limiter { l, _ := newTestLimiter(0, 5); return l }(),
		func() *Limiter { l, _ := newTestLimiter(10, 0); return l }(),
		func() *Limiter { l, _ := newTestLimiter(-1, -1); return l }(),
	} {
		done := make(chan error, 1)
		go func() { done <- limiter.Acquire(ctx, 1) }()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("misconfigured limiter must not block")
		}
	}
}

func TestLimiterWaitCeiling(t *testing.T) {
	limiter, ft := newTestLimiter(1, 0.0001)
	limiter.WithWaitCeiling(10 * time.Second)

	require.NoError(t, limiter.Acquire(context.Background(), 1))
	require.NoError(t, limiter.Acquire(context.Background(), 1))

	for _, slept := range ft.sleeps {
		require.LessOrEqual(t, slept, 10*time.Second)
	}
}

func TestLimiterAcquireCancellation(t *testing.T) {
	limiter := NewLimiter(1, 0.001)
	require.NoError(t, limiter.Acquire(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Acquire(ctx, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLimiterConcurrentAcquire(t *testing.T) {
	limiter := NewLimiter(100, 1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_ = limiter.Acquire(ctx, 1)
			}
		}()
	}
	wg.Wait()

	budget := limiter.Snapshot()
	require.GreaterOrEqual(t, budget.Remaining, 0.0)
	require.LessOrEqual(t, budget.Remaining, float64(budget.Capacity))
}

func TestLimiterClampsCostAboveCapacity(t *testing.T) {
	limiter, ft := newTestLimiter(5, 5)

	// A full bucket satisfies an oversized cost immediately.
	require.NoError(t, limiter.Acquire(context.Background(), 20))
	require.Equal(t, 0, ft.SleepCount())

	budget := limiter.Snapshot()
	require.InDelta(t, 0, budget.Remaining, 0.001)

	// And once drained, one full refill is enough again: the wait is
	// bounded instead of spinning until cancellation.
	require.NoError(t, limiter.Acquire(context.Background(), 20))
	require.LessOrEqual(t, ft.TotalSlept(), 2*time.Second)
}
