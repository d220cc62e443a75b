package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fastPolicy keeps test runs short without changing the executor's shape.
var fastPolicy = Policy{
	InitialInterval: time.Millisecond,
	Multiplier:      2.0,
	MaxInterval:     4 * time.Millisecond,
	MaxElapsed:      time.Second,
}

type attemptResult struct {
	value int
	err   error
}

func TestSuccessAfterKTransientFailures(t *testing.T) {
	const k = 3

	attempts := 0
	op := func(context.Context) attemptResult {
		attempts++
		if attempts <= k {
			return attemptResult{err: errBoom}
		}
		return attemptResult{value: 42}
	}
	classify := func(res attemptResult) Outcome[int] {
		if res.err != nil {
			return Again[int](res.err)
		}
		return OK(res.value)
	}

	value, err := Do(context.Background(), op, classify, &fastPolicy)
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, k+1, attempts)
}

func TestPermanentShortCircuits(t *testing.T) {
	attempts := 0
	op := func(context.Context) attemptResult {
		attempts++
		return attemptResult{err: errBoom}
	}
	classify := func(res attemptResult) Outcome[int] {
		return Fail[int](res.err)
	}

	_, err := Do(context.Background(), op, classify, &fastPolicy)
	require.Error(t, err)

	var permanent *PermanentError
	require.ErrorAs(t, err, &permanent)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, attempts)
}

func TestExplicitRetryAfterIsHonored(t *testing.T) {
	attempts := 0
	op := func(context.Context) attemptResult {
		attempts++
		if attempts == 1 {
			return attemptResult{err: errBoom}
		}
		return attemptResult{value: 7}
	}
	classify := func(res attemptResult) Outcome[int] {
		if res.err != nil {
			return AgainAfter[int](res.err, 20*time.Millisecond)
		}
		return OK(res.value)
	}

	start := time.Now()
	value, err := Do(context.Background(), op, classify, &fastPolicy)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
	assert.Equal(t, 2, attempts)
	// The hint, not the 1ms initial interval, drives the wait.
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestBudgetExhaustion(t *testing.T) {
	policy := Policy{
		InitialInterval: time.Millisecond,
		Multiplier:      2.0,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsed:      10 * time.Millisecond,
	}

	attempts := 0
	op := func(context.Context) attemptResult {
		attempts++
		return attemptResult{err: errBoom}
	}
	classify := func(res attemptResult) Outcome[int] {
		return Again[int](res.err)
	}

	_, err := Do(context.Background(), op, classify, &policy)
	require.ErrorIs(t, err, ErrBudgetExhausted)
	assert.ErrorIs(t, err, errBoom)
	assert.Greater(t, attempts, 1)
}

func TestContextCancellationInterruptsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{
		InitialInterval: time.Hour,
		Multiplier:      2.0,
		MaxInterval:     time.Hour,
		MaxElapsed:      24 * time.Hour,
	}

	op := func(context.Context) attemptResult {
		cancel()
		return attemptResult{err: errBoom}
	}
	classify := func(res attemptResult) Outcome[int] {
		return Again[int](res.err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, op, classify, &policy)
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after context cancellation")
	}
}

func TestBackoffDelaysAreMonotonicUntilCap(t *testing.T) {
	state := DefaultPolicy.newBackoff()
	// Freeze the clock so the elapsed budget never trips, and pin the
	// jitter to its midpoint.
	frozen := time.Now()
	state.now = func() time.Time { return frozen }
	state.started = frozen
	state.randF = func() float64 { return 0.5 }

	var delays []time.Duration
	for i := 0; i < 8; i++ {
		delay, ok := state.next()
		require.True(t, ok)
		delays = append(delays, delay)
	}

	for i := 1; i < len(delays); i++ {
		assert.GreaterOrEqual(t, delays[i], delays[i-1],
			"delay %d (%v) below previous (%v)", i, delays[i], delays[i-1])
	}

	maxStep := DefaultPolicy.MaxInterval
	last := delays[len(delays)-1]
	assert.InDelta(t, float64(maxStep), float64(last), float64(maxStep)*DefaultPolicy.Jitter)
}

func TestBackoffJitterStaysWithinBounds(t *testing.T) {
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 1} {
		state := DefaultPolicy.newBackoff()
		state.randF = func() float64 { return r }

		delay, ok := state.next()
		require.True(t, ok)

		low := float64(DefaultPolicy.InitialInterval) * (1 - DefaultPolicy.Jitter)
		high := float64(DefaultPolicy.InitialInterval) * (1 + DefaultPolicy.Jitter)
		assert.GreaterOrEqual(t, float64(delay), low)
		assert.LessOrEqual(t, float64(delay), high)
	}
}
