package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// ErrBudgetExhausted is returned when the cumulative elapsed-time budget is
// spent before an attempt succeeds.
var ErrBudgetExhausted = errors.New("retry budget exhausted")

// PermanentError wraps a classifier-declared permanent failure. It is
// returned immediately, without further attempts.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return "permanent error: " + e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

type verdict int

const (
	verdictSuccess verdict = iota
	verdictPermanent
	verdictTransient
)

// Outcome is the classifier's verdict about one attempt.
type Outcome[R any] struct {
	verdict       verdict
	value         R
	err           error
	retryAfter    time.Duration
	hasRetryAfter bool
}

// OK declares the attempt successful with the final value.
func OK[R any](value R) Outcome[R] {
	return Outcome[R]{verdict: verdictSuccess, value: value}
}

// Fail declares the failure permanent; retrying would not help.
func Fail[R any](err error) Outcome[R] {
	return Outcome[R]{verdict: verdictPermanent, err: err}
}

// Again declares the failure transient; the next attempt waits for the next
// exponential backoff step.
func Again[R any](err error) Outcome[R] {
	return Outcome[R]{verdict: verdictTransient, err: err}
}

// AgainAfter declares the failure transient with an explicit retry-after
// delay, e.g. from a rate-limit hint. The delay is used verbatim while the
// backoff state still advances for bookkeeping.
func AgainAfter[R any](err error, retryAfter time.Duration) Outcome[R] {
	return Outcome[R]{
		verdict:       verdictTransient,
		err:           err,
		retryAfter:    retryAfter,
		hasRetryAfter: true,
	}
}

// Policy describes the exponential backoff between transient attempts.
type Policy struct {
	// InitialInterval is the delay before the second attempt.
	InitialInterval time.Duration

	// Multiplier scales the delay after each transient failure.
	Multiplier float64

	// Jitter is the randomization factor applied to each delay, e.g. 0.1
	// for ±10%.
	Jitter float64

	// MaxInterval caps a single delay step.
	MaxInterval time.Duration

	// MaxElapsed caps the total time spent since the first attempt. Once
	// exceeded, Do returns ErrBudgetExhausted instead of attempting again.
	MaxElapsed time.Duration
}

// DefaultPolicy matches the recorder's remote-fetch defaults.
var DefaultPolicy = Policy{
	InitialInterval: 2 * time.Second,
	Multiplier:      2.0,
	Jitter:          0.1,
	MaxInterval:     20 * time.Second,
	MaxElapsed:      120 * time.Second,
}

// Do runs op until the classifier declares success or a permanent failure,
// or the policy's elapsed-time budget runs out. op is invoked anew on every
// attempt and must be idempotent from the caller's perspective; Do does not
// deduplicate side effects. A nil policy selects DefaultPolicy.
func Do[T, R any](
	ctx context.Context,
	op func(context.Context) T,
	classify func(T) Outcome[R],
	policy *Policy,
) (R, error) {
	var zero R

	p := DefaultPolicy
	if policy != nil {
		p = *policy
	}
	state := p.newBackoff()

	for {
		outcome := classify(op(ctx))

		switch outcome.verdict {
		case verdictSuccess:
			return outcome.value, nil
		case verdictPermanent:
			return zero, &PermanentError{Err: outcome.err}
		}

		delay, ok := state.next()
		if outcome.hasRetryAfter {
			// An explicit retry-after hint overrides both the delay and
			// the exhaustion check; the backoff state has already advanced.
			delay, ok = outcome.retryAfter, true
		}
		if !ok {
			return zero, fmt.Errorf("%w (last attempt: %w)", ErrBudgetExhausted, outcome.err)
		}

		slog.Warn("transient error, will retry",
			"error", outcome.err,
			"retry_in", delay,
		)

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// backoff holds the mutable state of one retry sequence.
type backoff struct {
	policy  Policy
	current time.Duration
	started time.Time
	now     func() time.Time
	randF   func() float64
}

func (p Policy) newBackoff() *backoff {
	b := &backoff{
		policy:  p,
		current: p.InitialInterval,
		now:     time.Now,
		randF:   rand.Float64,
	}
	b.started = b.now()
	return b
}

// next returns the delay before the next attempt and advances the state.
// ok is false once the elapsed-time budget is spent.
func (b *backoff) next() (delay time.Duration, ok bool) {
	if b.now().Sub(b.started) >= b.policy.MaxElapsed {
		return 0, false
	}

	step := b.current
	if step > b.policy.MaxInterval {
		step = b.policy.MaxInterval
	}

	delay = b.jittered(step)

	b.current = time.Duration(float64(b.current) * b.policy.Multiplier)
	if b.current > b.policy.MaxInterval {
		b.current = b.policy.MaxInterval
	}

	return delay, true
}

func (b *backoff) jittered(step time.Duration) time.Duration {
	if b.policy.Jitter <= 0 {
		return step
	}
	// Uniform in [step*(1-jitter), step*(1+jitter)].
	spread := (b.randF()*2 - 1) * b.policy.Jitter
	return time.Duration(float64(step) * (1 + spread))
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
