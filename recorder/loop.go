package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// CancellationToken asks a running loop to stop after the in-flight cycle.
// It is safe to share between goroutines; typically a signal handler calls
// Cancel while the loop polls IsCancelled between cycles.
type CancellationToken struct {
	cancelled atomic.Bool
}

func NewCancellationToken() *CancellationToken {
	return &CancellationToken{}
}

// Cancel requests a stop. A cycle already in flight runs to completion.
func (t *CancellationToken) Cancel() {
	t.cancelled.Store(true)
}

func (t *CancellationToken) IsCancelled() bool {
	return t.cancelled.Load()
}

// RunMode selects between a single snapshot cycle and a perpetual loop.
type RunMode int

const (
	RunOnce RunMode = iota
	RunPerpetual
)

// ParseRunMode parses the command-line run mode value.
func ParseRunMode(raw string) (RunMode, error) {
	switch raw {
	case "once":
		return RunOnce, nil
	case "perpetual":
		return RunPerpetual, nil
	default:
		return 0, fmt.Errorf("unrecognized run mode %q (expected \"once\" or \"perpetual\")", raw)
	}
}

func (m RunMode) String() string {
	switch m {
	case RunOnce:
		return "once"
	case RunPerpetual:
		return "perpetual"
	default:
		return fmt.Sprintf("RunMode(%d)", int(m))
	}
}

// RunLoop drives cycle at the given interval until the token is cancelled.
//
// In RunOnce mode a single cycle runs and its error is returned. In
// RunPerpetual mode a failed cycle is logged and the loop keeps going; the
// interval is measured from cycle start to cycle start, so a long cycle
// shortens the following pause. Cancellation is only observed between
// cycles.
func RunLoop(
	ctx context.Context,
	name string,
	mode RunMode,
	interval time.Duration,
	token *CancellationToken,
	cycle func(context.Context) error,
) error {
	log := slog.With("loop", name)

	for {
		startedAt := time.Now()

		err := cycle(ctx)
		switch {
		case err != nil && mode == RunOnce:
			return err
		case err != nil:
			log.Error("snapshot cycle failed, continuing with the next one", "error", err)
		}

		if mode == RunOnce {
			return nil
		}
		if token.IsCancelled() {
			log.Info("stop requested, exiting loop")
			return nil
		}

		pause := interval - time.Since(startedAt)
		if pause > 0 {
			log.Info("waiting for the next cycle", "next_cycle_in", pause.Round(time.Second))
			if !sleepUnlessCancelled(ctx, token, pause) {
				log.Info("stop requested, exiting loop")
				return ctx.Err()
			}
		}
	}
}

// sleepUnlessCancelled waits out d in short slices so a cancellation
// request does not have to wait for a multi-hour interval to elapse. It
// reports whether the full duration passed without interruption.
func sleepUnlessCancelled(ctx context.Context, token *CancellationToken, d time.Duration) bool {
	const slice = time.Second

	deadline := time.Now().Add(d)
	for {
		if token.IsCancelled() || ctx.Err() != nil {
			return false
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		if remaining > slice {
			remaining = slice
		}

		timer := time.NewTimer(remaining)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
