// Package usecase contains the four periodic pipeline stages and the
// supervisor that drives them. The stages never talk to each other directly;
// the news table's status column is the only coordination medium, which keeps
// the pipeline restartable at any point.
package usecase

import (
	"context"
	"math/rand"
	"time"
)

// sleepCtx pauses for d or until the context is cancelled. Every stage sleeps
// through this so a shutdown request is honored mid-pause.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// jitter returns a uniform random duration in [min, max].
func jitter(rng *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rng.Int63n(int64(max-min)+1))
}

func newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
