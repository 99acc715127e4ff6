// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resilience carries the bounded-retry policy for hardware
// operations that can transiently fail, like a clock block that is busy
// committing a previous write.
package resilience

import (
	"context"
	"fmt"
	"time"
)

// Do runs op up to attempts times with a fixed delay after every attempt,
// including the last and the successful one. The first nil result wins.
// When every attempt fails the last error is returned wrapped with the
// attempt count. Cancelling ctx during a delay aborts the loop, but a
// success already in hand is still reported as success.
func Do(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = op()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			if err == nil {
				return nil
			}
			return ctx.Err()
		}

		if err == nil {
			return nil
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
