package repeat

import (
	"context"
	"time"
)

// Repeat calls f up to attempts times, sleeping delay between failures.
// It stops early when ctx is done and returns the last error from f.
func Repeat(ctx context.Context, f func() error, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
	}

	return err
}
