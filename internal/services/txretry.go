package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

const txMaxAttempts = 3

// runInTx executes fn inside a transaction, retrying transient storage
// failures with a short backoff. Callers hold the relevant keyed lock, so a
// retry re-runs the whole read-modify-write against fresh state and never
// persists a partial update. Exhausted retries surface as ErrTransient.
func runInTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var lastErr error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err := db.WithContext(ctx).Transaction(fn)
		if err == nil {
			return nil
		}
		if !isTransientDBError(err) {
			return err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 25 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %v", ErrTransient, lastErr)
}
