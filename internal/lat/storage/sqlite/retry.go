package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/banshee-data/latfilter/internal/timeutil"
)

const (
	maxBusyAttempts = 5
	busyBaseDelay   = 10 * time.Millisecond
)

// isSQLiteBusy reports whether err is a lock contention error worth
// retrying.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// retryOnBusy runs fn until it succeeds, fails with a non-busy error, or
// has been tried maxBusyAttempts times, sleeping 10ms, 20ms, 40ms... between
// attempts.
func retryOnBusy(clk timeutil.Clock, fn func() error) error {
	delay := busyBaseDelay
	var err error
	for attempt := 1; attempt <= maxBusyAttempts; attempt++ {
		err = fn()
		if !isSQLiteBusy(err) {
			return err
		}
		if attempt < maxBusyAttempts {
			clk.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", maxBusyAttempts, err)
}
