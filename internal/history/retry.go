package history

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Concurrent runs share one ledger; WAL plus busy_timeout covers most
// contention and these retries cover the rest.
const (
	sqliteBusyCode   = 5
	busyAttempts     = 5
	busyFirstBackoff = 10 * time.Millisecond
	busyMaxBackoff   = 200 * time.Millisecond
)

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withBusyRetry runs op until it succeeds, fails with a non-busy error or
// the attempts run out.
func withBusyRetry(ctx context.Context, op func() error) error {
	delay := busyFirstBackoff
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(); err == nil || !isBusy(err) || attempt == busyAttempts {
			return err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyMaxBackoff)
	}
}
