package sqlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/latfilter/internal/timeutil"
)

var errBusy = errors.New("database is locked (5) (SQLITE_BUSY)")

func TestIsSQLiteBusy(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"database is locked", errBusy, true},
		{"SQLITE_BUSY", errors.New("SQLITE_BUSY"), true},
		{"other error", errors.New("some other error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isSQLiteBusy(tt.err))
		})
	}
}

func TestRetryOnBusy(t *testing.T) {
	t.Run("success on first try", func(t *testing.T) {
		clk := timeutil.NewMockClock(time.Unix(0, 0))
		calls := 0
		err := retryOnBusy(clk, func() error {
			calls++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Empty(t, clk.Sleeps())
	})

	t.Run("success after retry", func(t *testing.T) {
		clk := timeutil.NewMockClock(time.Unix(0, 0))
		calls := 0
		err := retryOnBusy(clk, func() error {
			calls++
			if calls < 3 {
				return errBusy
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, clk.Sleeps())
	})

	t.Run("non-busy error fails immediately", func(t *testing.T) {
		clk := timeutil.NewMockClock(time.Unix(0, 0))
		calls := 0
		testErr := errors.New("some other error")
		err := retryOnBusy(clk, func() error {
			calls++
			return testErr
		})
		assert.Equal(t, testErr, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("max retries exceeded", func(t *testing.T) {
		clk := timeutil.NewMockClock(time.Unix(0, 0))
		calls := 0
		err := retryOnBusy(clk, func() error {
			calls++
			return errBusy
		})
		assert.ErrorIs(t, err, errBusy)
		assert.Equal(t, maxBusyAttempts, calls)
		assert.Equal(t, []time.Duration{
			10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 80 * time.Millisecond,
		}, clk.Sleeps())
	})
}
