package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRetry(attempts int, delays *[]time.Duration) *RetryConfig {
	return &RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   10 * time.Millisecond,
		Logger:      NewNopLogger(),
		sleep:       func(d time.Duration) { *delays = append(*delays, d) },
	}
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	var delays []time.Duration
	r := newTestRetry(3, &delays)

	calls := 0
	err := r.Do("ping", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestRetryBacksOffExponentially(t *testing.T) {
	var delays []time.Duration
	r := newTestRetry(4, &delays)

	calls := 0
	err := r.Do("ping", func() error {
		calls++
		if calls < 4 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
	}, delays)
}

func TestRetryWrapsLastError(t *testing.T) {
	var delays []time.Duration
	r := newTestRetry(2, &delays)
	boom := errors.New("boom")

	err := r.Do("ping", func() error { return boom })

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ping failed after 2 attempts")
	assert.Len(t, delays, 1)
}

func TestRetryZeroAttemptsRunsOnce(t *testing.T) {
	var delays []time.Duration
	r := newTestRetry(0, &delays)

	calls := 0
	_ = r.Do("ping", func() error {
		calls++
		return errors.New("nope")
	})
	assert.Equal(t, 1, calls)
}
