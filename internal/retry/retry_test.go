package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	t.Run("succeeds first time", func(t *testing.T) {
		attempts := 0
		err := Do(context.Background(), 3, time.Millisecond, func(int) error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("eventual success", func(t *testing.T) {
		var seen []int
		err := Do(context.Background(), 5, time.Millisecond, func(attempt int) error {
			seen = append(seen, attempt)
			if attempt < 3 {
				return errors.New("temporary error")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, seen)
	})

	t.Run("returns last error", func(t *testing.T) {
		attempts := 0
		expected := errors.New("persistent error")
		err := Do(context.Background(), 3, time.Millisecond, func(int) error {
			attempts++
			return expected
		})
		assert.Equal(t, expected, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("invalid max attempts", func(t *testing.T) {
		for _, n := range []int{0, -1} {
			attempts := 0
			err := Do(context.Background(), n, time.Millisecond, func(int) error {
				attempts++
				return nil
			})
			assert.ErrorIs(t, err, ErrInvalidAttempts)
			assert.Zero(t, attempts)
		}
	})
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, 10, time.Millisecond, func(int) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, attempts)
}

func TestDo_ContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	err := Do(ctx, 10, 40*time.Millisecond, func(int) error {
		attempts++
		return errors.New("error")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.LessOrEqual(t, attempts, 2)
}

func TestDo_DelaysDouble(t *testing.T) {
	var delays []time.Duration
	last := time.Now()

	err := Do(context.Background(), 5, 10*time.Millisecond, func(attempt int) error {
		if attempt > 1 {
			delays = append(delays, time.Since(last))
		}
		last = time.Now()
		if attempt < 4 {
			return errors.New("error")
		}
		return nil
	})

	require.NoError(t, err)
	require.Len(t, delays, 3)
	assert.GreaterOrEqual(t, delays[0], 10*time.Millisecond)
	assert.GreaterOrEqual(t, delays[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, delays[2], 40*time.Millisecond)
}
