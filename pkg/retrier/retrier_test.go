package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	r := New()
	attempts := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, attempts)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))
	attempts := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoExhaustsBudget(t *testing.T) {
	r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))
	attempts := 0

	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return errors.New("permanent")
	})

	require.Error(t, err)
	require.Equal(t, 3, attempts) // first attempt plus two retries
}

func TestDoStopsOnContextCancel(t *testing.T) {
	r := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	err := r.Do(ctx, func(ctx context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("fail")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, attempts)
}

func TestDoWithData(t *testing.T) {
	r := New(WithMaxRetries(1), WithInitialInterval(time.Millisecond))

	value, err := DoWithData(r, context.Background(), func(ctx context.Context) (string, error) {
		return "snapshot", nil
	})
	require.NoError(t, err)
	require.Equal(t, "snapshot", value)

	value, err = DoWithData(r, context.Background(), func(ctx context.Context) (string, error) {
		return "", errors.New("fail")
	})
	require.Error(t, err)
	require.Empty(t, value)
}
