package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFlaky = errors.New("flaky")

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	v, err := Do(context.Background(), Step("test", 0), func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errFlaky
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), Step("test", 0), func(ctx context.Context) (int, error) {
		calls++
		return 0, errFlaky
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 3, calls)
}

func TestPhasePolicyAllowsFiveRetries(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Phase("phase", 0), func(ctx context.Context) error {
		calls++
		return errFlaky
	})
	assert.Error(t, err)
	assert.Equal(t, 6, calls)
}

func TestPermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	err := Run(context.Background(), Step("test", 0), func(ctx context.Context) error {
		calls++
		return Permanent(errFlaky)
	})
	assert.ErrorIs(t, err, errFlaky)
	assert.Equal(t, 1, calls)
}

func TestRetryablePredicate(t *testing.T) {
	other := errors.New("other")
	p := Step("test", 0)
	p.Retryable = func(err error) bool { return errors.Is(err, errFlaky) }

	calls := 0
	err := Run(context.Background(), p, func(ctx context.Context) error {
		calls++
		return other
	})
	assert.ErrorIs(t, err, other)
	assert.Equal(t, 1, calls)
}

func TestProgressiveBackoff(t *testing.T) {
	p := Phase("phase", 8*time.Second)
	assert.Equal(t, 8*time.Second, p.Wait(1))
	assert.Equal(t, 16*time.Second, p.Wait(2))
	assert.Equal(t, 40*time.Second, p.Wait(5))

	s := Step("step", 2*time.Second)
	assert.Equal(t, 2*time.Second, s.Wait(1))
	assert.Equal(t, 2*time.Second, s.Wait(3))
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Run(ctx, Step("test", time.Hour), func(ctx context.Context) error {
		calls++
		cancel()
		return errFlaky
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
