package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/ghostline/internal/domain"
)

const testDebounce = 300 * time.Millisecond

func waitOrSkipAsync(d *domain.Debouncer, token *domain.CancellationToken, delay time.Duration) <-chan bool {
	result := make(chan bool, 1)
	go func() {
		result <- d.WaitOrSkip(token, delay)
	}()
	return result
}

func receive(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("WaitOrSkip did not resolve")
		return false
	}
}

func TestDebouncer_WaitOrSkip(t *testing.T) {
	t.Run("should not skip once the delay elapses", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		debouncer := domain.NewDebouncer(clock)
		token := domain.NewCancellationToken(context.Background())

		result := waitOrSkipAsync(debouncer, token, testDebounce)
		clock.BlockUntil(1)
		clock.Advance(testDebounce)

		require.False(t, receive(t, result))
	})

	t.Run("should skip immediately when already cancelled", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		debouncer := domain.NewDebouncer(clock)
		token := domain.NewCancellationToken(context.Background())
		token.Cancel()

		require.True(t, debouncer.WaitOrSkip(token, testDebounce))
	})

	t.Run("should skip promptly when cancelled while waiting", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		debouncer := domain.NewDebouncer(clock)
		token := domain.NewCancellationToken(context.Background())

		result := waitOrSkipAsync(debouncer, token, time.Hour)
		clock.BlockUntil(1)
		token.Cancel()

		require.True(t, receive(t, result))
	})

	t.Run("should let only the last overlapping call win", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		debouncer := domain.NewDebouncer(clock)

		first := waitOrSkipAsync(debouncer, domain.NewCancellationToken(context.Background()), testDebounce)
		clock.BlockUntil(1)

		second := waitOrSkipAsync(debouncer, domain.NewCancellationToken(context.Background()), testDebounce)
		require.True(t, receive(t, first))

		clock.BlockUntil(1)
		third := waitOrSkipAsync(debouncer, domain.NewCancellationToken(context.Background()), testDebounce)
		require.True(t, receive(t, second))

		clock.BlockUntil(1)
		clock.Advance(testDebounce)
		require.False(t, receive(t, third))
	})

	t.Run("should accept a new baseline after a winning call", func(t *testing.T) {
		clock := clockwork.NewFakeClock()
		debouncer := domain.NewDebouncer(clock)

		first := waitOrSkipAsync(debouncer, domain.NewCancellationToken(context.Background()), testDebounce)
		clock.BlockUntil(1)
		clock.Advance(testDebounce)
		require.False(t, receive(t, first))

		second := waitOrSkipAsync(debouncer, domain.NewCancellationToken(context.Background()), testDebounce)
		clock.BlockUntil(1)
		clock.Advance(testDebounce)
		require.False(t, receive(t, second))
	})
}
