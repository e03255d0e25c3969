package forecast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	s := NewService(0)
	s.Days = 3
	r, err := s.Get(context.Background(), "lisbon")
	require.NoError(t, err)
	require.True(t, r.Valid())
	require.Len(t, r.Data, 3)
	require.Equal(t, "lisbon", r.Location)
	for _, f := range r.Data {
		require.GreaterOrEqual(t, f.TemperatureC, -20)
		require.Less(t, f.TemperatureC, 55)
		require.NotEmpty(t, f.Summary)
	}

	_, err = s.Get(context.Background(), "")
	require.ErrorIs(t, err, ErrUnknownLocation)
}

func TestEmptyEvery(t *testing.T) {
	t.Parallel()

	s := NewService(0)
	s.EmptyEvery = 2
	first, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, first.Valid())

	second, err := s.Get(context.Background(), "a")
	require.NoError(t, err)
	require.False(t, second.Valid())
}

func TestConcurrentCallsShareOneComputation(t *testing.T) {
	t.Parallel()

	s := NewService(100 * time.Millisecond)
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Get(context.Background(), "porto")
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Less(t, s.Calls(), uint64(10))
}

func TestCanceled(t *testing.T) {
	t.Parallel()

	s := NewService(50 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Get(ctx, "faro")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCanceledCallerDoesNotFailSharedComputation(t *testing.T) {
	t.Parallel()

	s := NewService(200 * time.Millisecond)
	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Get(first, "braga")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return s.Calls() == 1 }, time.Second, time.Millisecond)

	type result struct {
		r   Result
		err error
	}
	second := make(chan result, 1)
	go func() {
		r, err := s.Get(context.Background(), "braga")
		second <- result{r, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-firstErr, context.Canceled)
	got := <-second
	require.NoError(t, got.err)
	require.True(t, got.r.Valid())
	require.Equal(t, uint64(1), s.Calls())
}
