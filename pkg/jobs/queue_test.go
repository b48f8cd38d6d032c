package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	q := NewQueue[string]("test", func(_ context.Context, job Job[string]) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, job.Payload)
		return nil
	}, QueueConfig{Workers: 2})

	require.Error(t, q.Enqueue(Job[string]{ID: "early"}))

	q.Start(context.Background())
	defer q.Stop()

	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Job[string]{ID: p, Payload: p}))
	}
	q.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, seen)
}

func TestQueueRetriesThenGivesUp(t *testing.T) {
	var attempts int32
	q := NewQueue[int]("retry", func(_ context.Context, job Job[int]) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("database unavailable")
	}, QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})

	var gaveUp Job[int]
	q.OnGiveUp(func(job Job[int], err error) { gaveUp = job })

	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "snap", Payload: 7}))
	q.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, "snap", gaveUp.ID)
	assert.Equal(t, 3, gaveUp.Attempt)
}

func TestQueueRecoversOnRetry(t *testing.T) {
	var attempts int32
	q := NewQueue[int]("flaky", func(_ context.Context, job Job[int]) error {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "x"}))
	q.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueueStopGivesUpPendingJobs(t *testing.T) {
	started := make(chan struct{}, 4)
	q := NewQueue[int]("stopping", func(ctx context.Context, job Job[int]) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{Workers: 1, BufferSize: 4})

	var mu sync.Mutex
	var dropped []string
	q.OnGiveUp(func(job Job[int], err error) {
		mu.Lock()
		defer mu.Unlock()
		dropped = append(dropped, job.ID)
	})

	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job[int]{ID: "running"}))
	<-started
	require.NoError(t, q.Enqueue(Job[int]{ID: "queued-1"}))
	require.NoError(t, q.Enqueue(Job[int]{ID: "queued-2"}))

	q.Stop()

	waited := make(chan struct{})
	go func() {
		q.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked after Stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"running", "queued-1", "queued-2"}, dropped)
	assert.ErrorIs(t, q.Enqueue(Job[int]{ID: "late"}), ErrStopped)
}

func TestQueueDrain(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue[int]("drain", func(ctx context.Context, job Job[int]) error {
		<-release
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "slow"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Drain(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, q.Drain(context.Background()))
}
