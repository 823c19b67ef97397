package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

func TestManager_RunsSubmittedJobs(t *testing.T) {
	var mu sync.Mutex
	seen := make(map[string]scan.Params)
	done := make(chan struct{}, 3)

	manager := NewManager(2, 10, func(ctx context.Context, job Job) {
		mu.Lock()
		seen[job.ScanID] = job.Params
		mu.Unlock()
		done <- struct{}{}
	})

	ctx := context.Background()
	require.NoError(t, manager.Start(ctx))
	defer func() { _ = manager.Stop(ctx) }()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, manager.Submit(Job{
			ScanID: id,
			Params: scan.Params{TargetURL: "https://example.com", ScanID: id},
		}))
	}

	for n := 0; n < 3; n++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job not drained in time")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	require.Equal(t, "b", seen["b"].ScanID, "params travel with the job")
}

func TestManager_SubmitFullQueue(t *testing.T) {
	manager := NewManager(1, 1, func(ctx context.Context, job Job) {})
	// Not started: nothing drains the queue.

	require.NoError(t, manager.Submit(Job{ScanID: "a"}))
	require.ErrorIs(t, manager.Submit(Job{ScanID: "b"}), ErrQueueFull)
	require.Equal(t, 1, manager.QueueDepth())
}

func TestManager_SubmitAfterStop(t *testing.T) {
	manager := NewManager(1, 1, func(ctx context.Context, job Job) {})
	ctx := context.Background()

	require.NoError(t, manager.Start(ctx))
	require.NoError(t, manager.Stop(ctx))
	require.ErrorIs(t, manager.Submit(Job{ScanID: "a"}), ErrStopped)
}

func TestManager_StopDrainsPendingJobs(t *testing.T) {
	var mu sync.Mutex
	var ran []string

	manager := NewManager(1, 10, func(ctx context.Context, job Job) {
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		ran = append(ran, job.ScanID)
		mu.Unlock()
	})

	ctx := context.Background()
	require.NoError(t, manager.Start(ctx))
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, manager.Submit(Job{ScanID: id}))
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, manager.Stop(stopCtx))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"a", "b", "c"}, ran, "queued jobs finish before Stop returns")
}

func TestManager_StopTimeout(t *testing.T) {
	release := make(chan struct{})
	manager := NewManager(1, 1, func(ctx context.Context, job Job) {
		<-release
	})
	defer close(release)

	ctx := context.Background()
	require.NoError(t, manager.Start(ctx))
	require.NoError(t, manager.Submit(Job{ScanID: "stuck"}))
	time.Sleep(20 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, manager.Stop(stopCtx), context.DeadlineExceeded)
}

func TestManager_IdempotentLifecycle(t *testing.T) {
	manager := NewManager(1, 1, func(ctx context.Context, job Job) {})
	ctx := context.Background()

	require.NoError(t, manager.Start(ctx))
	require.NoError(t, manager.Start(ctx), "second Start is a no-op")
	require.NoError(t, manager.Stop(ctx))
	require.NoError(t, manager.Stop(ctx), "second Stop is a no-op")
}

func TestManager_ConcurrentSubmitAndStop(t *testing.T) {
	// Submitters racing Stop must get ErrStopped or ErrQueueFull, never a
	// send on the closed queue.
	for n := 0; n < 50; n++ {
		manager := NewManager(1, 4, func(ctx context.Context, job Job) {})
		ctx := context.Background()
		require.NoError(t, manager.Start(ctx))

		start := make(chan struct{})
		var wg sync.WaitGroup
		for n := 0; n < 4; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for n := 0; n < 20; n++ {
					if errors.Is(manager.Submit(Job{ScanID: "racer"}), ErrStopped) {
						return
					}
				}
			}()
		}
		stopErr := make(chan error, 1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			stopErr <- manager.Stop(ctx)
		}()

		close(start)
		wg.Wait()
		require.NoError(t, <-stopErr)
		require.ErrorIs(t, manager.Submit(Job{ScanID: "late"}), ErrStopped)
	}
}

func TestManager_StopAbandonsUnpickedJobs(t *testing.T) {
	var abandoned []string
	manager := NewManager(1, 4, func(ctx context.Context, job Job) {}).
		WithAbandonHandler(func(job Job) {
			abandoned = append(abandoned, job.ScanID)
		})
	// Never started: no worker ever picks the jobs up, the shape left
	// behind when the worker context is canceled before the queue drains.

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, manager.Submit(Job{ScanID: id}))
	}
	require.NoError(t, manager.Stop(context.Background()))

	require.Equal(t, []string{"a", "b", "c"}, abandoned,
		"queued jobs reach the abandon handler in submission order")
	require.Equal(t, 0, manager.QueueDepth())
}

func TestManager_CancelThenStopLosesNoJobs(t *testing.T) {
	var mu sync.Mutex
	ran := make(map[string]bool)
	abandoned := make(map[string]bool)

	manager := NewManager(2, 10, func(ctx context.Context, job Job) {
		mu.Lock()
		ran[job.ScanID] = true
		mu.Unlock()
	}).WithAbandonHandler(func(job Job) {
		mu.Lock()
		abandoned[job.ScanID] = true
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, manager.Start(ctx))

	ids := []string{"s1", "s2", "s3", "s4", "s5", "s6"}
	for _, id := range ids {
		require.NoError(t, manager.Submit(Job{ScanID: id}))
	}
	cancel()
	require.NoError(t, manager.Stop(context.Background()))

	// Every job either ran or was abandoned, exactly once.
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, len(ids), len(ran)+len(abandoned))
	for _, id := range ids {
		require.True(t, ran[id] != abandoned[id], "job %s must settle exactly once", id)
	}
}

func TestNewManager_ClampsNonPositiveSizes(t *testing.T) {
	manager := NewManager(0, -5, func(ctx context.Context, job Job) {})
	require.NoError(t, manager.Submit(Job{ScanID: "a"}))
	require.ErrorIs(t, manager.Submit(Job{ScanID: "b"}), ErrQueueFull,
		"queue capacity clamps to one")
}
