// Package jobs provides the background scan queue for the HTTP server:
// a bounded queue drained by a fixed pool of workers, each running one
// scan at a time.
package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/sitevitals/sitevitals/pkg/scan"
)

// Submission errors.
var (
	// ErrQueueFull is returned when the pending queue is at capacity.
	ErrQueueFull = errors.New("job queue is full")

	// ErrStopped is returned when submitting to a stopped manager.
	ErrStopped = errors.New("job manager is stopped")
)

// Job is one queued scan request. The scan ID is pinned by the API so a
// record can be returned to the client before the scan runs.
type Job struct {
	ScanID string
	Params scan.Params
}

// Runner executes one job. Implementations must contain their own error
// handling; a runner's failure only affects its own job.
type Runner func(ctx context.Context, job Job)

// AbandonHandler is invoked for jobs still queued after the workers have
// exited, so the caller can record a terminal status instead of leaving
// the scan pending forever.
type AbandonHandler func(job Job)

// Manager drains a bounded job queue with a fixed worker pool.
type Manager struct {
	queue   chan Job
	workers int
	runner  Runner
	abandon AbandonHandler

	// mu guards the queue close against concurrent Submit sends.
	mu      sync.RWMutex
	wg      sync.WaitGroup
	started atomic.Bool
	stopped atomic.Bool
}

// NewManager builds a manager with the given worker count and queue
// capacity. Non-positive values fall back to 1.
func NewManager(workers, queueSize int, runner Runner) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Manager{
		queue:   make(chan Job, queueSize),
		workers: workers,
		runner:  runner,
	}
}

// WithAbandonHandler sets the callback for jobs the workers never picked
// up. Call before Start.
func (m *Manager) WithAbandonHandler(h AbandonHandler) *Manager {
	m.abandon = h
	return m
}

// Start launches the worker pool. Non-blocking; returns immediately after
// the workers are running. Starting twice is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return nil
	}

	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go m.work(ctx, i)
	}

	log.Info().
		Str("component", "jobs").
		Int("workers", m.workers).
		Int("queue_size", cap(m.queue)).
		Msg("Job manager started")
	return nil
}

// Stop closes the queue and waits for in-flight jobs to finish, bounded
// by the context deadline. Jobs still queued once the workers have exited
// (the workers stop early when their context is canceled) are handed to
// the abandon handler rather than left pending.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.stopped.CompareAndSwap(false, true) {
		m.mu.Unlock()
		return nil
	}
	close(m.queue)
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.drainAbandoned()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit enqueues a job. It never blocks: a full queue returns
// ErrQueueFull so the API can answer 503 instead of stalling the request.
func (m *Manager) Submit(job Job) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.stopped.Load() {
		return ErrStopped
	}
	select {
	case m.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// QueueDepth returns the number of pending jobs.
func (m *Manager) QueueDepth() int {
	return len(m.queue)
}

// drainAbandoned empties the closed queue after the last worker has
// returned, notifying the abandon handler per leftover job.
func (m *Manager) drainAbandoned() {
	for job := range m.queue {
		log.Warn().
			Str("component", "jobs").
			Str("scan_id", job.ScanID).
			Msg("Scan job abandoned during shutdown")
		if m.abandon != nil {
			m.abandon(job)
		}
	}
}

func (m *Manager) work(ctx context.Context, id int) {
	defer m.wg.Done()

	logger := log.With().Str("component", "jobs").Int("worker", id).Logger()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-m.queue:
			if !ok {
				return
			}
			logger.Debug().Str("scan_id", job.ScanID).Msg("Picked up scan job")
			m.runner(ctx, job)
		}
	}
}
