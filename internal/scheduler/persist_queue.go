package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

// DefaultWriteTimeout bounds a single gateway write
const DefaultWriteTimeout = 5 * time.Second

type persistJob struct {
	resourceID string
	snap       domain.Snapshot
}

// PersistQueue writes snapshots to the gateway in the order they were
// enqueued. It is unbounded and never drops a job; a single worker issues
// the writes so two snapshots for the same resource cannot land out of order.
type PersistQueue struct {
	gateway      store.Gateway
	logger       logger.Logger
	writeTimeout time.Duration

	mu       sync.Mutex
	jobs     []persistJob
	inflight *persistJob
	wake   chan struct{}
	stopCh chan struct{}
	done   chan struct{}
}

// NewPersistQueue creates a queue; call Start to begin writing
func NewPersistQueue(gateway store.Gateway, log logger.Logger, writeTimeout time.Duration) *PersistQueue {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &PersistQueue{
		gateway:      gateway,
		logger:       log,
		writeTimeout: writeTimeout,
		wake:         make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Enqueue schedules a snapshot write and returns immediately
func (q *PersistQueue) Enqueue(resourceID string, snap domain.Snapshot) {
	q.mu.Lock()
	q.jobs = append(q.jobs, persistJob{resourceID: resourceID, snap: snap})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of writes not yet issued
func (q *PersistQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.jobs)
}

// Latest returns the newest snapshot for resourceID that has not reached
// the gateway yet, including the one being written.
func (q *PersistQueue) Latest(resourceID string) (domain.Snapshot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := len(q.jobs) - 1; i >= 0; i-- {
		if q.jobs[i].resourceID == resourceID {
			return q.jobs[i].snap, true
		}
	}
	if q.inflight != nil && q.inflight.resourceID == resourceID {
		return q.inflight.snap, true
	}
	return domain.Snapshot{}, false
}

// Start launches the worker. Writes outlive ctx cancellation so the queue
// can still drain during shutdown; use Stop to end it.
func (q *PersistQueue) Start(ctx context.Context) error {
	writeCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(q.done)
		for {
			q.drain(writeCtx)
			select {
			case <-q.wake:
			case <-q.stopCh:
				q.drain(writeCtx)
				return
			}
		}
	}()

	return nil
}

// Stop asks the worker to flush what is queued and waits for it until ctx
// expires.
func (q *PersistQueue) Stop(ctx context.Context) error {
	close(q.stopCh)

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("persist queue not drained, %d writes pending: %w", q.Pending(), ctx.Err())
	}
}

func (q *PersistQueue) drain(ctx context.Context) {
	for {
		job, ok := q.next()
		if !ok {
			return
		}
		q.write(ctx, job)
		q.mu.Lock()
		q.inflight = nil
		q.mu.Unlock()
	}
}

func (q *PersistQueue) next() (persistJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return persistJob{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = persistJob{}
	q.jobs = q.jobs[1:]
	q.inflight = &job
	return job, true
}

func (q *PersistQueue) write(ctx context.Context, job persistJob) {
	ctx, cancel := context.WithTimeout(ctx, q.writeTimeout)
	defer cancel()

	start := time.Now()
	if err := q.gateway.SaveSnapshot(ctx, job.resourceID, job.snap); err != nil {
		q.logger.Error("failed to persist snapshot",
			logger.String("resource_id", job.resourceID),
			logger.Int("marks", len(job.snap.Order)),
			logger.Error(err))
		return
	}
	q.logger.Debug("snapshot persisted",
		logger.String("resource_id", job.resourceID),
		logger.Int("marks", len(job.snap.Order)),
		logger.Duration("took", time.Since(start)))
}
