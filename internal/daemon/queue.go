package daemon

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/linklocal/internal/logfields"
	"git.home.luguber.info/inful/linklocal/internal/util/sets"
)

// Job is one unit of work for the worker: either a single document or a
// sweep over the whole vault.
type Job struct {
	Doc   string
	Sweep bool
}

// Handler processes a job. Errors are logged and do not stop the worker.
type Handler func(ctx context.Context, job Job) error

// Queue serializes jobs onto a single worker. A document already waiting in
// the queue is not queued twice, and at most one sweep is pending.
type Queue struct {
	handler Handler

	mu      sync.Mutex
	pending []Job
	queued  sets.Set[string]
	sweep   bool
	wake    chan struct{}
}

// NewQueue returns a queue dispatching to h.
func NewQueue(h Handler) *Queue {
	return &Queue{handler: h, queued: sets.New[string](), wake: make(chan struct{}, 1)}
}

// Enqueue adds j unless an identical job is already pending. It reports
// whether the job was added.
func (q *Queue) Enqueue(j Job) bool {
	q.mu.Lock()
	switch {
	case j.Sweep && q.sweep:
		q.mu.Unlock()
		return false
	case j.Sweep:
		q.sweep = true
	case q.queued.Has(j.Doc):
		q.mu.Unlock()
		return false
	default:
		q.queued.Add(j.Doc)
	}
	q.pending = append(q.pending, j)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) next() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return Job{}, false
	}
	j := q.pending[0]
	q.pending = q.pending[1:]
	if j.Sweep {
		q.sweep = false
	} else {
		q.queued.Remove(j.Doc)
	}
	return j, true
}

// Run drains the queue until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	for {
		for {
			if ctx.Err() != nil {
				return
			}
			j, ok := q.next()
			if !ok {
				break
			}
			if err := q.handler(ctx, j); err != nil {
				slog.Error("Job failed", logfields.Document(j.Doc), slog.Bool("sweep", j.Sweep), logfields.Error(err))
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		}
	}
}
