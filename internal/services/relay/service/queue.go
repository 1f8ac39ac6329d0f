package service

import (
	"context"
	"sync"
	"time"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/relay/domain"

	"github.com/google/uuid"
)

// TaskRunner processes one task to its final state
type TaskRunner interface {
	Run(ctx context.Context, t *dom.Task) dom.TaskState
}

// Queue runs tasks strictly one at a time in submission order.
// All queue state sits behind mu; the worker goroutine exists only while busy
type Queue struct {
	mu        sync.Mutex
	pending   []*dom.Task
	current   *dom.Task
	busy      bool
	draining  bool
	idle      chan struct{}
	processed int64

	base   context.Context
	runner TaskRunner
	met    *metrics.Metrics
	log    logger.Logger
	now    func() time.Time
}

// NewQueue constructs an idle Queue. Tasks run on a context detached from ctx's
// cancellation so a started task always finishes
func NewQueue(ctx context.Context, runner TaskRunner, met *metrics.Metrics) *Queue {
	return &Queue{
		base:   context.WithoutCancel(ctx),
		runner: runner,
		met:    met,
		log:    *logger.Named("queue"),
		now:    time.Now,
	}
}

// Enqueue appends t and starts the worker when idle
func (q *Queue) Enqueue(_ context.Context, t *dom.Task) (dom.Ticket, error) {
	if t == nil || len(t.Identifiers) == 0 {
		return dom.Ticket{}, perr.InvalidArgf("task needs at least one identifier")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.SubmittedAt.IsZero() {
		t.SubmittedAt = q.now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.draining {
		return dom.Ticket{TaskID: t.ID}, dom.ErrDraining
	}

	if !q.busy {
		q.busy = true
		q.current = t
		t.State = dom.TaskInProgress
		q.idle = make(chan struct{})
		q.met.SetQueue(0, true)
		go q.work(t, q.idle)
		return dom.Ticket{TaskID: t.ID, Position: 0}, nil
	}

	t.State = dom.TaskQueued
	q.pending = append(q.pending, t)
	q.met.SetQueue(len(q.pending), true)
	// the running task plus everything queued before t
	return dom.Ticket{TaskID: t.ID, Position: len(q.pending)}, nil
}

// AttachNotice records a queue-position message for deletion when the task starts.
// It returns false when the task is no longer waiting; the caller then owns h
func (q *Queue) AttachNotice(taskID string, h dom.Handle) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, t := range q.pending {
		if t.ID == taskID && t.State == dom.TaskQueued {
			t.Notices = append(t.Notices, h)
			return true
		}
	}
	return false
}

// Status returns a snapshot of the queue
func (q *Queue) Status() dom.QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	st := dom.QueueStatus{
		Busy:      q.busy,
		Pending:   len(q.pending),
		Draining:  q.draining,
		Processed: q.processed,
	}
	if q.current != nil {
		st.Current = q.current.ID
	}
	return st
}

// Shutdown stops intake, drops queued tasks and waits for the running one.
// It returns when the worker is idle or ctx ends
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.draining = true
	dropped := q.pending
	q.pending = nil
	for _, t := range dropped {
		t.State = dom.TaskAborted
	}
	busy, idle := q.busy, q.idle
	q.met.SetQueue(0, busy)
	q.mu.Unlock()

	if len(dropped) > 0 {
		ids := make([]string, len(dropped))
		for i, t := range dropped {
			ids[i] = t.ID
		}
		q.log.Warn().Int("dropped", len(dropped)).Strs("task_ids", ids).Msg("queue draining; queued tasks dropped")
	}
	if !busy {
		return nil
	}

	select {
	case <-idle:
		q.log.Info().Msg("queue drained")
		return nil
	case <-ctx.Done():
		return perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "queue drain timed out")
	}
}

func (q *Queue) work(t *dom.Task, done chan struct{}) {
	defer close(done)
	for t != nil {
		q.runOne(t)
		t = q.next()
	}
}

func (q *Queue) runOne(t *dom.Task) {
	state := dom.TaskAborted
	defer func() {
		if rec := recover(); rec != nil {
			q.log.Error().
				Str("task_id", t.ID).
				Interface("panic", rec).
				Err(perr.PanicErrf("task runner panicked")).
				Msg("task aborted")
			state = dom.TaskAborted
		}
		q.mu.Lock()
		t.State = state
		q.mu.Unlock()
		q.met.TaskFinished(state.String())
	}()
	state = q.runner.Run(q.base, t)
}

// next pops the following task or parks the worker
func (q *Queue) next() *dom.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processed++
	if len(q.pending) == 0 {
		q.busy = false
		q.current = nil
		q.met.SetQueue(0, false)
		return nil
	}
	t := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	t.State = dom.TaskInProgress
	q.current = t
	q.met.SetQueue(len(q.pending), true)
	return t
}
