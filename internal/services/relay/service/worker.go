package service

import (
	"context"
	"fmt"
	"time"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
)

// Worker resolves a task's identifiers in order and reports progress in the chat
type Worker struct {
	resolver ldom.ResolverPort
	deliver  *Deliverer
	ch       dom.NotificationChannel
	policy   dom.FailurePolicy
	met      *metrics.Metrics
	now      func() time.Time
}

// NewWorker constructs a Worker. An empty policy means abort
func NewWorker(resolver ldom.ResolverPort, deliver *Deliverer, ch dom.NotificationChannel, policy dom.FailurePolicy, met *metrics.Metrics) *Worker {
	if policy != dom.FailContinue {
		policy = dom.FailAbort
	}
	return &Worker{resolver: resolver, deliver: deliver, ch: ch, policy: policy, met: met, now: time.Now}
}

// Run implements TaskRunner
func (w *Worker) Run(ctx context.Context, t *dom.Task) dom.TaskState {
	ctx = logger.WithTask(ctx, t.ID, t.ChatID)
	log := logger.C(ctx)
	start := w.now()

	for _, n := range t.Notices {
		notifyFailed(ctx, w.met, "delete_notice", w.ch.DeleteText(ctx, n))
	}
	if !t.Source.IsZero() {
		notifyFailed(ctx, w.met, "delete_source", w.ch.DeleteText(ctx, t.Source))
	}

	total := len(t.Identifiers)
	if h, err := w.ch.SendText(ctx, t.ChatID, t.ThreadID, progressText(t.Identifiers[0], 0, total)); err != nil {
		notifyFailed(ctx, w.met, "send_progress", err)
	} else {
		t.Progress = h
	}

	state := dom.TaskCompleted
	for _, id := range t.Identifiers {
		res := w.resolver.Resolve(ctx, id)
		w.deliver.Deliver(ctx, t, res)

		t.Completed++
		if !t.Progress.IsZero() {
			notifyFailed(ctx, w.met, "edit_progress", w.ch.EditText(ctx, t.Progress, progressText(id, t.Completed, total)))
		}
		if !res.Resolved() && w.policy == dom.FailAbort {
			log.Info().Str("identifier", id).Err(res.Err).Int("skipped", total-t.Completed).Msg("task aborted on failed identifier")
			state = dom.TaskAborted
			break
		}
	}

	if !t.Progress.IsZero() {
		notifyFailed(ctx, w.met, "delete_progress", w.ch.DeleteText(ctx, t.Progress))
	}

	log.Info().
		Str("state", state.String()).
		Int("completed", t.Completed).
		Int("total", total).
		Dur("elapsed", w.now().Sub(start)).
		Msg("task finished")
	return state
}

func progressText(current string, done, total int) string {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	return fmt.Sprintf("Выполняется: %s\n\nВыполнено %d%%\nОсталось %d из %d", current, pct, total-done, total)
}

// notifyFailed logs and counts a failed chat call; progression never stops on it
func notifyFailed(ctx context.Context, met *metrics.Metrics, op string, err error) {
	if err == nil {
		return
	}
	met.DeliveryFailed(op)
	logger.C(ctx).Warn().
		Err(perr.WrapIf(err, perr.ErrorCodeDelivery, op)).
		Str("op", op).
		Msg("notification failed")
}
