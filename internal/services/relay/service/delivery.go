package service

import (
	"context"
	"fmt"
	"strings"

	perr "cardrelay/internal/platform/errors"
	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
)

const subthreadFailedText = "Не удалось создать новый топик для категории."

func chatMissingText(chatID int64) string {
	return fmt.Sprintf("Чат %d не найден в базе данных.", chatID)
}

// Deliverer posts one resolution result into the category subthread of its chat
type Deliverer struct {
	ch    dom.NotificationChannel
	store dom.ChatCategoryStore
	met   *metrics.Metrics
}

// NewDeliverer constructs a Deliverer
func NewDeliverer(ch dom.NotificationChannel, store dom.ChatCategoryStore, met *metrics.Metrics) *Deliverer {
	return &Deliverer{ch: ch, store: store, met: met}
}

// Deliver posts res for t. Every failure past this point is logged and swallowed
func (d *Deliverer) Deliver(ctx context.Context, t *dom.Task, res ldom.ResolutionResult) {
	ctx = logger.WithIdentifier(ctx, res.Identifier)
	log := logger.C(ctx)

	if !res.Resolved() || res.Card == nil {
		d.text(ctx, t, "send_failure", failureText(res.Identifier))
		return
	}

	rec, ok, err := d.store.Get(ctx, t.ChatID)
	if err != nil {
		log.Error().Err(err).Msg("chat store lookup failed")
		d.text(ctx, t, "send_failure", failureText(res.Identifier))
		return
	}
	if !ok {
		d.text(ctx, t, "send_chat_missing", chatMissingText(t.ChatID))
		return
	}

	category := res.Card.Category
	if strings.TrimSpace(category) == "" {
		log.Warn().Msg("card has no category to route by")
		d.text(ctx, t, "send_failure", failureText(res.Identifier))
		return
	}

	thread := rec.Threads[category]
	if thread == 0 {
		thread, err = d.ch.CreateSubthread(ctx, t.ChatID, category)
		if err != nil {
			notifyFailed(ctx, d.met, "create_subthread", err)
			d.text(ctx, t, "send_subthread_failed", subthreadFailedText)
			return
		}
		if err := d.store.Put(ctx, t.ChatID, category, thread); err != nil {
			log.Error().Err(perr.WrapIf(err, perr.ErrorCodeDB, "persist subthread")).Int("thread_id", thread).Msg("subthread created but not saved")
		}
		log.Info().Str("category", category).Int("thread_id", thread).Msg("category subthread created")
	}

	caption := Caption(res, d.sender(ctx, t))
	_, err = d.ch.SendPhoto(ctx, t.ChatID, thread, res.Card.ImageURL, caption)
	notifyFailed(ctx, d.met, "send_photo", err)
}

func (d *Deliverer) sender(ctx context.Context, t *dom.Task) string {
	u, err := d.ch.ResolveUserDisplay(ctx, t.ChatID, t.Submitter.ID)
	if err != nil {
		logger.C(ctx).Debug().Err(err).Int64("user_id", t.Submitter.ID).Msg("sender lookup failed")
		return UserFallback(t.Submitter.ID)
	}
	if u.ID == 0 {
		u.ID = t.Submitter.ID
	}
	return UserDisplay(u)
}

func (d *Deliverer) text(ctx context.Context, t *dom.Task, op, text string) {
	_, err := d.ch.SendText(ctx, t.ChatID, t.ThreadID, text)
	notifyFailed(ctx, d.met, op, err)
}
