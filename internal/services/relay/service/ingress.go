package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/relay/domain"
)

const (
	privateChatText = "Привет! Этот бот работает только в группах. Пожалуйста, добавьте меня в группу и предоставьте права администратора."
	drainingText    = "Бот перезапускается, повторите запрос чуть позже."
)

var identifierRe = regexp.MustCompile(`\b\d{5,}\b`)

func queuedText(pos int) string {
	return fmt.Sprintf("Ваш запрос добавлен в очередь (позиция %d), ожидайте.", pos)
}

// ExtractIdentifiers returns every run of 5+ digits in s, first occurrence order, deduplicated
func ExtractIdentifiers(s string) []string {
	found := identifierRe.FindAllString(s, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(found))
	out := found[:0]
	for _, id := range found {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Ingress turns chat messages into queued tasks and command replies
type Ingress struct {
	q    dom.QueuePort
	ch   dom.NotificationChannel
	cmds *Commands
	met  *metrics.Metrics
	now  func() time.Time
}

// NewIngress constructs an Ingress
func NewIngress(q dom.QueuePort, ch dom.NotificationChannel, cmds *Commands, met *metrics.Metrics) *Ingress {
	return &Ingress{q: q, ch: ch, cmds: cmds, met: met, now: time.Now}
}

// HandleMessage implements dom.IngressPort
func (in *Ingress) HandleMessage(ctx context.Context, m dom.Message) {
	ctx = logger.WithTask(ctx, "", m.ChatID)
	log := logger.C(ctx)

	if m.ChatType == dom.ChatPrivate {
		_, err := in.ch.SendText(ctx, m.ChatID, 0, privateChatText)
		notifyFailed(ctx, in.met, "send_private_notice", err)
		return
	}

	if cmd, ok := command(m.Text); ok {
		in.cmds.Handle(ctx, cmd, m)
		return
	}

	ids := ExtractIdentifiers(m.Text)
	if len(ids) == 0 {
		return
	}

	t := &dom.Task{
		Identifiers: ids,
		Submitter:   m.From,
		ChatID:      m.ChatID,
		ThreadID:    m.ThreadID,
		Source:      dom.Handle{ChatID: m.ChatID, MessageID: m.MessageID},
		SubmittedAt: in.now(),
	}
	ticket, err := in.q.Enqueue(ctx, t)
	if errors.Is(err, dom.ErrDraining) {
		_, serr := in.ch.SendText(ctx, m.ChatID, m.ThreadID, drainingText)
		notifyFailed(ctx, in.met, "send_draining", serr)
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("enqueue failed")
		return
	}

	log.Info().
		Str("task_id", ticket.TaskID).
		Int("identifiers", len(ids)).
		Int("position", ticket.Position).
		Msg("task enqueued")

	if ticket.Position == 0 {
		return
	}
	h, err := in.ch.SendText(ctx, m.ChatID, m.ThreadID, queuedText(ticket.Position))
	if err != nil {
		notifyFailed(ctx, in.met, "send_queue_notice", err)
		return
	}
	if !in.q.AttachNotice(ticket.TaskID, h) {
		// the task started between Enqueue and here
		notifyFailed(ctx, in.met, "delete_notice", in.ch.DeleteText(ctx, h))
	}
}

// command returns the bare command name ("/addchat@relay_bot foo" gives "addchat")
func command(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name, _, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(name)
	switch name {
	case cmdDatabase, cmdAddChat, cmdDelChat:
		return name, true
	}
	return "", false
}
