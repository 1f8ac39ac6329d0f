package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"cardrelay/internal/platform/logger"
	"cardrelay/internal/platform/metrics"

	dom "cardrelay/internal/services/relay/domain"
)

const (
	cmdDatabase = "database"
	cmdAddChat  = "addchat"
	cmdDelChat  = "delchat"
)

const (
	noRightsText    = "У вас нет прав для выполнения этой команды."
	unknownGroupTag = "Неизвестная группа"
)

// Commands answers the chat registration commands
type Commands struct {
	ch    dom.NotificationChannel
	store dom.ChatCategoryStore
	met   *metrics.Metrics
}

// NewCommands constructs Commands
func NewCommands(ch dom.NotificationChannel, store dom.ChatCategoryStore, met *metrics.Metrics) *Commands {
	return &Commands{ch: ch, store: store, met: met}
}

// Handle runs cmd for m and replies in the chat
func (c *Commands) Handle(ctx context.Context, cmd string, m dom.Message) {
	var reply string
	switch cmd {
	case cmdDatabase:
		reply = c.database(ctx, m.ChatID)
	case cmdAddChat:
		reply = c.adminOnly(ctx, m, c.addChat)
	case cmdDelChat:
		reply = c.adminOnly(ctx, m, c.delChat)
	default:
		return
	}
	_, err := c.ch.SendText(ctx, m.ChatID, m.ThreadID, reply)
	notifyFailed(ctx, c.met, "send_command_reply", err)
}

func (c *Commands) database(ctx context.Context, chatID int64) string {
	rec, ok, err := c.store.Get(ctx, chatID)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("chat store lookup failed")
	}
	if err != nil || !ok {
		return fmt.Sprintf("Данные для чата %d не найдены.", chatID)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Данные для чата %d:\n", chatID)
	fmt.Fprintf(&b, "Имя группы: %s\n", rec.Name)
	b.WriteString("Категории и ID тем:\n")
	cats := make([]string, 0, len(rec.Threads))
	for k := range rec.Threads {
		cats = append(cats, k)
	}
	slices.Sort(cats)
	for _, k := range cats {
		fmt.Fprintf(&b, "- %s: %d\n", k, rec.Threads[k])
	}
	return b.String()
}

func (c *Commands) adminOnly(ctx context.Context, m dom.Message, fn func(context.Context, dom.Message) string) string {
	ok, err := c.ch.IsAdmin(ctx, m.ChatID, m.From.ID)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int64("user_id", m.From.ID).Msg("membership lookup failed")
		return noRightsText
	}
	if !ok {
		return noRightsText
	}
	return fn(ctx, m)
}

func (c *Commands) addChat(ctx context.Context, m dom.Message) string {
	name := strings.TrimSpace(m.ChatTitle)
	if name == "" {
		name = unknownGroupTag
	}
	created, err := c.store.Register(ctx, m.ChatID, name)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("chat register failed")
		return fmt.Sprintf("Не удалось добавить чат %d.", m.ChatID)
	}
	if !created {
		return fmt.Sprintf("Чат %d уже существует в базе данных.", m.ChatID)
	}
	logger.C(ctx).Info().Str("name", name).Msg("chat registered")
	return fmt.Sprintf("Чат %d добавлен в базу данных.", m.ChatID)
}

func (c *Commands) delChat(ctx context.Context, m dom.Message) string {
	removed, err := c.store.Remove(ctx, m.ChatID)
	if err != nil {
		logger.C(ctx).Error().Err(err).Msg("chat remove failed")
		return fmt.Sprintf("Не удалось удалить чат %d.", m.ChatID)
	}
	if !removed {
		return chatMissingText(m.ChatID)
	}
	logger.C(ctx).Info().Msg("chat removed")
	return fmt.Sprintf("Чат %d удален из базы данных.", m.ChatID)
}
