package telegram

import (
	"context"
	"encoding/json"

	perr "cardrelay/internal/platform/errors"

	dom "cardrelay/internal/services/relay/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// SendText implements dom.NotificationChannel. Text goes out without a parse mode so
// chat titles and category names are never read as markup; only captions are HTML
func (c *Channel) SendText(ctx context.Context, chatID int64, threadID int, text string) (dom.Handle, error) {
	msg, err := c.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Text:            text,
	})
	if err != nil {
		return dom.Handle{}, perr.Wrapf(err, perr.ErrorCodeDelivery, "sendMessage to %d", chatID)
	}
	return dom.Handle{ChatID: chatID, MessageID: msg.ID}, nil
}

// EditText implements dom.NotificationChannel
func (c *Channel) EditText(ctx context.Context, h dom.Handle, text string) error {
	_, err := c.b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    h.ChatID,
		MessageID: h.MessageID,
		Text:      text,
	})
	return perr.WrapIf(err, perr.ErrorCodeDelivery, "editMessageText")
}

// DeleteText implements dom.NotificationChannel
func (c *Channel) DeleteText(ctx context.Context, h dom.Handle) error {
	_, err := c.b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: h.ChatID, MessageID: h.MessageID})
	return perr.WrapIf(err, perr.ErrorCodeDelivery, "deleteMessage")
}

// SendPhoto implements dom.NotificationChannel; the photo is fetched by Telegram from photoURL
func (c *Channel) SendPhoto(ctx context.Context, chatID int64, threadID int, photoURL, caption string) (dom.Handle, error) {
	msg, err := c.b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:          chatID,
		MessageThreadID: threadID,
		Photo:           &models.InputFileString{Data: photoURL},
		Caption:         caption,
		ParseMode:       models.ParseModeHTML,
	})
	if err != nil {
		return dom.Handle{}, perr.Wrapf(err, perr.ErrorCodeDelivery, "sendPhoto to %d", chatID)
	}
	return dom.Handle{ChatID: chatID, MessageID: msg.ID}, nil
}

// CreateSubthread implements dom.NotificationChannel with a forum topic
func (c *Channel) CreateSubthread(ctx context.Context, chatID int64, name string) (int, error) {
	topic, err := c.b.CreateForumTopic(ctx, &bot.CreateForumTopicParams{ChatID: chatID, Name: name})
	if err != nil {
		return 0, perr.Wrapf(err, perr.ErrorCodeDelivery, "createForumTopic %q in %d", name, chatID)
	}
	c.log.Info().Int64("chat_id", chatID).Str("name", name).Int("thread_id", topic.MessageThreadID).Msg("forum topic created")
	return topic.MessageThreadID, nil
}

// ResolveUserDisplay implements dom.NotificationChannel
func (c *Channel) ResolveUserDisplay(ctx context.Context, chatID, userID int64) (dom.User, error) {
	m, err := c.member(ctx, chatID, userID)
	if err != nil {
		return dom.User{}, err
	}
	u, ok := memberUser(m)
	if !ok {
		return dom.User{}, perr.NotFoundf("user %d not present in chat %d", userID, chatID)
	}
	return u, nil
}

// IsAdmin implements dom.NotificationChannel; owners count as admins
func (c *Channel) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	m, err := c.member(ctx, chatID, userID)
	if err != nil {
		return false, err
	}
	return isAdminStatus(m.Type), nil
}

func (c *Channel) member(ctx context.Context, chatID, userID int64) (*models.ChatMember, error) {
	m, err := c.b.GetChatMember(ctx, &bot.GetChatMemberParams{ChatID: chatID, UserID: userID})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "getChatMember %d in %d", userID, chatID)
	}
	return m, nil
}

func isAdminStatus(t models.ChatMemberType) bool {
	return t == models.ChatMemberTypeAdministrator || t == models.ChatMemberTypeOwner
}

// memberUser pulls the user out of whichever member variant is set.
// Every variant carries it under the "user" key
func memberUser(m *models.ChatMember) (dom.User, bool) {
	var variant any
	switch {
	case m == nil:
		return dom.User{}, false
	case m.Owner != nil:
		variant = m.Owner
	case m.Administrator != nil:
		variant = m.Administrator
	case m.Member != nil:
		variant = m.Member
	case m.Restricted != nil:
		variant = m.Restricted
	case m.Left != nil:
		variant = m.Left
	case m.Banned != nil:
		variant = m.Banned
	default:
		return dom.User{}, false
	}
	b, err := json.Marshal(variant)
	if err != nil {
		return dom.User{}, false
	}
	var doc struct {
		User *models.User `json:"user"`
	}
	if err := json.Unmarshal(b, &doc); err != nil || doc.User == nil || doc.User.ID == 0 {
		return dom.User{}, false
	}
	return toUser(doc.User), true
}
