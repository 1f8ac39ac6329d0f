package telegram

import (
	"strings"

	dom "cardrelay/internal/services/relay/domain"

	"github.com/go-telegram/bot/models"
)

// MapMessage converts an inbound Bot API message. Messages without a sender,
// from bots, or without any text are skipped
func MapMessage(m *models.Message) (dom.Message, bool) {
	if m == nil || m.From == nil || m.From.IsBot {
		return dom.Message{}, false
	}
	text := m.Text
	if text == "" {
		text = m.Caption
	}
	if strings.TrimSpace(text) == "" {
		return dom.Message{}, false
	}
	return dom.Message{
		ChatID:    m.Chat.ID,
		ChatType:  chatType(m.Chat.Type),
		ChatTitle: m.Chat.Title,
		MessageID: m.ID,
		ThreadID:  m.MessageThreadID,
		From:      toUser(m.From),
		Text:      text,
	}, true
}

func chatType(t models.ChatType) dom.ChatType {
	switch t {
	case models.ChatTypePrivate:
		return dom.ChatPrivate
	case models.ChatTypeGroup:
		return dom.ChatGroup
	case models.ChatTypeSupergroup:
		return dom.ChatSupergroup
	}
	return dom.ChatType(t)
}

func toUser(u *models.User) dom.User {
	if u == nil {
		return dom.User{}
	}
	return dom.User{ID: u.ID, Username: u.Username, FirstName: u.FirstName}
}
