package service

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"cardrelay/internal/core/hashtag"
	"cardrelay/internal/core/pricing"

	ldom "cardrelay/internal/services/lookup/domain"
	dom "cardrelay/internal/services/relay/domain"
)

// captionLimit is the chat platform's photo caption cap
const captionLimit = 1024

const (
	untitled      = "Без названия"
	noHistoryLine = "нет данных"
)

func productURL(id string) string {
	return "https://www.wildberries.ru/catalog/" + id + "/detail.aspx?targetUrl=SG"
}

// Caption renders the HTML caption posted with the product photo.
// Price lines are dropped from the oldest end until it fits the platform cap
func Caption(res ldom.ResolutionResult, sender string) string {
	card := res.Card
	name := card.DisplayName
	if strings.TrimSpace(name) == "" {
		name = untitled
	}

	var head strings.Builder
	fmt.Fprintf(&head, "<a href=\"%s\">%s</a>\n\n", productURL(res.Identifier), html.EscapeString(name))
	fmt.Fprintf(&head, "Категория: #%s\n", hashtag.Tag(card.Category))
	fmt.Fprintf(&head, "Подкатегория: #%s\n\n", hashtag.Tag(card.Subcategory))
	fmt.Fprintf(&head, "Артикул: <code>%s</code>\n", html.EscapeString(res.Identifier))
	fmt.Fprintf(&head, "Отправитель: %s\n", sender)
	if card.Brand != "" {
		fmt.Fprintf(&head, "Бренд: %s\n", html.EscapeString(card.Brand))
	}
	if card.Supplier != "" {
		fmt.Fprintf(&head, "Продавец: %s\n", html.EscapeString(card.Supplier))
	}
	head.WriteString("\nПредыдущие цены :\n")

	lines := priceLines(res.History)
	for len(lines) > 1 && runeLen(head.String())+runeLen(strings.Join(lines, "\n")) > captionLimit {
		lines = lines[:len(lines)-1]
	}
	return head.String() + strings.Join(lines, "\n")
}

func priceLines(entries []pricing.Entry) []string {
	if len(entries) == 0 || pricing.IsNoHistory(entries) {
		return []string{noHistoryLine}
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Date+" — "+e.Amount+" ₽")
	}
	return out
}

// UserDisplay renders the sender the way the caption links it
func UserDisplay(u dom.User) string {
	id := strconv.FormatInt(u.ID, 10)
	switch {
	case u.Username != "":
		return fmt.Sprintf(`<a href="https://t.me/%s">%s</a>`, u.Username, html.EscapeString(firstOr(u)))
	case u.FirstName != "":
		return fmt.Sprintf(`<a href="https://t.me/%s">%s</a>`, id, html.EscapeString(u.FirstName))
	default:
		return fmt.Sprintf(`<a href="https://t.me/%s">User %s</a>`, id, id)
	}
}

// UserFallback is used when the channel cannot resolve the sender
func UserFallback(userID int64) string { return "@id" + strconv.FormatInt(userID, 10) }

func firstOr(u dom.User) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

func failureText(id string) string {
	return fmt.Sprintf("Ошибка, данные для артикула %s не были получены.", id)
}

func runeLen(s string) int { return len([]rune(s)) }
