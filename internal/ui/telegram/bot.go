// Package telegram delivers ranked todo digests to the user and captures
// satisfaction ratings through inline keyboard callbacks.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/leejaedus/project-morgan/internal/core/domain"
	"github.com/leejaedus/project-morgan/internal/core/ports"
)

// digestLimit caps how many todos one digest message lists.
const digestLimit = 10

var priorityIcons = map[domain.Priority]string{
	domain.PriorityUrgent: "🔥",
	domain.PriorityHigh:   "⚡",
	domain.PriorityMedium: "📌",
	domain.PriorityLow:    "📝",
}

// Notifier sends todo digests over Telegram.
type Notifier struct {
	Bot      *tgbotapi.BotAPI
	ChatID   int64
	feedback chan domain.Feedback
}

func NewNotifier(token string, chatIDStr string) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %w", err)
	}

	n := &Notifier{
		Bot:      bot,
		ChatID:   chatID,
		feedback: make(chan domain.Feedback, 16),
	}

	go n.listen()
	return n, nil
}

var _ ports.Notifier = (*Notifier)(nil)

// listen consumes callback queries and turns rating buttons into feedback
// events. Callback data format: rate|<todo id>|<predicted priority>|<1-5>.
func (n *Notifier) listen() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := n.Bot.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery == nil {
			continue
		}
		callback := update.CallbackQuery

		fb, ok := parseRating(callback.Data)
		if !ok {
			continue
		}
		n.feedback <- fb

		ack := tgbotapi.NewCallback(callback.ID, fmt.Sprintf("Rated %d/5, thanks!", fb.Satisfaction))
		n.Bot.Request(ack)

		// Inline-mode callbacks carry no message to edit.
		if callback.Message != nil {
			edit := tgbotapi.NewEditMessageReplyMarkup(n.ChatID, callback.Message.MessageID,
				tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
			n.Bot.Send(edit)
		}
	}
}

// parseRating extracts a feedback event from rating-button callback data.
func parseRating(data string) (domain.Feedback, bool) {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != "rate" {
		return domain.Feedback{}, false
	}
	rating, err := strconv.Atoi(parts[3])
	if err != nil || rating < 1 || rating > 5 {
		return domain.Feedback{}, false
	}
	return domain.Feedback{
		TodoID:            parts[1],
		PredictedPriority: domain.Priority(parts[2]),
		Satisfaction:      rating,
	}, true
}

// FeedbackEvents streams ratings the user submits from digest messages.
func (n *Notifier) FeedbackEvents() <-chan domain.Feedback {
	return n.feedback
}

// SendDigest posts the ranked todo list. The top item carries rating
// buttons so the user can grade how well the prioritization worked.
func (n *Notifier) SendDigest(ctx context.Context, list domain.TodoList) error {
	if len(list.Items) == 0 {
		msg := tgbotapi.NewMessage(n.ChatID, "📝 No actionable messages found. 🎉")
		_, err := n.Bot.Send(msg)
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*[%s]*\n\n", escapeMarkdown(list.Title))

	shown := list.Items
	if len(shown) > digestLimit {
		shown = shown[:digestLimit]
	}
	for i, item := range shown {
		fmt.Fprintf(&b, "%d. %s *%s* — %s\n", i+1,
			priorityIcons[item.Priority()],
			strings.ToUpper(string(item.Priority())),
			escapeMarkdown(item.Title))
		fmt.Fprintf(&b, "    #%s · %s · %s\n",
			escapeMarkdown(item.Message.ChannelName),
			escapeMarkdown(item.Message.Username),
			escapeMarkdown(item.Score.RecommendedActionTime))
	}

	fmt.Fprintf(&b, "\n📊 %d todos | 🔥 %d | ⚡ %d | 📌 %d | 📝 %d",
		list.TotalItems,
		len(list.ByPriority(domain.PriorityUrgent)),
		len(list.ByPriority(domain.PriorityHigh)),
		len(list.ByPriority(domain.PriorityMedium)),
		len(list.ByPriority(domain.PriorityLow)))

	msg := tgbotapi.NewMessage(n.ChatID, b.String())
	msg.ParseMode = "Markdown"

	top := list.Items[0]
	msg.ReplyMarkup = ratingKeyboard(top)

	_, err := n.Bot.Send(msg)
	return err
}

func ratingKeyboard(item domain.TodoItem) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, 5)
	for rating := 1; rating <= 5; rating++ {
		data := fmt.Sprintf("rate|%s|%s|%d", item.ID, item.Priority(), rating)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(rating), data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// escapeMarkdown guards against Telegram markdown parse errors.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
