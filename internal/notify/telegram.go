package notify

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram caps messages at 4096 chars; stay under it.
const maxTelegramLength = 4000

// TelegramNotifier mirrors submissions to the owner's Telegram chat.
// It is a best-effort secondary channel, wired behind a Fanout.
type TelegramNotifier struct {
	bot    *tgbot.Bot
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	b, err := tgbot.New(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: b, chatID: chatID}, nil
}

func (n *TelegramNotifier) Send(ctx context.Context, msg Message) error {
	// Message fields arrive entity-escaped from the pipeline, so the
	// text is safe for Telegram's HTML parse mode as-is.
	text := fmt.Sprintf(
		"<b>New contact message</b>\nFrom: %s (%s)\nIP: %s\n\n%s",
		msg.Name, msg.Email, msg.ClientIP, msg.Body,
	)
	for _, chunk := range splitByLimit(text, maxTelegramLength) {
		_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    n.chatID,
			Text:      chunk,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			return fmt.Errorf("telegram send: %w", err)
		}
	}
	return nil
}

// splitByLimit chunks text into pieces of at most maxLen characters.
// Telegram counts characters, not bytes, so cuts happen on rune
// boundaries, and a cut falling inside an &...; entity is moved back
// before the ampersand so the escaped form survives chunking.
func splitByLimit(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}
	chunks := make([]string, 0, len(runes)/maxLen+1)
	for len(runes) > maxLen {
		cut := maxLen
		// Entities are short; only a handful of runes need scanning.
		for back := 0; back < 10 && cut-back > 0; back++ {
			r := runes[cut-back-1]
			if r == ';' {
				break
			}
			if r == '&' {
				cut -= back + 1
				break
			}
		}
		if cut == 0 {
			cut = maxLen
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
