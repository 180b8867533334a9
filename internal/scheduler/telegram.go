package scheduler

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/notexe/remind/internal/reminder"
)

type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramPlugin mirrors due and done events into a Telegram chat.
type TelegramPlugin struct {
	bot    telegramSender
	chatID int64
}

const defaultTelegramTimeout = 30 * time.Second

// NewTelegramPlugin connects to the Bot API with botToken. Every HTTP call
// to the API gives up after timeout.
func NewTelegramPlugin(botToken string, chatID int64, timeout time.Duration) (*TelegramPlugin, error) {
	if timeout <= 0 {
		timeout = defaultTelegramTimeout
	}
	client := &http.Client{Timeout: timeout}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	return &TelegramPlugin{bot: bot, chatID: chatID}, nil
}

func (t *TelegramPlugin) Name() string {
	return "telegram"
}

func (t *TelegramPlugin) OnDue(ctx context.Context, r reminder.Reminder) error {
	text := fmt.Sprintf("<b>Reminder #%d</b>\n%s\n<i>due %s</i>",
		r.ID, html.EscapeString(r.Text), r.DueAt.Format("2006-01-02 15:04 MST"))
	if r.Priority == reminder.PriorityHigh {
		text = "<b>[high]</b> " + text
	}
	return t.send(ctx, text)
}

func (t *TelegramPlugin) OnDone(ctx context.Context, id int64) error {
	return t.send(ctx, fmt.Sprintf("Reminder #%d is no longer due.", id))
}

// send stops waiting when ctx ends; the Bot API client has no context
// support of its own.
func (t *TelegramPlugin) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	errc := make(chan error, 1)
	go func() {
		_, err := t.bot.Send(msg)
		errc <- err
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to send telegram message: %w", ctx.Err())
	}
}
