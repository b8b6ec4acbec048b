package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"stocksense/internal/adapters/config"
	"stocksense/internal/agent"
	focussvc "stocksense/internal/services/focus"
	"stocksense/pkg/errors"
	"stocksense/pkg/logger"
)

// Notifier forwards agent notifications and focus timer events to a
// Telegram chat. It is wired only when a bot token and chat ID are
// configured.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewNotifier creates a Telegram notifier
func NewNotifier(cfg config.TelegramConfig) (*Notifier, error) {
	if !cfg.Enabled() {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token and chat id are required")
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create telegram bot")
	}

	log := logger.Get().With("component", "telegram")
	log.Infow("telegram notifier ready", "bot", api.Self.UserName)

	return &Notifier{
		api:    api,
		chatID: cfg.ChatID,
		// Telegram allows 30 msg/sec, stay conservative
		limiter: rate.NewLimiter(rate.Limit(20), 30),
		log:     log,
	}, nil
}

// NotifyAction forwards notification actions from the agent loop.
// Other action kinds are UI concerns and stay on the websocket.
func (n *Notifier) NotifyAction(a agent.Action) {
	if a.Kind != agent.KindNotification || a.Notification == nil {
		return
	}
	n.send(fmt.Sprintf("📊 %s", a.Notification.Message))
}

// NotifyFocus forwards focus timer notifications
func (n *Notifier) NotifyFocus(note focussvc.Notification) {
	switch note.Kind {
	case focussvc.NotifySessionComplete:
		n.send(fmt.Sprintf("⏱ %s", note.Message))
	case focussvc.NotifyBreakReminder:
		n.send(fmt.Sprintf("☕ %s", note.Message))
	case focussvc.NotifyWorkPrompt:
		n.send(fmt.Sprintf("💪 %s", note.Message))
	}
}

func (n *Notifier) send(text string) {
	if err := n.limiter.Wait(context.Background()); err != nil {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.log.Warnw("failed to send telegram message", "error", err)
	}
}
