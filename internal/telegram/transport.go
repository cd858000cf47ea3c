package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath is the fiber route the webhook is served on.
const WebhookPath = "/telegram/webhook/:secret"

var allowedUpdates = []string{tgbotapi.UpdateTypeMessage, tgbotapi.UpdateTypeCallbackQuery}

// RunPolling long-polls for updates and submits them to the pool until ctx
// is done. Any webhook is removed first since Telegram refuses getUpdates
// while one is set.
func RunPolling(ctx context.Context, api *tgbotapi.BotAPI, pool *Pool, log *slog.Logger) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = allowedUpdates
	updates := api.GetUpdatesChan(u)
	log.Info("telegram polling started", "bot", api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			log.Info("telegram polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			pool.SubmitUpdate(ctx, update)
		}
	}
}

// SetWebhook registers baseURL plus the secret path with Telegram.
func SetWebhook(api *tgbotapi.BotAPI, baseURL, secret string) error {
	link := strings.TrimRight(baseURL, "/") + "/telegram/webhook/" + secret
	wh, err := tgbotapi.NewWebhook(link)
	if err != nil {
		return fmt.Errorf("failed to build webhook: %w", err)
	}
	wh.AllowedUpdates = allowedUpdates
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	return nil
}
