package handlers

import (
	"context"
	"crypto/subtle"

	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
)

// UpdateSink accepts raw Telegram updates; telegram.Pool implements it.
type UpdateSink interface {
	SubmitUpdate(ctx context.Context, u tgbotapi.Update)
}

type WebhookHandler struct {
	secret string
	sink   UpdateSink
}

func NewWebhookHandler(secret string, sink UpdateSink) *WebhookHandler {
	return &WebhookHandler{secret: secret, sink: sink}
}

// HandleTelegram accepts an update pushed by Telegram. The path secret must
// match WEBHOOK_SECRET. Updates are queued and acknowledged at once.
func (h *WebhookHandler) HandleTelegram(c *fiber.Ctx) error {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.Params("secret")), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var update tgbotapi.Update
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid update payload",
		})
	}

	h.sink.SubmitUpdate(context.Background(), update)
	return c.SendStatus(fiber.StatusOK)
}
