package handlers

import (
	"log/slog"
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	"github.com/TheX6/partnerkin-super-bot/internal/session"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping      func() error
	dialogues *session.Registry
}

// NewHealthHandler takes the database ping; nil means no database is in use.
func NewHealthHandler(ping func() error, dialogues *session.Registry) *HealthHandler {
	return &HealthHandler{ping: ping, dialogues: dialogues}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := "ok"
	dbStatus := "ok"
	if h.ping == nil {
		dbStatus = "disabled"
	} else if err := h.ping(); err != nil {
		status = "degraded"
		dbStatus = "unhealthy: " + err.Error()
	}

	active, err := h.dialogues.Count(c.UserContext())
	if err != nil {
		slog.Warn("failed to count dialogues", "error", err)
		status = "degraded"
		active = -1
	}

	return c.JSON(dto.HealthResponse{
		Status:          status,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		DB:              dbStatus,
		ActiveDialogues: active,
	})
}

// Ping is the keep-alive endpoint.
func (h *HealthHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(dto.PingResponse{Pong: time.Now().UnixMilli()})
}
