package routes

import (
	"time"

	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/TheX6/partnerkin-super-bot/internal/handlers"
	"github.com/TheX6/partnerkin-super-bot/internal/middleware"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/telegram"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// initDataMaxAge bounds how old a mini-app session may be.
const initDataMaxAge = 24 * time.Hour

func Setup(
	app *fiber.App,
	cfg *config.Config,
	auth *services.AdminAuth,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	webAppHandler *handlers.WebAppHandler,
	adminHandler *handlers.AdminHandler,
) {
	// Monitoring (no limiter)
	app.Get("/health", healthHandler.Check)
	app.Get("/ping", healthHandler.Ping)

	// Telegram pushes updates here in webhook mode
	app.Post(telegram.WebhookPath, webhookHandler.HandleTelegram)

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Mini-app (signed Telegram initData required)
	webApp := middleware.WebApp(cfg.TelegramToken, initDataMaxAge)
	api.Post("/user-data", webApp, webAppHandler.UserData)
	api.Post("/click", webApp, webAppHandler.Click)

	// Admin API (bearer admin session required)
	admin := api.Group("/admin", middleware.AdminSession(auth))
	admin.Get("/stats", adminHandler.Stats)
}
