package middleware

import (
	"github.com/TheX6/partnerkin-super-bot/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept, " + InitDataHeader,
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: false,
	})
}
