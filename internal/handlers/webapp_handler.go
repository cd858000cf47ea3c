package handlers

import (
	"errors"

	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	"github.com/TheX6/partnerkin-super-bot/internal/middleware"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/TheX6/partnerkin-super-bot/internal/store"
	"github.com/gofiber/fiber/v2"
)

// WebAppHandler serves the tapper mini-app. Callers are authenticated by
// middleware.WebApp.
type WebAppHandler struct {
	users     *services.UserService
	clicker   *services.ClickerService
	maxEnergy int
}

func NewWebAppHandler(users *services.UserService, clicker *services.ClickerService, maxEnergy int) *WebAppHandler {
	return &WebAppHandler{users: users, clicker: clicker, maxEnergy: maxEnergy}
}

// UserData returns the caller's balance. Users who never talked to the bot
// get zeros.
func (h *WebAppHandler) UserData(c *fiber.Ctx) error {
	u, err := h.users.Get(c.UserContext(), middleware.TelegramID(c))
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(dto.UserDataResponse{MaxEnergy: h.maxEnergy})
	}
	if err != nil {
		return err
	}
	return c.JSON(dto.UserDataResponse{
		PCoins:    u.PCoins,
		Energy:    u.Energy,
		MaxEnergy: h.maxEnergy,
	})
}

// Click spends one energy for one coin.
func (h *WebAppHandler) Click(c *fiber.Ctx) error {
	u, err := h.clicker.Tap(c.UserContext(), middleware.TelegramID(c))
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "User not found",
		})
	case errors.Is(err, store.ErrInsufficientEnergy):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "Not enough energy",
		})
	case err != nil:
		return err
	}
	return c.JSON(dto.ClickResponse{PCoins: u.PCoins, Energy: u.Energy})
}
