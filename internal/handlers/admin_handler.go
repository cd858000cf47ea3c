package handlers

import (
	"github.com/TheX6/partnerkin-super-bot/internal/dto"
	"github.com/TheX6/partnerkin-super-bot/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	stats *services.StatsService
}

func NewAdminHandler(stats *services.StatsService) *AdminHandler {
	return &AdminHandler{stats: stats}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.stats.Snapshot(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.StatsResponse{
		Users:              st.Users,
		RegisteredUsers:    st.RegisteredUsers,
		Interns:            st.Interns,
		Veterans:           st.Veterans,
		TotalCoins:         st.TotalCoins,
		PendingSubmissions: st.PendingSubmissions,
		PendingVacations:   st.PendingVacations,
		ActiveSlots:        st.ActiveSlots,
		OpenTasks:          st.OpenTasks,
		Gifts:              st.Gifts,
		Battles:            st.Battles,
		TotalClicks:        st.TotalClicks,
	})
}
