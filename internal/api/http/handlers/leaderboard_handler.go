package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ecocampus/complaint-service/internal/gamification"
)

// LeaderboardHandler serves the gamification standings.
type LeaderboardHandler struct {
	service *gamification.Service
}

// NewLeaderboardHandler constructs handler.
func NewLeaderboardHandler(svc *gamification.Service) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc}
}

// Leaderboard GET /leaderboard.
func (h *LeaderboardHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.service.Leaderboard(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
