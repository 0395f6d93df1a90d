package api

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"crisiswatch/internal/db"
)

// StatsHandler serves aggregate keyword statistics.
type StatsHandler struct {
	db *db.DB
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(database *db.DB) *StatsHandler {
	return &StatsHandler{db: database}
}

// Stats returns keyword counts broken down by state and severity, plus
// the most-triggered keywords.
func (h *StatsHandler) Stats(c fiber.Ctx) error {
	topN := 10
	if raw := c.Query("top", ""); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return jsonError(c, fiber.StatusBadRequest, "top must be between 1 and 100")
		}
		topN = n
	}

	stats, err := h.db.GetKeywordStats(c.Context(), topN)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load keyword stats")
	}
	return jsonSuccess(c, stats)
}
