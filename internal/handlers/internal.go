package handlers

import (
	"log"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/services"
	"github.com/gofiber/fiber/v2"
)

type InternalHandler struct {
	cfg  *config.Config
	gyms *services.GymService
}

func NewInternalHandler(db *database.DB, cfg *config.Config) *InternalHandler {
	return &InternalHandler{
		cfg:  cfg,
		gyms: services.NewGymService(db),
	}
}

func SetupInternalRoutes(router fiber.Router, db *database.DB, cfg *config.Config) {
	h := NewInternalHandler(db, cfg)

	// Write-side API - API key required
	router.Post("/refresh-freshness", h.RefreshFreshness)
}

// RefreshFreshnessRequest lists the gyms whose cached verification timestamp
// should be recomputed from their equipment links
type RefreshFreshnessRequest struct {
	GymIDs []uint `json:"gym_ids"`
}

// RefreshFreshnessResponse reports how many gyms were updated
type RefreshFreshnessResponse struct {
	UpdatedCount int `json:"updated_count"`
}

// RefreshFreshness godoc
// @Summary Recompute cached verification timestamps
// @Description Called by the write-side batch after equipment verification updates
// @Tags internal
// @Accept json
// @Produce json
// @Param X-API-Key header string true "Internal API Key"
// @Param request body RefreshFreshnessRequest true "Gym IDs to refresh"
// @Success 200 {object} RefreshFreshnessResponse
// @Router /internal/refresh-freshness [post]
func (h *InternalHandler) RefreshFreshness(c *fiber.Ctx) error {
	apiKey := c.Get("X-API-Key")
	if apiKey == "" || apiKey != h.cfg.InternalAPIKey {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{Error: "Invalid or missing API key"})
	}

	var req RefreshFreshnessRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	if len(req.GymIDs) == 0 {
		return c.JSON(RefreshFreshnessResponse{UpdatedCount: 0})
	}

	updated, err := h.gyms.RefreshFreshness(c.Context(), req.GymIDs)
	if err != nil {
		return serviceError(c, err)
	}

	log.Printf("[Internal] Refreshed freshness for %d/%d gyms", updated, len(req.GymIDs))

	return c.JSON(RefreshFreshnessResponse{UpdatedCount: updated})
}
