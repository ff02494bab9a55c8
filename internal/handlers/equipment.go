package handlers

import (
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/services"
	"github.com/gofiber/fiber/v2"
)

type EquipmentHandler struct {
	service *services.GymService
}

func NewEquipmentHandler(db *database.DB) *EquipmentHandler {
	return &EquipmentHandler{
		service: services.NewGymService(db),
	}
}

func SetupEquipmentRoutes(router fiber.Router, db *database.DB) {
	h := NewEquipmentHandler(db)

	router.Get("/", h.List)
}

// List godoc
// @Summary List equipment definitions
// @Tags equipments
// @Accept json
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {array} models.Equipment
// @Router /equipments [get]
func (h *EquipmentHandler) List(c *fiber.Ctx) error {
	equipments, err := h.service.ListEquipments(c.Context(), c.Query("category"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(equipments)
}
