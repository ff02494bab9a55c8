package handlers

import (
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FavoriteHandler struct {
	service *services.FavoriteService
}

func NewFavoriteHandler(db *database.DB) *FavoriteHandler {
	return &FavoriteHandler{
		service: services.NewFavoriteService(db),
	}
}

func SetupFavoriteRoutes(router fiber.Router, db *database.DB) {
	h := NewFavoriteHandler(db)

	router.Get("/", h.List)
	router.Post("/:slug", h.Add)
	router.Delete("/:slug", h.Remove)
}

// List godoc
// @Summary List the current user's favorite gyms
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Favorite
// @Router /users/me/favorites [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	favorites, err := h.service.List(c.Context(), userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(favorites)
}

// Add godoc
// @Summary Bookmark a gym
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Gym slug"
// @Success 201 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /users/me/favorites/{slug} [post]
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := h.service.Add(c.Context(), userID, c.Params("slug")); err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "added"})
}

// Remove godoc
// @Summary Remove a bookmark
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Gym slug"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /users/me/favorites/{slug} [delete]
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := h.service.Remove(c.Context(), userID, c.Params("slug")); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{"status": "removed"})
}
