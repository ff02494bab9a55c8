package handlers

import (
	"strconv"
	"strings"

	"github.com/Gosshi/gym-equipment-directory-sub001/internal/config"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/database"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/middleware"
	"github.com/Gosshi/gym-equipment-directory-sub001/internal/services"
	"github.com/gofiber/fiber/v2"
)

type GymHandler struct {
	search *services.SearchService
	gyms   *services.GymService
}

func NewGymHandler(db *database.DB, cfg *config.Config) *GymHandler {
	return &GymHandler{
		search: services.NewSearchService(db, cfg),
		gyms:   services.NewGymService(db),
	}
}

func SetupGymRoutes(router fiber.Router, db *database.DB, cfg *config.Config) {
	h := NewGymHandler(db, cfg)

	router.Get("/", h.Search)
	router.Get("/:slug", h.Get)
	router.Post("/:slug/reports", middleware.OptionalAuth(cfg), h.Report)
}

// Search godoc
// @Summary Search gyms
// @Description Searches the gym directory by region, geography, equipment and free text
// @Tags gyms
// @Accept json
// @Produce json
// @Param pref query string false "Prefecture slug (lower-case)"
// @Param city query string false "City slug (lower-case)"
// @Param q query string false "Free-text query"
// @Param lat query number false "Center latitude"
// @Param lng query number false "Center longitude"
// @Param radius_km query number false "Radius in km (requires lat/lng)"
// @Param min_lat query number false "Bounding box south edge"
// @Param max_lat query number false "Bounding box north edge"
// @Param min_lng query number false "Bounding box west edge"
// @Param max_lng query number false "Bounding box east edge"
// @Param equipments query string false "Comma-separated equipment slugs"
// @Param equipment_match query string false "all or any (default any)"
// @Param sort query string false "distance|gym_name|created_at|score|freshness|richness"
// @Param include query string false "score to force score computation"
// @Param page query int false "Page number (offset paging)"
// @Param page_size query int false "Items per page (max 50)"
// @Param page_token query string false "Opaque cursor (keyset paging)"
// @Success 200 {object} services.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /gyms [get]
func (h *GymHandler) Search(c *fiber.Ctx) error {
	criteria, err := parseSearchCriteria(c)
	if err != nil {
		return serviceError(c, err)
	}

	response, err := h.search.Search(c.Context(), criteria)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(response)
}

// parseSearchCriteria converts raw query parameters into SearchCriteria.
// Unparseable numbers are schema-level failures; semantic consistency is
// checked by the service.
func parseSearchCriteria(c *fiber.Ctx) (*services.SearchCriteria, error) {
	criteria := &services.SearchCriteria{
		Pref:           c.Query("pref"),
		City:           c.Query("city"),
		Query:          c.Query("q"),
		EquipmentMatch: c.Query("equipment_match"),
		Sort:           c.Query("sort"),
		PageToken:      c.Query("page_token"),
	}

	var err error
	if criteria.Lat, err = queryFloat(c, "lat"); err != nil {
		return nil, err
	}
	if criteria.Lng, err = queryFloat(c, "lng"); err != nil {
		return nil, err
	}
	if criteria.RadiusKm, err = queryFloat(c, "radius_km"); err != nil {
		return nil, err
	}
	if criteria.Bounds.MinLat, err = queryFloat(c, "min_lat"); err != nil {
		return nil, err
	}
	if criteria.Bounds.MaxLat, err = queryFloat(c, "max_lat"); err != nil {
		return nil, err
	}
	if criteria.Bounds.MinLng, err = queryFloat(c, "min_lng"); err != nil {
		return nil, err
	}
	if criteria.Bounds.MaxLng, err = queryFloat(c, "max_lng"); err != nil {
		return nil, err
	}

	// equipments is a comma-separated slug list; supplying the parameter with
	// no usable slug is a client error, not an empty filter
	if raw, ok := queryPresent(c, "equipments"); ok {
		for _, slug := range strings.Split(raw, ",") {
			slug = strings.TrimSpace(slug)
			if slug != "" {
				criteria.Equipments = append(criteria.Equipments, slug)
			}
		}
		if len(criteria.Equipments) == 0 {
			return nil, &services.ValidationError{
				Field:   "equipments",
				Message: "must be a non-empty list of slugs",
			}
		}
	}

	if criteria.Page, err = queryInt(c, "page"); err != nil {
		return nil, err
	}
	// per_page is a mobile-client alias for page_size
	if criteria.PageSize, err = queryInt(c, "page_size"); err != nil {
		return nil, err
	}
	if criteria.PageSize == 0 {
		if criteria.PageSize, err = queryInt(c, "per_page"); err != nil {
			return nil, err
		}
	}

	if c.Query("include") == "score" {
		criteria.IncludeScore = true
	}

	return criteria, nil
}

func queryPresent(c *fiber.Ctx, key string) (string, bool) {
	if !c.Request().URI().QueryArgs().Has(key) {
		return "", false
	}
	return c.Query(key), true
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &services.ValidationError{
			Field:   key,
			Message: "must be a number",
			Schema:  true,
		}
	}
	return &value, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, &services.ValidationError{
			Field:   key,
			Message: "must be a positive integer",
		}
	}
	return value, nil
}

// Get godoc
// @Summary Get gym by slug
// @Tags gyms
// @Accept json
// @Produce json
// @Param slug path string true "Gym slug"
// @Success 200 {object} models.Gym
// @Failure 404 {object} ErrorResponse
// @Router /gyms/{slug} [get]
func (h *GymHandler) Get(c *fiber.Ctx) error {
	gym, err := h.gyms.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(gym)
}

// ReportRequest is the body for submitting a gym data issue
type ReportRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Report godoc
// @Summary Report a data issue for a gym
// @Tags gyms
// @Accept json
// @Produce json
// @Param slug path string true "Gym slug"
// @Param request body ReportRequest true "Report content"
// @Success 201 {object} models.GymReport
// @Failure 404 {object} ErrorResponse
// @Router /gyms/{slug}/reports [post]
func (h *GymHandler) Report(c *fiber.Ctx) error {
	var req ReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "message is required", Detail: "message"})
	}
	if req.Type == "" {
		req.Type = "other"
	}

	var userID *uint
	if id, ok := c.Locals("userID").(uint); ok {
		userID = &id
	}

	report, err := h.gyms.CreateReport(c.Context(), c.Params("slug"), userID, req.Type, req.Message)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}
