package handler

import (
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
)

// HealthHandler reports service and dependency liveness
type HealthHandler struct {
	db    *sqlx.DB
	cache domain.Cache
}

// NewHealthHandler creates a new HealthHandler. cache may be nil when the
// service runs without Redis.
func NewHealthHandler(db *sqlx.DB, cache domain.Cache) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health godoc
// @Summary Service health
// @Description Reports database and cache connectivity
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := dto.HealthResponse{Status: "ok", Database: "ok"}

	if err := h.db.PingContext(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}

	if h.cache != nil {
		resp.Redis = "ok"
		if err := h.cache.Ping(c.Context()); err != nil {
			resp.Status = "degraded"
			resp.Redis = "unreachable"
		}
	}

	return c.JSON(resp)
}

// Root godoc
// @Summary Service banner
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "AI Wiki Quiz Generator API"})
}
