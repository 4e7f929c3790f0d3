package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pavelkonansro/AIc/internal/ai"
)

type HealthHandler struct {
	pool     *pgxpool.Pool
	provider ai.Provider
}

func NewHealthHandler(pool *pgxpool.Pool, provider ai.Provider) *HealthHandler {
	return &HealthHandler{pool: pool, provider: provider}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		return c.Status(503).JSON(fiber.Map{"status": "not ready", "error": "database unreachable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// AIHealth reports the upstream AI provider's reachability.
// GET /api/v1/ai/health
func (h *HealthHandler) AIHealth(c *fiber.Ctx) error {
	health, err := h.provider.HealthCheck(c.Context())
	if err != nil {
		return c.Status(503).JSON(fiber.Map{"isHealthy": false, "error": err.Error()})
	}
	return c.JSON(health)
}
