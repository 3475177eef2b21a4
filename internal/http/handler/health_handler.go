package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthDeps groups the connections probed by the health endpoint.
type HealthDeps struct {
	Postgres *pgxpool.Pool
	Redis    *redis.Client
}

// HealthHandler reports process liveness and dependency reachability.
type HealthHandler struct {
	deps HealthDeps
}

// NewHealthHandler creates a health handler with the provided dependencies.
func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Register wires health routes onto the provided router.
func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
}

// Health handles GET /health. The cache being down degrades latency, not
// correctness, so it never fails the overall status on its own.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx := c.Context()

	status := "ok"
	postgres := "ok"
	cache := "ok"

	if h.deps.Postgres != nil {
		if err := h.deps.Postgres.Ping(ctx); err != nil {
			postgres = "unreachable"
			status = "degraded"
		}
	}
	if h.deps.Redis != nil {
		if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
			cache = "unreachable"
		}
	}

	return c.JSON(fiber.Map{
		"service":  "SnapURL",
		"status":   status,
		"postgres": postgres,
		"cache":    cache,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
