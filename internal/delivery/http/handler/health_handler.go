package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the database as required and Redis as optional.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

type healthResponse struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func NewHealthHandler(db Pinger, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{Database: "up", Cache: "up"}
	if h.cache == nil || h.cache.Ping(ctx) != nil {
		res.Cache = "unavailable"
	}
	if h.db == nil || h.db.Ping(ctx) != nil {
		res.Database = "down"
		return response.Error(c, fiber.StatusServiceUnavailable, response.MessageServiceUnavailable, res)
	}
	return ok(c, res)
}
