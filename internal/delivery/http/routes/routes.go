package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/handler"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	v1 "github.com/gilsonricardopeloso/devretain/internal/delivery/http/routes/v1"
)

type Registry struct {
	health *handler.HealthHandler
	v1     v1.Handlers
	authMw *middleware.AuthMiddleware
	roles  *middleware.RoleMiddleware
}

func NewRegistry(health *handler.HealthHandler, handlers v1.Handlers, authMw *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) *Registry {
	return &Registry{health: health, v1: handlers, authMw: authMw, roles: roles}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health != nil {
		r.health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	v1.Register(api.Group("/v1"), r.v1, r.authMw, r.roles)
}
