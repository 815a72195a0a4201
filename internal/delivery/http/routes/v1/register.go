package v1

import (
	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/handler"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/ws"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UserHandler
	Knowledge *handler.KnowledgeHandler
	Dashboard *handler.DashboardHandler
	WS        *ws.Handler
}

// Register mounts every /api/v1 route. Only login is reachable without a
// bearer token. Authentication is attached per prefix so unknown paths fall
// through to 404 instead of being answered with 401.
func Register(r fiber.Router, h Handlers, authMw *middleware.AuthMiddleware, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}

	authn := authMw.Middleware()

	if h.Auth != nil {
		authGroup := r.Group("/auth")
		h.Auth.RegisterPublicRoutes(authGroup)
		h.Auth.RegisterRoutes(authGroup.Group("", authn), roles)
	}

	if h.Knowledge != nil || h.Users != nil {
		usersGroup := r.Group("/users", authn)
		if h.Knowledge != nil {
			h.Knowledge.RegisterUserRoutes(usersGroup, roles)
		}
		if h.Users != nil {
			h.Users.RegisterRoutes(usersGroup, roles)
		}
	}

	if h.Knowledge != nil {
		h.Knowledge.RegisterRoutes(r.Group("/knowledge-areas", authn), roles)
	}
	if h.Dashboard != nil {
		h.Dashboard.RegisterRoutes(r.Group("/dashboard", authn), roles)
	}
	if h.WS != nil {
		h.WS.RegisterRoutes(r.Group("/ws", authn), roles)
	}
}
