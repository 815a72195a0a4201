package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/dto"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/usecase/dashboard"
)

type DashboardService interface {
	GetAdminDashboardData(ctx context.Context) (dashboard.Data, error)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(r fiber.Router, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}
	r.Get("/admin-data", roles.Require(access.DashboardAdminData), h.AdminData)
}

func (h *DashboardHandler) AdminData(c fiber.Ctx) error {
	data, err := h.svc.GetAdminDashboardData(c.Context())
	if err != nil {
		return err
	}
	return ok(c, dto.NewAdminDashboardResponse(data))
}
