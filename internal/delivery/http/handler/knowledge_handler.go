package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/dto"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/response"
	ucknowledge "github.com/gilsonricardopeloso/devretain/internal/usecase/knowledge"
)

type KnowledgeService interface {
	ListAreas(ctx context.Context) ([]knowledge.Area, error)
	CreateArea(ctx context.Context, in ucknowledge.CreateAreaInput) (knowledge.Area, error)
	ReportProficiency(ctx context.Context, userID, areaID int64, level int) (knowledge.UserArea, error)
	AssignOwner(ctx context.Context, areaID int64, in ucknowledge.AssignOwnerInput) (knowledge.UserArea, error)
}

type KnowledgeHandler struct {
	svc KnowledgeService
}

type createAreaRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type reportProficiencyRequest struct {
	KnowledgeAreaID int64 `json:"knowledgeAreaId"`
	Level           int   `json:"level"`
}

type assignOwnerRequest struct {
	UserID             int64 `json:"userId"`
	Level              int   `json:"level"`
	VulnerabilityScore *int  `json:"vulnerabilityScore"`
}

func NewKnowledgeHandler(svc KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

func (h *KnowledgeHandler) RegisterRoutes(r fiber.Router, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}
	r.Get("", roles.Require(access.KnowledgeAreaList), h.List)
	r.Post("", roles.Require(access.KnowledgeAreaCreate), h.Create)
	r.Post("/:id/owners", roles.Require(access.KnowledgeAreaAssignOwner), h.AssignOwner)
}

// RegisterUserRoutes mounts the self-report endpoint under /users.
func (h *KnowledgeHandler) RegisterUserRoutes(r fiber.Router, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}
	r.Post("/me/knowledge-areas", roles.Require(access.UserReportKnowledge), h.ReportProficiency)
}

func (h *KnowledgeHandler) List(c fiber.Ctx) error {
	areas, err := h.svc.ListAreas(c.Context())
	if err != nil {
		return err
	}
	return ok(c, dto.NewKnowledgeAreaListResponse(areas))
}

func (h *KnowledgeHandler) Create(c fiber.Ctx) error {
	var req createAreaRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	area, err := h.svc.CreateArea(c.Context(), ucknowledge.CreateAreaInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewKnowledgeAreaResponse(area))
}

func (h *KnowledgeHandler) ReportProficiency(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req reportProficiencyRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.KnowledgeAreaID <= 0 {
		return apperr.Invalid("knowledgeAreaId is required")
	}
	ua, err := h.svc.ReportProficiency(c.Context(), me.ID, req.KnowledgeAreaID, req.Level)
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewUserKnowledgeAreaResponse(ua))
}

func (h *KnowledgeHandler) AssignOwner(c fiber.Ctx) error {
	areaID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req assignOwnerRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.UserID <= 0 {
		return apperr.Invalid("userId is required")
	}
	ua, err := h.svc.AssignOwner(c.Context(), areaID, ucknowledge.AssignOwnerInput{
		UserID:             req.UserID,
		Level:              req.Level,
		VulnerabilityScore: req.VulnerabilityScore,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewUserKnowledgeAreaResponse(ua))
}
