package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/dto"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/response"
	useruc "github.com/gilsonricardopeloso/devretain/internal/usecase/user"
)

type UserService interface {
	Create(ctx context.Context, in useruc.CreateInput) (user.User, error)
	FindAll(ctx context.Context) ([]user.User, error)
	FindByID(ctx context.Context, id int64) (user.User, error)
	Update(ctx context.Context, id int64, in useruc.UpdateInput) (user.User, error)
	Remove(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, active bool) (user.User, error)
	SearchUsers(ctx context.Context, query string) ([]user.User, error)
	FindAllWithPagination(ctx context.Context, page, limit int) (useruc.Page, error)
	FindInactiveUsers(ctx context.Context, days int) ([]user.User, error)
	ChangePassword(ctx context.Context, id int64, in useruc.ChangePasswordInput) error
	GetProfile(ctx context.Context, id int64) (useruc.Profile, error)
	GetPreferences(ctx context.Context, id int64) (user.Preferences, error)
	UpdatePreferences(ctx context.Context, id int64, p user.Preferences) (user.Preferences, error)
	AddMilestone(ctx context.Context, userID int64, m milestone.Milestone) (milestone.Milestone, error)
}

type UserHandler struct {
	svc UserService
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive"`
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type updateStatusRequest struct {
	IsActive *bool `json:"isActive"`
}

type changePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

type preferencesRequest struct {
	Notifications *bool  `json:"notifications"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
}

type milestoneRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	PlannedDate string `json:"plannedDate"`
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// RegisterRoutes mounts /users. Static segments go before /:id.
func (h *UserHandler) RegisterRoutes(r fiber.Router, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}

	r.Get("/profile", roles.Require(access.UserProfile), h.GetProfile)
	r.Get("/preferences", roles.Require(access.UserGetPreferences), h.GetPreferences)
	r.Patch("/preferences", roles.Require(access.UserUpdatePreferences), h.UpdatePreferences)
	r.Post("/change-password", roles.Require(access.UserChangePassword), h.ChangePassword)
	r.Post("/me/milestones", roles.Require(access.UserAddMilestone), h.AddMilestone)

	r.Post("", roles.Require(access.UserCreate), h.Create)
	r.Get("", roles.Require(access.UserList), h.FindAll)
	r.Get("/paginated", roles.Require(access.UserListPage), h.FindPage)
	r.Get("/search", roles.Require(access.UserSearch), h.Search)
	r.Get("/inactive", roles.Require(access.UserListInactive), h.FindInactive)
	r.Get("/:id", roles.Require(access.UserGet), h.FindByID)
	r.Patch("/:id", roles.Require(access.UserUpdate), h.Update)
	r.Delete("/:id", roles.Require(access.UserDelete), h.Remove)
	r.Patch("/:id/status", roles.Require(access.UserUpdateStatus), h.UpdateStatus)
}

func (h *UserHandler) GetProfile(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	prof, err := h.svc.GetProfile(c.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, dto.NewProfileResponse(prof))
}

func (h *UserHandler) GetPreferences(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	prefs, err := h.svc.GetPreferences(c.Context(), me.ID)
	if err != nil {
		return err
	}
	return ok(c, dto.NewPreferencesResponse(prefs))
}

func (h *UserHandler) UpdatePreferences(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req preferencesRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Notifications == nil {
		return apperr.Invalid("notifications is required")
	}

	prefs, err := h.svc.UpdatePreferences(c.Context(), me.ID, user.Preferences{
		Notifications: *req.Notifications,
		Theme:         user.Theme(req.Theme),
		Language:      user.Language(req.Language),
	})
	if err != nil {
		return err
	}
	return ok(c, dto.NewPreferencesResponse(prefs))
}

func (h *UserHandler) ChangePassword(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.svc.ChangePassword(c.Context(), me.ID, useruc.ChangePasswordInput{
		CurrentPassword:    req.CurrentPassword,
		NewPassword:        req.NewPassword,
		ConfirmNewPassword: req.ConfirmNewPassword,
	}); err != nil {
		return err
	}
	return ok(c, nil)
}

func (h *UserHandler) AddMilestone(c fiber.Ctx) error {
	me, err := middleware.CurrentUser(c)
	if err != nil {
		return err
	}
	var req milestoneRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		return err
	}
	planned, err := parseDate(req.PlannedDate, "plannedDate")
	if err != nil {
		return err
	}

	m, err := h.svc.AddMilestone(c.Context(), me.ID, milestone.Milestone{
		Title:       req.Title,
		Description: req.Description,
		Status:      milestone.Status(req.Status),
		Date:        date,
		PlannedDate: planned,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewMilestoneResponse(m))
}

func (h *UserHandler) Create(c fiber.Ctx) error {
	var req createUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Create(c.Context(), useruc.CreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return response.Created(c, dto.NewUserResponse(u))
}

func (h *UserHandler) FindAll(c fiber.Ctx) error {
	users, err := h.svc.FindAll(c.Context())
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserListResponse(users))
}

func (h *UserHandler) FindPage(c fiber.Ctx) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit", useruc.DefaultPageLimit)
	if err != nil {
		return err
	}
	p, err := h.svc.FindAllWithPagination(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return ok(c, dto.UserPageResponse{
		Users: dto.NewUserListResponse(p.Items),
		Total: p.Total,
		Page:  p.Page,
		Limit: p.Limit,
	})
}

func (h *UserHandler) Search(c fiber.Ctx) error {
	users, err := h.svc.SearchUsers(c.Context(), c.Query("q"))
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserListResponse(users))
}

func (h *UserHandler) FindInactive(c fiber.Ctx) error {
	days, err := queryInt(c, "days", 30)
	if err != nil {
		return err
	}
	users, err := h.svc.FindInactiveUsers(c.Context(), days)
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserListResponse(users))
}

func (h *UserHandler) FindByID(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	u, err := h.svc.FindByID(c.Context(), id)
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserResponse(u))
}

func (h *UserHandler) Update(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	u, err := h.svc.Update(c.Context(), id, useruc.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserResponse(u))
}

func (h *UserHandler) Remove(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Remove(c.Context(), id); err != nil {
		return err
	}
	return response.Success(c, fiber.StatusOK, response.MessageDeleted, nil)
}

func (h *UserHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return apperr.Invalid("isActive is required")
	}
	u, err := h.svc.UpdateStatus(c.Context(), id, *req.IsActive)
	if err != nil {
		return err
	}
	return ok(c, dto.NewUserResponse(u))
}

// parseDate accepts YYYY-MM-DD or RFC 3339. Empty input yields nil.
func parseDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Invalid(field + " must be a date (YYYY-MM-DD)")
}
