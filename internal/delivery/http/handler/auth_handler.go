package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/dto"
	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/middleware"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/jwt"
	ucauth "github.com/gilsonricardopeloso/devretain/internal/usecase/auth"
)

type AuthService interface {
	Login(ctx context.Context, in ucauth.LoginInput) (ucauth.LoginResult, error)
	Logout(ctx context.Context, claims jwt.Claims) error
}

type AuthHandler struct {
	svc AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterPublicRoutes mounts the endpoints reachable without a token.
func (h *AuthHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/login", h.Login)
}

func (h *AuthHandler) RegisterRoutes(r fiber.Router, roles *middleware.RoleMiddleware) {
	if r == nil {
		return
	}
	r.Post("/logout", roles.Require(access.AuthLogout), h.Logout)
}

func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.svc.Login(c.Context(), ucauth.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}

	return ok(c, dto.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.ExpiresAt,
		User:        dto.NewUserResponse(res.User),
	})
}

func (h *AuthHandler) Logout(c fiber.Ctx) error {
	p, found := middleware.PrincipalFrom(c)
	if !found {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	if err := h.svc.Logout(c.Context(), p.Claims); err != nil {
		return err
	}
	return ok(c, nil)
}
