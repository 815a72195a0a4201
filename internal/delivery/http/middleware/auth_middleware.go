package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	ucauth "github.com/gilsonricardopeloso/devretain/internal/usecase/auth"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "user_id"
	CtxEmailKey     = "email"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (ucauth.Principal, error)
}

type AuthMiddleware struct {
	authn  Authenticator
	logger *logger.Logger
}

func NewAuthMiddleware(authn Authenticator, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{authn: authn, logger: log}
}

// Middleware resolves the caller from the bearer token. Websocket upgrades
// may pass the token as the "token" query parameter instead, since browsers
// cannot set headers on them.
func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := bearerTokenFromHeader(c.Get("Authorization"))
		if !ok && isWebSocketUpgrade(c) {
			token = strings.TrimSpace(c.Query("token"))
		}

		p, err := m.authn.Authenticate(c.Context(), token)
		if err != nil {
			if apperr.Is(err, apperr.KindUnauthorized) {
				m.logger.Warn("authentication failed", "path", c.Path(), "ip", c.IP(), "reason", err.Error())
			} else {
				m.logger.Error("authentication error", "path", c.Path(), "error", err)
			}
			return err
		}

		m.logger.Info("authenticated", "user_id", p.User.ID, "email", p.User.Email, "role", string(p.User.Role))
		c.Locals(CtxPrincipalKey, p)
		c.Locals(CtxUserIDKey, p.User.ID)
		c.Locals(CtxEmailKey, p.User.Email)

		return c.Next()
	}
}

func PrincipalFrom(c fiber.Ctx) (ucauth.Principal, bool) {
	p, ok := c.Locals(CtxPrincipalKey).(ucauth.Principal)
	return p, ok
}

// CurrentUser returns the authenticated user or an Unauthorized error when
// the route was mounted without the auth middleware.
func CurrentUser(c fiber.Ctx) (user.User, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return user.User{}, apperr.Unauthorized("authentication required")
	}
	return p.User, nil
}

func isWebSocketUpgrade(c fiber.Ctx) bool {
	return strings.EqualFold(c.Get("Upgrade"), "websocket")
}

func bearerTokenFromHeader(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
