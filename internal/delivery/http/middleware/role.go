package middleware

import (
	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/delivery/http/access"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
)

type RoleMiddleware struct {
	policy access.Policy
	logger *logger.Logger
}

func NewRoleMiddleware(policy access.Policy, log *logger.Logger) *RoleMiddleware {
	if policy == nil {
		policy = access.Policy{}
	}
	return &RoleMiddleware{policy: policy, logger: log}
}

// Require must run after the auth middleware.
func (m *RoleMiddleware) Require(op access.Operation) fiber.Handler {
	return func(c fiber.Ctx) error {
		required := m.policy.Required(op)
		if len(required) == 0 {
			return c.Next()
		}

		u, err := CurrentUser(c)
		if err != nil {
			return err
		}
		if !m.policy.Allows(op, u.Role) {
			m.logger.Warn("access denied", "operation", string(op), "user_id", u.ID, "email", u.Email, "role", string(u.Role), "required", required)
			return apperr.Forbidden("insufficient role")
		}

		m.logger.Info("access granted", "operation", string(op), "user_id", u.ID, "email", u.Email, "role", string(u.Role))
		return c.Next()
	}
}
