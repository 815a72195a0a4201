package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/jwt"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/password"
)

// Denylist holds revoked token ids until the tokens would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ActivityThrottle limits how often a user's last activity is written.
type ActivityThrottle interface {
	Allow(ctx context.Context, userID int64) bool
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        user.User
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	User   user.User
	Claims jwt.Claims
}

type Service struct {
	users    user.Repository
	tokens   jwt.Service
	denylist Denylist
	throttle ActivityThrottle
	logger   *logger.Logger

	now func() time.Time
}

func NewService(users user.Repository, tokens jwt.Service, denylist Denylist, throttle ActivityThrottle, log *logger.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
		throttle: throttle,
		logger:   log,
		now:      time.Now,
	}
}

func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("login failed", "email", email, "reason", "unknown email")
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, apperr.Internal(err)
	}

	if err := password.Verify(u.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.logger.Warn("login failed", "email", email, "reason", "bad password")
			return LoginResult{}, apperr.Unauthorized("invalid credentials")
		}
		return LoginResult{}, apperr.Internal(err)
	}
	if !u.IsActive {
		s.logger.Warn("login failed", "email", email, "reason", "inactive")
		return LoginResult{}, apperr.Unauthorized("invalid credentials")
	}

	tok, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return LoginResult{}, apperr.Internal(err)
	}

	at := s.now().UTC()
	if err := s.users.TouchLastActivity(ctx, u.ID, at); err != nil {
		s.logger.Warn("last activity update failed", "user_id", u.ID, "error", err)
	} else {
		u.LastActivityAt = &at
	}

	s.logger.Info("login succeeded", "user_id", u.ID, "email", u.Email, "role", string(u.Role))
	return LoginResult{AccessToken: tok.Value, ExpiresAt: tok.ExpiresAt, User: u.Sanitized()}, nil
}

// Authenticate verifies the bearer token and re-reads the user so that deleted
// or deactivated accounts lose access before their token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperr.Unauthorized("missing bearer token")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, apperr.New(apperr.KindUnauthorized, "token expired", err)
		}
		return Principal{}, apperr.New(apperr.KindUnauthorized, "invalid token", err)
	}

	if s.denylist != nil && claims.TokenID() != "" {
		revoked, err := s.denylist.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			s.logger.Warn("token denylist unavailable", "error", err)
		}
		if revoked {
			s.logger.Warn("authentication rejected", "user_id", claims.UserID, "email", claims.Email, "reason", "token revoked")
			return Principal{}, apperr.Unauthorized("token revoked")
		}
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("authentication rejected", "user_id", claims.UserID, "email", claims.Email, "reason", "user not found")
			return Principal{}, apperr.Unauthorized("user not found or inactive")
		}
		return Principal{}, apperr.Internal(err)
	}
	if !u.IsActive {
		s.logger.Warn("authentication rejected", "user_id", u.ID, "email", u.Email, "role", string(u.Role), "reason", "inactive")
		return Principal{}, apperr.Unauthorized("user not found or inactive")
	}

	s.recordActivity(ctx, &u)
	return Principal{User: u.Sanitized(), Claims: claims}, nil
}

// Logout revokes the token described by claims for the rest of its lifetime.
func (s *Service) Logout(ctx context.Context, claims jwt.Claims) error {
	if s.denylist == nil || claims.TokenID() == "" {
		return nil
	}
	ttl := claims.ExpiresAtTime().Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.TokenID(), ttl); err != nil {
		return apperr.Internal(err)
	}
	s.logger.Info("token revoked", "user_id", claims.UserID, "email", claims.Email)
	return nil
}

func (s *Service) recordActivity(ctx context.Context, u *user.User) {
	if s.throttle == nil || !s.throttle.Allow(ctx, u.ID) {
		return
	}
	at := s.now().UTC()
	if err := s.users.TouchLastActivity(ctx, u.ID, at); err != nil {
		s.logger.Warn("last activity update failed", "user_id", u.ID, "error", err)
		return
	}
	u.LastActivityAt = &at
}
