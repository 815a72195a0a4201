package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/password"
)

const (
	MinPasswordLength = 6
	DefaultPageLimit  = 10
	MaxPageLimit      = 100
)

// CacheInvalidator drops derived views that embed user data.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	IsActive *bool
}

type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
	IsActive *bool
}

type Page struct {
	Items []user.User
	Total int64
	Page  int
	Limit int
}

type Service struct {
	users      user.Repository
	areas      knowledge.UserAreaRepository
	milestones milestone.Repository
	events     events.Publisher
	cache      CacheInvalidator
	logger     *logger.Logger

	now func() time.Time
}

func NewService(
	users user.Repository,
	areas knowledge.UserAreaRepository,
	milestones milestone.Repository,
	publisher events.Publisher,
	cache CacheInvalidator,
	log *logger.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		users:      users,
		areas:      areas,
		milestones: milestones,
		events:     publisher,
		cache:      cache,
		logger:     log,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (user.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return user.User{}, apperr.Invalid("name is required")
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return user.User{}, err
	}
	if len(in.Password) < MinPasswordLength {
		return user.User{}, apperr.Invalid("password must be at least 6 characters")
	}
	role := user.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		role = user.Role(strings.TrimSpace(in.Role))
		if !role.Valid() {
			return user.User{}, apperr.Invalid("role must be admin or user")
		}
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return user.User{}, apperr.Internal(err)
	}

	created, err := s.users.Create(ctx, user.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
		Preferences:  user.DefaultPreferences(),
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, apperr.New(apperr.KindConflict, "email already registered", err)
		}
		return user.User{}, apperr.Internal(err)
	}

	s.logger.Info("user created", "user_id", created.ID, "email", created.Email, "role", string(created.Role))
	events.Emit(ctx, s.events, s.logger, events.New(events.UserCreated, created.ID, map[string]any{
		"email": created.Email,
		"role":  created.Role,
	}))
	return created.Sanitized(), nil
}

func (s *Service) FindAll(ctx context.Context) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user.SanitizeAll(users), nil
}

func (s *Service) FindByID(ctx context.Context, id int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, mapNotFound(err)
	}
	return u.Sanitized(), nil
}

// FindByEmail returns nil without error when no user has the address. The
// returned user carries the password hash and must not leave the process.
func (s *Service) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, nil
	}
	u, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, apperr.Internal(err)
	}
	return &u, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (user.User, error) {
	var c user.Changes

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return user.User{}, apperr.Invalid("name is required")
		}
		c.Name = &name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return user.User{}, err
		}
		c.Email = &email
	}
	if in.Password != nil {
		if len(*in.Password) < MinPasswordLength {
			return user.User{}, apperr.Invalid("password must be at least 6 characters")
		}
		hash, err := password.Hash(*in.Password)
		if err != nil {
			return user.User{}, apperr.Internal(err)
		}
		c.PasswordHash = &hash
	}
	if in.Role != nil {
		role := user.Role(strings.TrimSpace(*in.Role))
		if !role.Valid() {
			return user.User{}, apperr.Invalid("role must be admin or user")
		}
		c.Role = &role
	}
	c.IsActive = in.IsActive

	var updated user.User
	err := s.users.WithinTx(ctx, func(r user.Repository) error {
		current, err := r.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if c.IsActive != nil && !*c.IsActive && current.IsAdmin() {
			return apperr.Forbidden("admin users cannot be deactivated")
		}
		updated, err = r.Update(ctx, id, c)
		if err != nil {
			if errors.Is(err, user.ErrEmailTaken) {
				return apperr.New(apperr.KindConflict, "email already registered", err)
			}
			return mapNotFound(err)
		}
		return nil
	})
	if err != nil {
		return user.User{}, err
	}

	s.invalidate(ctx)
	events.Emit(ctx, s.events, s.logger, events.New(events.UserUpdated, updated.ID, nil))
	return updated.Sanitized(), nil
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}

	s.logger.Info("user deleted", "user_id", id)
	s.invalidate(ctx)
	events.Emit(ctx, s.events, s.logger, events.New(events.UserDeleted, id, nil))
	return nil
}

// UpdateStatus activates or deactivates a user. Admins cannot be deactivated.
func (s *Service) UpdateStatus(ctx context.Context, id int64, active bool) (user.User, error) {
	var updated user.User
	err := s.users.WithinTx(ctx, func(r user.Repository) error {
		current, err := r.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if !active && current.IsAdmin() {
			return apperr.Forbidden("admin users cannot be deactivated")
		}
		updated, err = r.Update(ctx, id, user.Changes{IsActive: &active})
		if err != nil {
			return mapNotFound(err)
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindForbidden) {
			s.logger.Warn("refused to deactivate admin", "user_id", id)
		}
		return user.User{}, err
	}

	s.logger.Info("user status changed", "user_id", id, "is_active", active)
	s.invalidate(ctx)
	events.Emit(ctx, s.events, s.logger, events.New(events.UserStatusChanged, id, map[string]any{"isActive": active}))
	return updated.Sanitized(), nil
}

func (s *Service) SearchUsers(ctx context.Context, query string) ([]user.User, error) {
	users, err := s.users.SearchByName(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user.SanitizeAll(users), nil
}

func (s *Service) FindAllWithPagination(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		return Page{}, apperr.Invalid("page must be at least 1")
	}
	if limit < 1 || limit > MaxPageLimit {
		return Page{}, apperr.Invalid("limit must be between 1 and 100")
	}

	items, total, err := s.users.ListPage(ctx, limit, (page-1)*limit)
	if err != nil {
		return Page{}, apperr.Internal(err)
	}
	return Page{Items: user.SanitizeAll(items), Total: total, Page: page, Limit: limit}, nil
}

// FindInactiveUsers lists active users whose last activity is older than the
// given number of days. Users that never recorded activity are measured from
// their creation time.
func (s *Service) FindInactiveUsers(ctx context.Context, days int) ([]user.User, error) {
	if days < 1 {
		return nil, apperr.Invalid("days must be at least 1")
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)
	users, err := s.users.ListInactiveSince(ctx, cutoff)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return user.SanitizeAll(users), nil
}

func (s *Service) UpdateLastActivity(ctx context.Context, id int64) error {
	if err := s.users.TouchLastActivity(ctx, id, s.now().UTC()); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", apperr.Invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Invalid("email is invalid")
	}
	return email, nil
}

func mapNotFound(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if errors.Is(err, user.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "user not found", err)
	}
	return apperr.Internal(err)
}
