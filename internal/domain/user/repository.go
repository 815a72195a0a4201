package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Changes holds the columns an update touches; nil fields are left alone.
type Changes struct {
	Name         *string
	Email        *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil && c.Role == nil && c.IsActive == nil
}

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	ListPage(ctx context.Context, limit, offset int) ([]User, int64, error)
	SearchByName(ctx context.Context, query string) ([]User, error)
	ListInactiveSince(ctx context.Context, cutoff time.Time) ([]User, error)
	Update(ctx context.Context, id int64, c Changes) (User, error)
	SetPreferences(ctx context.Context, id int64, p Preferences) (User, error)
	TouchLastActivity(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error

	// WithinTx runs fn against a repository bound to a single transaction.
	WithinTx(ctx context.Context, fn func(r Repository) error) error
}
