package user

import (
	"context"
	"errors"

	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/password"
)

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// ChangePassword verifies the current password and stores the new one. The
// row is locked for the whole check-then-write so concurrent changes cannot
// interleave.
func (s *Service) ChangePassword(ctx context.Context, id int64, in ChangePasswordInput) error {
	if len(in.NewPassword) < MinPasswordLength {
		return apperr.Invalid("password must be at least 6 characters")
	}

	err := s.users.WithinTx(ctx, func(r user.Repository) error {
		current, err := r.GetByIDForUpdate(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}

		if err := password.Verify(current.PasswordHash, in.CurrentPassword); err != nil {
			if errors.Is(err, password.ErrMismatch) {
				return apperr.Unauthorized("current password is incorrect")
			}
			return apperr.Internal(err)
		}
		if in.NewPassword != in.ConfirmNewPassword {
			return apperr.Unauthorized("new password confirmation does not match")
		}

		hash, err := password.Hash(in.NewPassword)
		if err != nil {
			return apperr.Internal(err)
		}
		if _, err := r.Update(ctx, id, user.Changes{PasswordHash: &hash}); err != nil {
			return mapNotFound(err)
		}
		return nil
	})
	if err != nil {
		if apperr.Is(err, apperr.KindUnauthorized) {
			s.logger.Warn("password change rejected", "user_id", id, "reason", err.Error())
		}
		return err
	}

	s.logger.Info("password changed", "user_id", id)
	events.Emit(ctx, s.events, s.logger, events.New(events.UserPasswordChanged, id, nil))
	return nil
}
