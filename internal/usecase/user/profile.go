package user

import (
	"context"
	"errors"
	"strings"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
)

type Profile struct {
	User           user.User
	KnowledgeAreas []knowledge.UserArea
	Milestones     []milestone.Milestone
}

func (s *Service) GetProfile(ctx context.Context, id int64) (Profile, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return Profile{}, mapNotFound(err)
	}

	areas, err := s.areas.ListByUser(ctx, id)
	if err != nil {
		return Profile{}, apperr.Internal(err)
	}
	ms, err := s.milestones.ListByUser(ctx, id)
	if err != nil {
		return Profile{}, apperr.Internal(err)
	}
	milestone.SortByRelevance(ms)

	return Profile{User: u.Sanitized(), KnowledgeAreas: areas, Milestones: ms}, nil
}

func (s *Service) GetPreferences(ctx context.Context, id int64) (user.Preferences, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.Preferences{}, mapNotFound(err)
	}
	return u.Preferences, nil
}

// UpdatePreferences replaces the stored preferences object as a whole.
func (s *Service) UpdatePreferences(ctx context.Context, id int64, p user.Preferences) (user.Preferences, error) {
	if err := p.Validate(); err != nil {
		return user.Preferences{}, apperr.New(apperr.KindInvalid, "theme must be light, dark or system and language pt-BR or en", err)
	}
	u, err := s.users.SetPreferences(ctx, id, p)
	if err != nil {
		return user.Preferences{}, mapNotFound(err)
	}
	return u.Preferences, nil
}

func (s *Service) AddMilestone(ctx context.Context, userID int64, m milestone.Milestone) (milestone.Milestone, error) {
	m.UserID = userID
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	if err := m.Validate(); err != nil {
		return milestone.Milestone{}, apperr.New(apperr.KindInvalid, err.Error(), err)
	}

	created, err := s.milestones.Create(ctx, m)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return milestone.Milestone{}, apperr.New(apperr.KindNotFound, "user not found", err)
		}
		return milestone.Milestone{}, apperr.Internal(err)
	}
	return created, nil
}
