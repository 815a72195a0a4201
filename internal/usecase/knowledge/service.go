package knowledge

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
)

type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type CreateAreaInput struct {
	Name        string
	Description string
}

type AssignOwnerInput struct {
	UserID             int64
	Level              int
	VulnerabilityScore *int
}

type Service struct {
	areas     knowledge.AreaRepository
	userAreas knowledge.UserAreaRepository
	users     user.Repository
	events    events.Publisher
	cache     CacheInvalidator
	logger    *logger.Logger

	now func() time.Time
}

func NewService(
	areas knowledge.AreaRepository,
	userAreas knowledge.UserAreaRepository,
	users user.Repository,
	publisher events.Publisher,
	cache CacheInvalidator,
	log *logger.Logger,
) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		areas:     areas,
		userAreas: userAreas,
		users:     users,
		events:    publisher,
		cache:     cache,
		logger:    log,
		now:       time.Now,
	}
}

func (s *Service) ListAreas(ctx context.Context) ([]knowledge.Area, error) {
	areas, err := s.areas.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return areas, nil
}

func (s *Service) CreateArea(ctx context.Context, in CreateAreaInput) (knowledge.Area, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return knowledge.Area{}, apperr.Invalid("name is required")
	}
	area, err := s.areas.Create(ctx, knowledge.Area{Name: name, Description: strings.TrimSpace(in.Description)})
	if err != nil {
		if errors.Is(err, knowledge.ErrAreaNameTaken) {
			return knowledge.Area{}, apperr.Conflict("knowledge area already exists")
		}
		return knowledge.Area{}, apperr.Internal(err)
	}
	s.logger.Info("knowledge area created", "area_id", area.ID, "name", area.Name)
	s.invalidate(ctx)
	return area, nil
}

// ReportProficiency records a self-assessed level. It never creates an owner
// record, so it does not affect the heat map.
func (s *Service) ReportProficiency(ctx context.Context, userID, areaID int64, level int) (knowledge.UserArea, error) {
	ua := knowledge.UserArea{UserID: userID, KnowledgeAreaID: areaID, Level: level}
	if err := ua.Validate(); err != nil {
		return knowledge.UserArea{}, apperr.New(apperr.KindInvalid, err.Error(), err)
	}
	if _, err := s.areas.GetByID(ctx, areaID); err != nil {
		return knowledge.UserArea{}, mapAreaErr(err)
	}
	created, err := s.userAreas.Create(ctx, ua)
	if err != nil {
		return knowledge.UserArea{}, mapAssignErr(err)
	}
	return created, nil
}

func (s *Service) AssignOwner(ctx context.Context, areaID int64, in AssignOwnerInput) (knowledge.UserArea, error) {
	ua := knowledge.UserArea{
		UserID:             in.UserID,
		KnowledgeAreaID:    areaID,
		Level:              in.Level,
		VulnerabilityScore: in.VulnerabilityScore,
		IsOwner:            true,
	}
	if err := ua.Validate(); err != nil {
		return knowledge.UserArea{}, apperr.New(apperr.KindInvalid, err.Error(), err)
	}
	area, err := s.areas.GetByID(ctx, areaID)
	if err != nil {
		return knowledge.UserArea{}, mapAreaErr(err)
	}
	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return knowledge.UserArea{}, apperr.NotFound("user not found")
		}
		return knowledge.UserArea{}, apperr.Internal(err)
	}

	created, err := s.userAreas.Create(ctx, ua)
	if err != nil {
		return knowledge.UserArea{}, mapAssignErr(err)
	}

	s.logger.Info("knowledge owner assigned", "area_id", areaID, "user_id", in.UserID, "level", in.Level)
	if knowledge.IsVulnerable(created.VulnerabilityScore) {
		events.Emit(ctx, s.events, s.logger, events.New(events.KnowledgeVulnerability, in.UserID, map[string]any{
			"knowledgeAreaId":    areaID,
			"area":               area.Name,
			"vulnerabilityScore": *created.VulnerabilityScore,
			"detectedAt":         s.now().UTC(),
		}))
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", "error", err)
	}
}

func mapAreaErr(err error) error {
	if errors.Is(err, knowledge.ErrAreaNotFound) {
		return apperr.NotFound("knowledge area not found")
	}
	return apperr.Internal(err)
}

func mapAssignErr(err error) error {
	switch {
	case errors.Is(err, knowledge.ErrAlreadyAssigned):
		return apperr.Conflict("user already has a record for this knowledge area")
	case errors.Is(err, knowledge.ErrUnknownReference):
		return apperr.NotFound("user or knowledge area not found")
	default:
		return apperr.Internal(err)
	}
}
