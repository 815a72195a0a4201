package dashboard

import (
	"context"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
)

const cacheKey = "dashboard:admin"

// TechnicalDocumentsPlaceholder is a fixed figure, not a count of anything.
const TechnicalDocumentsPlaceholder int64 = 12

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Stats struct {
	KeyKnowledgeAreas   int64
	VulnerabilityAlerts int64
	TechnicalDocuments  int64
}

type Data struct {
	HeatMap []knowledge.HeatMapRow
	Stats   Stats
}

type Service struct {
	areas     knowledge.AreaRepository
	userAreas knowledge.UserAreaRepository
	cache     Cache
	ttl       time.Duration
	logger    *logger.Logger
}

func NewService(areas knowledge.AreaRepository, userAreas knowledge.UserAreaRepository, cache Cache, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{areas: areas, userAreas: userAreas, cache: cache, ttl: ttl, logger: log}
}

func (s *Service) GetAdminDashboardData(ctx context.Context) (Data, error) {
	if s.cache != nil && s.ttl > 0 {
		var cached Data
		hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", "error", err)
		}
		if hit {
			return cached, nil
		}
	}

	heatMap, err := s.userAreas.HeatMap(ctx)
	if err != nil {
		return Data{}, apperr.Internal(err)
	}
	areaCount, err := s.areas.Count(ctx)
	if err != nil {
		return Data{}, apperr.Internal(err)
	}
	alerts, err := s.userAreas.CountScoreAbove(ctx, knowledge.VulnerabilityAlertThreshold)
	if err != nil {
		return Data{}, apperr.Internal(err)
	}

	data := Data{
		HeatMap: heatMap,
		Stats: Stats{
			KeyKnowledgeAreas:   areaCount,
			VulnerabilityAlerts: alerts,
			TechnicalDocuments:  TechnicalDocumentsPlaceholder,
		},
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, cacheKey, data, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", "error", err)
		}
	}
	return data, nil
}

func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cacheKey)
}
