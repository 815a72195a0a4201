package knowledge

import (
	"context"
	"errors"
	"time"
)

// VulnerabilityAlertThreshold is the score above which an owner record is
// counted as a vulnerability alert.
const VulnerabilityAlertThreshold = 7

const (
	MinLevel = 1
	MaxLevel = 5
	MinScore = 0
	MaxScore = 10
)

var (
	ErrAreaNotFound     = errors.New("knowledge area not found")
	ErrAreaNameTaken    = errors.New("knowledge area name already exists")
	ErrAlreadyAssigned  = errors.New("user already has a record for this knowledge area")
	ErrUnknownReference = errors.New("user or knowledge area does not exist")
	ErrInvalidLevel     = errors.New("level must be between 1 and 5")
	ErrInvalidScore     = errors.New("vulnerability score must be between 0 and 10")
)

type Area struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserArea links a user to an area. Owner records feed the admin heat map;
// the rest are self-reported proficiency.
type UserArea struct {
	ID                 int64
	UserID             int64
	KnowledgeAreaID    int64
	AreaName           string
	Level              int
	VulnerabilityScore *int
	IsOwner            bool
	LastUpdated        time.Time
}

func (ua UserArea) Validate() error {
	if ua.Level < MinLevel || ua.Level > MaxLevel {
		return ErrInvalidLevel
	}
	if ua.VulnerabilityScore != nil {
		s := *ua.VulnerabilityScore
		if s < MinScore || s > MaxScore {
			return ErrInvalidScore
		}
	}
	return nil
}

func IsVulnerable(score *int) bool {
	return score != nil && *score > VulnerabilityAlertThreshold
}

type HeatMapRow struct {
	ID                 int64
	Area               string
	Level              int
	VulnerabilityScore *int
	OwnerID            int64
	OwnerName          string
	OwnerEmail         string
}

type AreaRepository interface {
	List(ctx context.Context) ([]Area, error)
	GetByID(ctx context.Context, id int64) (Area, error)
	Create(ctx context.Context, a Area) (Area, error)
	Count(ctx context.Context) (int64, error)
}

type UserAreaRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]UserArea, error)
	Create(ctx context.Context, ua UserArea) (UserArea, error)
	// HeatMap returns owner records whose user and area both exist.
	HeatMap(ctx context.Context) ([]HeatMapRow, error)
	CountScoreAbove(ctx context.Context, threshold int) (int64, error)
}
