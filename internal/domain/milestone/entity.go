package milestone

import (
	"context"
	"errors"
	"sort"
	"time"
)

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusPlanned    Status = "planned"
	StatusAchieved   Status = "achieved"
	StatusInProgress Status = "in_progress"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusPlanned, StatusAchieved, StatusInProgress:
		return true
	default:
		return false
	}
}

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid milestone status")
	ErrDateRequired  = errors.New("date or planned date is required")
)

type Milestone struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	Status      Status
	Date        *time.Time
	PlannedDate *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (m Milestone) Validate() error {
	if m.Title == "" {
		return ErrTitleRequired
	}
	if !m.Status.Valid() {
		return ErrInvalidStatus
	}
	if m.Date == nil && m.PlannedDate == nil {
		return ErrDateRequired
	}
	return nil
}

// RelevantAt is the achieved date, else the planned date, else creation time.
func (m Milestone) RelevantAt() time.Time {
	if m.Date != nil {
		return *m.Date
	}
	if m.PlannedDate != nil {
		return *m.PlannedDate
	}
	return m.CreatedAt
}

// SortByRelevance orders milestones most recent RelevantAt first. Ties keep
// their input order.
func SortByRelevance(ms []Milestone) {
	sort.SliceStable(ms, func(i, j int) bool {
		return ms[i].RelevantAt().After(ms[j].RelevantAt())
	})
}

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]Milestone, error)
	Create(ctx context.Context, m Milestone) (Milestone, error)
}
