package repository

import (
	"context"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
)

const milestoneColumns = `id, user_id, title, COALESCE(description, ''), status, date, planned_date, created_at, updated_at`

type PostgresCareerMilestoneRepository struct {
	db database.DB
}

func NewPostgresCareerMilestoneRepository(db database.DB) *PostgresCareerMilestoneRepository {
	return &PostgresCareerMilestoneRepository{db: db}
}

func (r *PostgresCareerMilestoneRepository) ListByUser(ctx context.Context, userID int64) ([]milestone.Milestone, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+milestoneColumns+`
		 FROM career_milestones
		 WHERE user_id = $1
		 ORDER BY COALESCE(date::timestamptz, planned_date::timestamptz, created_at) DESC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]milestone.Milestone, 0)
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCareerMilestoneRepository) Create(ctx context.Context, m milestone.Milestone) (milestone.Milestone, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO career_milestones (user_id, title, description, status, date, planned_date)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		 RETURNING `+milestoneColumns,
		m.UserID, m.Title, m.Description, string(m.Status), m.Date, m.PlannedDate,
	)
	created, err := scanMilestone(row)
	if err != nil {
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return milestone.Milestone{}, user.ErrNotFound
		}
		return milestone.Milestone{}, err
	}
	return created, nil
}

func scanMilestone(row database.Row) (milestone.Milestone, error) {
	var (
		m      milestone.Milestone
		status string
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &status, &m.Date, &m.PlannedDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return milestone.Milestone{}, err
	}
	m.Status = milestone.Status(status)
	return m, nil
}
