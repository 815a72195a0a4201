package seeder

import (
	"context"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
)

type seedMilestone struct {
	Email       string
	Title       string
	Description string
	Status      milestone.Status
	Date        *time.Time
	PlannedDate *time.Time
}

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var seedMilestones = []seedMilestone{
	{Email: "user1@example.com", Title: "Senior Developer Certification", Description: "Achieved certification for senior frontend developer role.",
		Status: milestone.StatusCompleted, Date: day("2023-02-15")},
	{Email: "user1@example.com", Title: "System Architecture Certification", Description: "Plan to get certified in system architecture.",
		Status: milestone.StatusPlanned, PlannedDate: day("2024-08-20")},
	{Email: "user1@example.com", Title: "Lead a Major Project", Description: "Successfully led the 'Phoenix' project.",
		Status: milestone.StatusAchieved, Date: day("2023-12-01")},

	{Email: "user2@example.com", Title: "Backend Specialization Course",
		Status: milestone.StatusCompleted, Date: day("2022-11-10")},
	{Email: "user2@example.com", Title: "DevOps Professional Certification",
		Status: milestone.StatusInProgress, PlannedDate: day("2024-07-15")},

	{Email: "johndoe@example.com", Title: "Frontend Tech Lead", Description: "Promoted to Frontend Tech Lead.",
		Status: milestone.StatusAchieved, Date: day("2024-01-10")},
}

type CareerMilestonesSeeder struct{}

func (CareerMilestonesSeeder) Name() string { return "career_milestones" }

// Run skips milestones whose (user, title) pair already exists, since the
// table has no natural unique key.
func (CareerMilestonesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "career_milestones", "user_id", "title", "description", "status", "date", "planned_date"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, m := range seedMilestones {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO career_milestones (user_id, title, description, status, date, planned_date)
				 SELECT u.id, $2::text, NULLIF($3::text, ''), $4::text, $5::date, $6::date
				 FROM users u
				 WHERE u.email = $1
				   AND NOT EXISTS (SELECT 1 FROM career_milestones cm WHERE cm.user_id = u.id AND cm.title = $2::text)`,
				m.Email, m.Title, m.Description, string(m.Status), m.Date, m.PlannedDate,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
