package seeder

import (
	"context"

	"github.com/gilsonricardopeloso/devretain/internal/database"
)

var seedAreas = []struct {
	Name        string
	Description string
}{
	{Name: "Frontend Architecture", Description: "Principles of frontend system design."},
	{Name: "Backend API Design", Description: "Designing robust backend APIs."},
	{Name: "Database Optimization", Description: "Techniques for optimizing database performance."},
	{Name: "Security Protocols", Description: "Implementing security best practices."},
	{Name: "CI/CD Pipeline", Description: "Continuous Integration and Delivery pipelines."},
	{Name: "React Component Design", Description: "Best practices for React components."},
	{Name: "Unit Testing", Description: "Writing effective unit tests."},
}

type seedUserArea struct {
	Email   string
	Area    string
	Level   int
	Score   *int
	IsOwner bool
}

func score(v int) *int { return &v }

// The first three rows are the heat map owners; the rest are self-reported.
var seedUserAreas = []seedUserArea{
	{Email: "johndoe@example.com", Area: "Frontend Architecture", Level: 4, Score: score(8), IsOwner: true},
	{Email: "janesmith@example.com", Area: "Backend API Design", Level: 5, Score: score(3), IsOwner: true},
	{Email: "admin@example.com", Area: "Security Protocols", Level: 5, Score: score(2), IsOwner: true},

	{Email: "user1@example.com", Area: "Frontend Architecture", Level: 3, Score: score(6)},
	{Email: "user1@example.com", Area: "React Component Design", Level: 4, Score: score(4)},
	{Email: "user1@example.com", Area: "Unit Testing", Level: 3},

	{Email: "user2@example.com", Area: "Backend API Design", Level: 4, Score: score(5)},
	{Email: "user2@example.com", Area: "Database Optimization", Level: 3},
	{Email: "user2@example.com", Area: "CI/CD Pipeline", Level: 2, Score: score(7)},
}

type KnowledgeAreasSeeder struct{}

func (KnowledgeAreasSeeder) Name() string { return "knowledge_areas" }

func (KnowledgeAreasSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "knowledge_areas", "id", "name", "description"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, a := range seedAreas {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO knowledge_areas (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
				a.Name, a.Description,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

type UserKnowledgeAreasSeeder struct{}

func (UserKnowledgeAreasSeeder) Name() string { return "user_knowledge_areas" }

func (UserKnowledgeAreasSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "user_knowledge_areas", "user_id", "knowledge_area_id", "level", "vulnerability_score", "is_owner"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, r := range seedUserAreas {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO user_knowledge_areas (user_id, knowledge_area_id, level, vulnerability_score, is_owner)
				 SELECT u.id, ka.id, $3::int, $4::int, $5::boolean
				 FROM users u, knowledge_areas ka
				 WHERE u.email = $1 AND ka.name = $2
				 ON CONFLICT (user_id, knowledge_area_id) DO NOTHING`,
				r.Email, r.Area, r.Level, r.Score, r.IsOwner,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
