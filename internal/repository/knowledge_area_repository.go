package repository

import (
	"context"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
)

type PostgresKnowledgeAreaRepository struct {
	db database.DB
}

func NewPostgresKnowledgeAreaRepository(db database.DB) *PostgresKnowledgeAreaRepository {
	return &PostgresKnowledgeAreaRepository{db: db}
}

func (r *PostgresKnowledgeAreaRepository) List(ctx context.Context) ([]knowledge.Area, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at, updated_at
		 FROM knowledge_areas
		 ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]knowledge.Area, 0)
	for rows.Next() {
		var a knowledge.Area
		if err := rows.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresKnowledgeAreaRepository) GetByID(ctx context.Context, id int64) (knowledge.Area, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, ''), created_at, updated_at FROM knowledge_areas WHERE id = $1`,
		id,
	)

	var a knowledge.Area
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if postgres.IsNoRows(err) {
			return knowledge.Area{}, knowledge.ErrAreaNotFound
		}
		return knowledge.Area{}, err
	}
	return a, nil
}

func (r *PostgresKnowledgeAreaRepository) Create(ctx context.Context, a knowledge.Area) (knowledge.Area, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO knowledge_areas (name, description)
		 VALUES ($1, NULLIF($2, ''))
		 RETURNING id, name, COALESCE(description, ''), created_at, updated_at`,
		a.Name, a.Description,
	)

	var created knowledge.Area
	if err := row.Scan(&created.ID, &created.Name, &created.Description, &created.CreatedAt, &created.UpdatedAt); err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return knowledge.Area{}, knowledge.ErrAreaNameTaken
		}
		return knowledge.Area{}, err
	}
	return created, nil
}

func (r *PostgresKnowledgeAreaRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM knowledge_areas`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
