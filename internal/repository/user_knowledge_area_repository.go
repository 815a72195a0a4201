package repository

import (
	"context"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
)

type PostgresUserKnowledgeAreaRepository struct {
	db database.DB
}

func NewPostgresUserKnowledgeAreaRepository(db database.DB) *PostgresUserKnowledgeAreaRepository {
	return &PostgresUserKnowledgeAreaRepository{db: db}
}

func (r *PostgresUserKnowledgeAreaRepository) ListByUser(ctx context.Context, userID int64) ([]knowledge.UserArea, error) {
	rows, err := r.db.Query(ctx,
		`SELECT uka.id, uka.user_id, uka.knowledge_area_id, ka.name, uka.level, uka.vulnerability_score, uka.is_owner, uka.last_updated
		 FROM user_knowledge_areas uka
		 JOIN knowledge_areas ka ON ka.id = uka.knowledge_area_id
		 WHERE uka.user_id = $1
		 ORDER BY ka.name ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]knowledge.UserArea, 0)
	for rows.Next() {
		var ua knowledge.UserArea
		if err := rows.Scan(&ua.ID, &ua.UserID, &ua.KnowledgeAreaID, &ua.AreaName, &ua.Level, &ua.VulnerabilityScore, &ua.IsOwner, &ua.LastUpdated); err != nil {
			return nil, err
		}
		out = append(out, ua)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserKnowledgeAreaRepository) Create(ctx context.Context, ua knowledge.UserArea) (knowledge.UserArea, error) {
	row := r.db.QueryRow(ctx,
		`WITH inserted AS (
			INSERT INTO user_knowledge_areas (user_id, knowledge_area_id, level, vulnerability_score, is_owner)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, knowledge_area_id, level, vulnerability_score, is_owner, last_updated
		 )
		 SELECT i.id, i.user_id, i.knowledge_area_id, ka.name, i.level, i.vulnerability_score, i.is_owner, i.last_updated
		 FROM inserted i
		 JOIN knowledge_areas ka ON ka.id = i.knowledge_area_id`,
		ua.UserID, ua.KnowledgeAreaID, ua.Level, ua.VulnerabilityScore, ua.IsOwner,
	)

	var created knowledge.UserArea
	err := row.Scan(&created.ID, &created.UserID, &created.KnowledgeAreaID, &created.AreaName, &created.Level, &created.VulnerabilityScore, &created.IsOwner, &created.LastUpdated)
	if err != nil {
		if _, ok := postgres.IsUniqueViolation(err); ok {
			return knowledge.UserArea{}, knowledge.ErrAlreadyAssigned
		}
		if _, ok := postgres.IsForeignKeyViolation(err); ok {
			return knowledge.UserArea{}, knowledge.ErrUnknownReference
		}
		return knowledge.UserArea{}, err
	}
	return created, nil
}

func (r *PostgresUserKnowledgeAreaRepository) HeatMap(ctx context.Context) ([]knowledge.HeatMapRow, error) {
	rows, err := r.db.Query(ctx,
		`SELECT uka.id, ka.name, uka.level, uka.vulnerability_score, u.id, u.name, u.email
		 FROM user_knowledge_areas uka
		 INNER JOIN users u ON u.id = uka.user_id
		 INNER JOIN knowledge_areas ka ON ka.id = uka.knowledge_area_id
		 WHERE uka.is_owner = TRUE
		 ORDER BY ka.name ASC, u.name ASC, uka.id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]knowledge.HeatMapRow, 0)
	for rows.Next() {
		var h knowledge.HeatMapRow
		if err := rows.Scan(&h.ID, &h.Area, &h.Level, &h.VulnerabilityScore, &h.OwnerID, &h.OwnerName, &h.OwnerEmail); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresUserKnowledgeAreaRepository) CountScoreAbove(ctx context.Context, threshold int) (int64, error) {
	var n int64
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_knowledge_areas WHERE vulnerability_score > $1`, threshold)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
