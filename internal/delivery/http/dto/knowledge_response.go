package dto

import (
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
)

type KnowledgeAreaResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewKnowledgeAreaResponse(a knowledge.Area) KnowledgeAreaResponse {
	return KnowledgeAreaResponse{ID: a.ID, Name: a.Name, Description: a.Description, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func NewKnowledgeAreaListResponse(areas []knowledge.Area) []KnowledgeAreaResponse {
	out := make([]KnowledgeAreaResponse, 0, len(areas))
	for _, a := range areas {
		out = append(out, NewKnowledgeAreaResponse(a))
	}
	return out
}
