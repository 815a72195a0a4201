package dto

import (
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	useruc "github.com/gilsonricardopeloso/devretain/internal/usecase/user"
)

type UserKnowledgeAreaResponse struct {
	ID                 int64     `json:"id"`
	KnowledgeAreaID    int64     `json:"knowledgeAreaId"`
	Area               string    `json:"area"`
	Level              int       `json:"level"`
	VulnerabilityScore *int      `json:"vulnerabilityScore"`
	IsOwner            bool      `json:"isOwner"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

type MilestoneResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Date        *time.Time `json:"date"`
	PlannedDate *time.Time `json:"plannedDate"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type ProfileResponse struct {
	UserResponse
	KnowledgeAreas   []UserKnowledgeAreaResponse `json:"knowledgeAreas"`
	CareerMilestones []MilestoneResponse         `json:"careerMilestones"`
}

func NewUserKnowledgeAreaResponse(ua knowledge.UserArea) UserKnowledgeAreaResponse {
	return UserKnowledgeAreaResponse{
		ID:                 ua.ID,
		KnowledgeAreaID:    ua.KnowledgeAreaID,
		Area:               ua.AreaName,
		Level:              ua.Level,
		VulnerabilityScore: ua.VulnerabilityScore,
		IsOwner:            ua.IsOwner,
		LastUpdated:        ua.LastUpdated,
	}
}

func NewMilestoneResponse(m milestone.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Status:      string(m.Status),
		Date:        m.Date,
		PlannedDate: m.PlannedDate,
		CreatedAt:   m.CreatedAt,
	}
}

func NewProfileResponse(p useruc.Profile) ProfileResponse {
	areas := make([]UserKnowledgeAreaResponse, 0, len(p.KnowledgeAreas))
	for _, a := range p.KnowledgeAreas {
		areas = append(areas, NewUserKnowledgeAreaResponse(a))
	}
	ms := make([]MilestoneResponse, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		ms = append(ms, NewMilestoneResponse(m))
	}
	return ProfileResponse{
		UserResponse:     NewUserResponse(p.User),
		KnowledgeAreas:   areas,
		CareerMilestones: ms,
	}
}
