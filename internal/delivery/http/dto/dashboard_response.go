package dto

import (
	"github.com/gilsonricardopeloso/devretain/internal/usecase/dashboard"
)

type HeatMapOwner struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type HeatMapEntry struct {
	ID                 int64        `json:"id"`
	Area               string       `json:"area"`
	Level              int          `json:"level"`
	VulnerabilityScore *int         `json:"vulnerabilityScore"`
	Owner              HeatMapOwner `json:"owner"`
}

type DashboardStats struct {
	KeyKnowledgeAreas   int64 `json:"keyKnowledgeAreas"`
	VulnerabilityAlerts int64 `json:"vulnerabilityAlerts"`
	TechnicalDocuments  int64 `json:"technicalDocuments"`
}

type AdminDashboardResponse struct {
	HeatMapData []HeatMapEntry `json:"heatMapData"`
	Stats       DashboardStats `json:"stats"`
}

func NewAdminDashboardResponse(d dashboard.Data) AdminDashboardResponse {
	entries := make([]HeatMapEntry, 0, len(d.HeatMap))
	for _, r := range d.HeatMap {
		entries = append(entries, HeatMapEntry{
			ID:                 r.ID,
			Area:               r.Area,
			Level:              r.Level,
			VulnerabilityScore: r.VulnerabilityScore,
			Owner:              HeatMapOwner{ID: r.OwnerID, Name: r.OwnerName, Email: r.OwnerEmail},
		})
	}
	return AdminDashboardResponse{
		HeatMapData: entries,
		Stats: DashboardStats{
			KeyKnowledgeAreas:   d.Stats.KeyKnowledgeAreas,
			VulnerabilityAlerts: d.Stats.VulnerabilityAlerts,
			TechnicalDocuments:  d.Stats.TechnicalDocuments,
		},
	}
}
