package dto

import (
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
)

type PreferencesResponse struct {
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
}

// UserResponse is the only shape a user takes on the wire. It has no
// password field at all.
type UserResponse struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	Email          string              `json:"email"`
	Role           string              `json:"role"`
	IsActive       bool                `json:"isActive"`
	LastActivityAt *time.Time          `json:"lastActivityAt"`
	Preferences    PreferencesResponse `json:"preferences"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type UserPageResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}

func NewPreferencesResponse(p user.Preferences) PreferencesResponse {
	return PreferencesResponse{Notifications: p.Notifications, Theme: string(p.Theme), Language: string(p.Language)}
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           string(u.Role),
		IsActive:       u.IsActive,
		LastActivityAt: u.LastActivityAt,
		Preferences:    NewPreferencesResponse(u.Preferences),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func NewUserListResponse(users []user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}
