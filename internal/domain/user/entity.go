package user

import (
	"errors"
	"time"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Language string

const (
	LanguagePtBR Language = "pt-BR"
	LanguageEn   Language = "en"
)

var ErrInvalidPreferences = errors.New("invalid preferences")

// Preferences is stored as a single JSON document and always replaced whole.
type Preferences struct {
	Notifications bool     `json:"notifications"`
	Theme         Theme    `json:"theme"`
	Language      Language `json:"language"`
}

func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Theme: ThemeSystem, Language: LanguagePtBR}
}

func (p Preferences) Validate() error {
	switch p.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return ErrInvalidPreferences
	}
	switch p.Language {
	case LanguagePtBR, LanguageEn:
	default:
		return ErrInvalidPreferences
	}
	return nil
}

type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           Role
	IsActive       bool
	LastActivityAt *time.Time
	Preferences    Preferences
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy without the password hash.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

func SanitizeAll(users []User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out
}
