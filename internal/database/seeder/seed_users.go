package seeder

import (
	"context"
	"encoding/json"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/password"
)

type seedUser struct {
	Name        string
	Email       string
	Password    string
	Role        user.Role
	Preferences user.Preferences
}

var seedUsers = []seedUser{
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: user.RoleAdmin,
		Preferences: user.Preferences{Notifications: true, Theme: user.ThemeSystem, Language: user.LanguagePtBR}},
	{Name: "User1 (Alice)", Email: "user1@example.com", Password: "user1pass", Role: user.RoleUser,
		Preferences: user.Preferences{Notifications: true, Theme: user.ThemeLight, Language: user.LanguageEn}},
	{Name: "User2 (Bob)", Email: "user2@example.com", Password: "user2pass", Role: user.RoleUser,
		Preferences: user.Preferences{Notifications: false, Theme: user.ThemeDark, Language: user.LanguageEn}},
	{Name: "John Doe", Email: "johndoe@example.com", Password: "johndoe123", Role: user.RoleUser,
		Preferences: user.Preferences{Notifications: true, Theme: user.ThemeSystem, Language: user.LanguagePtBR}},
	{Name: "Jane Smith", Email: "janesmith@example.com", Password: "janesmith123", Role: user.RoleUser,
		Preferences: user.Preferences{Notifications: true, Theme: user.ThemeLight, Language: user.LanguageEn}},
}

type UsersSeeder struct{}

func (UsersSeeder) Name() string { return "users" }

func (UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users", "id", "name", "email", "password", "role", "is_active", "preferences"); err != nil {
		return err
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		for _, u := range seedUsers {
			hash, err := password.Hash(u.Password)
			if err != nil {
				return err
			}
			prefs, err := json.Marshal(u.Preferences)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO users (name, email, password, role, is_active, preferences)
				 VALUES ($1, $2, $3, $4, TRUE, $5::jsonb)
				 ON CONFLICT (email) DO NOTHING`,
				u.Name, u.Email, hash, string(u.Role), string(prefs),
			); err != nil {
				return err
			}
		}
		return nil
	})
}
