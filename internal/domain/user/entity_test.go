package user

import (
	"errors"
	"testing"
)

func TestPreferencesValidate(t *testing.T) {
	if err := DefaultPreferences().Validate(); err != nil {
		t.Fatalf("defaults must be valid: %v", err)
	}

	cases := []Preferences{
		{Theme: "sepia", Language: LanguageEn},
		{Theme: ThemeDark, Language: "fr"},
		{},
	}
	for _, p := range cases {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPreferences) {
			t.Fatalf("expected ErrInvalidPreferences for %+v, got %v", p, err)
		}
	}
}

func TestSanitized(t *testing.T) {
	u := User{ID: 1, Email: "a@example.com", PasswordHash: "$2a$10$abc"}
	s := u.Sanitized()
	if s.PasswordHash != "" {
		t.Fatalf("expected hash to be stripped")
	}
	if u.PasswordHash == "" {
		t.Fatalf("original must not be mutated")
	}

	all := SanitizeAll([]User{u, u})
	for _, x := range all {
		if x.PasswordHash != "" {
			t.Fatalf("expected all hashes stripped")
		}
	}
}
