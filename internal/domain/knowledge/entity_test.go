package knowledge

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestUserAreaValidate(t *testing.T) {
	cases := []struct {
		name string
		in   UserArea
		want error
	}{
		{name: "valid without score", in: UserArea{Level: 3}},
		{name: "valid with score", in: UserArea{Level: 5, VulnerabilityScore: intPtr(10)}},
		{name: "level too low", in: UserArea{Level: 0}, want: ErrInvalidLevel},
		{name: "level too high", in: UserArea{Level: 6}, want: ErrInvalidLevel},
		{name: "score negative", in: UserArea{Level: 1, VulnerabilityScore: intPtr(-1)}, want: ErrInvalidScore},
		{name: "score too high", in: UserArea{Level: 1, VulnerabilityScore: intPtr(11)}, want: ErrInvalidScore},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestIsVulnerable(t *testing.T) {
	scores := []*int{intPtr(8), intPtr(3), intPtr(2), intPtr(9), nil, intPtr(7)}
	count := 0
	for _, s := range scores {
		if IsVulnerable(s) {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected 2 vulnerable scores, got %d", count)
	}
}
