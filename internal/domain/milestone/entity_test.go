package milestone

import (
	"errors"
	"testing"
	"time"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestSortByRelevance_PlannedDateFallback(t *testing.T) {
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	ms := []Milestone{
		{ID: 1, Title: "Led migration", Date: day("2023-02-15"), CreatedAt: created},
		{ID: 2, Title: "Promotion", Date: day("2023-12-01"), CreatedAt: created},
		{ID: 3, Title: "Certification", PlannedDate: day("2024-08-20"), CreatedAt: created},
	}

	SortByRelevance(ms)

	want := []int64{3, 2, 1}
	for i, id := range want {
		if ms[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, ms[i].ID)
		}
	}
}

func TestSortByRelevance_CreatedAtLast(t *testing.T) {
	ms := []Milestone{
		{ID: 1, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Date: day("2024-06-01"), CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	SortByRelevance(ms)
	if ms[0].ID != 1 {
		t.Fatalf("expected created_at fallback to rank newer undated entry first")
	}
}

func TestValidate(t *testing.T) {
	ok := Milestone{Title: "x", Status: StatusPlanned, PlannedDate: day("2025-01-01")}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	noTitle := ok
	noTitle.Title = ""
	if err := noTitle.Validate(); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}

	badStatus := ok
	badStatus.Status = "done"
	if err := badStatus.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	noDate := ok
	noDate.PlannedDate = nil
	if err := noDate.Validate(); !errors.Is(err, ErrDateRequired) {
		t.Fatalf("expected ErrDateRequired, got %v", err)
	}
}
