package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
)

type fakeAreaRepo struct {
	areas  []knowledge.Area
	nextID int64
}

func (f *fakeAreaRepo) List(context.Context) ([]knowledge.Area, error) { return f.areas, nil }

func (f *fakeAreaRepo) GetByID(_ context.Context, id int64) (knowledge.Area, error) {
	for _, a := range f.areas {
		if a.ID == id {
			return a, nil
		}
	}
	return knowledge.Area{}, knowledge.ErrAreaNotFound
}

func (f *fakeAreaRepo) Create(_ context.Context, a knowledge.Area) (knowledge.Area, error) {
	for _, existing := range f.areas {
		if existing.Name == a.Name {
			return knowledge.Area{}, knowledge.ErrAreaNameTaken
		}
	}
	f.nextID++
	a.ID = f.nextID
	f.areas = append(f.areas, a)
	return a, nil
}

func (f *fakeAreaRepo) Count(context.Context) (int64, error) { return int64(len(f.areas)), nil }

type fakeUserAreaRepo struct {
	knowledge.UserAreaRepository
	rows []knowledge.UserArea
}

func (f *fakeUserAreaRepo) Create(_ context.Context, ua knowledge.UserArea) (knowledge.UserArea, error) {
	for _, r := range f.rows {
		if r.UserID == ua.UserID && r.KnowledgeAreaID == ua.KnowledgeAreaID {
			return knowledge.UserArea{}, knowledge.ErrAlreadyAssigned
		}
	}
	ua.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, ua)
	return ua, nil
}

type fakeUsers struct {
	user.Repository
	ids map[int64]bool
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (user.User, error) {
	if !f.ids[id] {
		return user.User{}, user.ErrNotFound
	}
	return user.User{ID: id}, nil
}

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	r.events = append(r.events, evt)
	return nil
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n++
	return nil
}

type fixture struct {
	svc       *Service
	areas     *fakeAreaRepo
	userAreas *fakeUserAreaRepo
	pub       *recordingPublisher
	cache     *countingInvalidator
}

func newFixture() fixture {
	areas := &fakeAreaRepo{}
	userAreas := &fakeUserAreaRepo{}
	pub := &recordingPublisher{}
	cache := &countingInvalidator{}
	users := fakeUsers{ids: map[int64]bool{1: true, 2: true}}
	svc := NewService(areas, userAreas, users, pub, cache, nil)
	svc.now = func() time.Time { return fixedNow }
	return fixture{
		svc:       svc,
		areas:     areas,
		userAreas: userAreas,
		pub:       pub,
		cache:     cache,
	}
}

var fixedNow = time.Date(2024, 8, 20, 9, 30, 0, 0, time.UTC)

func score(v int) *int { return &v }

func TestCreateArea(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	area, err := f.svc.CreateArea(ctx, CreateAreaInput{Name: "  Frontend Architecture "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if area.Name != "Frontend Architecture" {
		t.Fatalf("expected trimmed name, got %q", area.Name)
	}
	if f.cache.n != 1 {
		t.Fatalf("expected dashboard invalidation, got %d", f.cache.n)
	}

	if _, err := f.svc.CreateArea(ctx, CreateAreaInput{Name: "Frontend Architecture"}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := f.svc.CreateArea(ctx, CreateAreaInput{Name: "   "}); !apperr.Is(err, apperr.KindInvalid) {
		t.Fatalf("expected invalid, got %v", err)
	}
}

func TestReportProficiency(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	area, _ := f.svc.CreateArea(ctx, CreateAreaInput{Name: "DevOps"})

	ua, err := f.svc.ReportProficiency(ctx, 1, area.ID, 3)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if ua.IsOwner {
		t.Fatalf("self-reported proficiency must not be an owner record")
	}

	if _, err := f.svc.ReportProficiency(ctx, 1, area.ID, 4); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on duplicate pair, got %v", err)
	}
	if _, err := f.svc.ReportProficiency(ctx, 2, area.ID, 6); !apperr.Is(err, apperr.KindInvalid) {
		t.Fatalf("expected invalid level, got %v", err)
	}
	if _, err := f.svc.ReportProficiency(ctx, 2, 999, 2); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found area, got %v", err)
	}
}

func TestAssignOwner_EmitsAlertAboveThreshold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	area, _ := f.svc.CreateArea(ctx, CreateAreaInput{Name: "Security Protocols"})
	other, _ := f.svc.CreateArea(ctx, CreateAreaInput{Name: "Data Modeling"})

	if _, err := f.svc.AssignOwner(ctx, area.ID, AssignOwnerInput{UserID: 1, Level: 5, VulnerabilityScore: score(8)}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(f.pub.events) != 1 || f.pub.events[0].Type != events.KnowledgeVulnerability {
		t.Fatalf("expected one vulnerability alert, got %+v", f.pub.events)
	}
	data, _ := f.pub.events[0].Data.(map[string]any)
	if data["area"] != "Security Protocols" || data["vulnerabilityScore"] != 8 || data["knowledgeAreaId"] != area.ID {
		t.Fatalf("unexpected alert payload: %+v", data)
	}
	if at, _ := data["detectedAt"].(time.Time); !at.Equal(fixedNow) {
		t.Fatalf("expected detectedAt %v, got %v", fixedNow, data["detectedAt"])
	}

	// A score equal to the threshold is not an alert.
	if _, err := f.svc.AssignOwner(ctx, other.ID, AssignOwnerInput{UserID: 2, Level: 2, VulnerabilityScore: score(7)}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(f.pub.events) != 1 {
		t.Fatalf("expected no alert at threshold, got %d events", len(f.pub.events))
	}
	if !f.userAreas.rows[0].IsOwner || !f.userAreas.rows[1].IsOwner {
		t.Fatalf("expected owner records")
	}
}

func TestAssignOwner_Failures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	area, _ := f.svc.CreateArea(ctx, CreateAreaInput{Name: "Backend API Design"})

	if _, err := f.svc.AssignOwner(ctx, area.ID, AssignOwnerInput{UserID: 42, Level: 3}); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if _, err := f.svc.AssignOwner(ctx, area.ID, AssignOwnerInput{UserID: 1, Level: 3, VulnerabilityScore: score(11)}); !apperr.Is(err, apperr.KindInvalid) {
		t.Fatalf("expected invalid score, got %v", err)
	}
	if _, err := f.svc.AssignOwner(ctx, area.ID, AssignOwnerInput{UserID: 1, Level: 3}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := f.svc.AssignOwner(ctx, area.ID, AssignOwnerInput{UserID: 1, Level: 4}); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
