package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/gilsonricardopeloso/devretain/internal/app"
	"github.com/gilsonricardopeloso/devretain/internal/config"
	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/database/migration"
	dbpostgres "github.com/gilsonricardopeloso/devretain/internal/database/postgres"
	"github.com/gilsonricardopeloso/devretain/internal/domain/knowledge"
	"github.com/gilsonricardopeloso/devretain/internal/domain/milestone"
	"github.com/gilsonricardopeloso/devretain/internal/events"
	"github.com/gilsonricardopeloso/devretain/internal/infrastructure/cache"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/repository"
	useruc "github.com/gilsonricardopeloso/devretain/internal/usecase/user"
	"github.com/gilsonricardopeloso/devretain/internal/ws"
	"github.com/gilsonricardopeloso/devretain/migrations"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// The suite truncates every table, so it only runs against a database named
// through the DEVRETAIN_TEST_DB_* variables.
func connectTestDB(t *testing.T, ctx context.Context) (database.DB, config.DatabaseConfig) {
	t.Helper()

	cfg := config.DatabaseConfig{
		DBHost:     os.Getenv("DEVRETAIN_TEST_DB_HOST"),
		DBPort:     os.Getenv("DEVRETAIN_TEST_DB_PORT"),
		DBName:     os.Getenv("DEVRETAIN_TEST_DB_NAME"),
		DBUser:     os.Getenv("DEVRETAIN_TEST_DB_USER"),
		DBPassword: os.Getenv("DEVRETAIN_TEST_DB_PASSWORD"),
		DBSSLMode:  stringsOrDefault(os.Getenv("DEVRETAIN_TEST_DB_SSL_MODE"), "disable"),

		ConnectTimeout: 5 * time.Second,
		PoolMaxConns:   4,
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" || cfg.DBUser == "" {
		t.Skip("missing test DB env vars: set DEVRETAIN_TEST_DB_HOST/PORT/NAME/USER/PASSWORD")
	}

	db, err := dbpostgres.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect test db: %v", err)
	}
	return db, cfg
}

func prepareSchema(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	r := migration.Runner{Source: migrations.FS, Logger: logger.Nop()}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := db.Exec(ctx, `TRUNCATE career_milestones, user_knowledge_areas, knowledge_areas, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
}

func newTestApp(t *testing.T, db database.DB, dbCfg config.DatabaseConfig) *fiber.App {
	t.Helper()

	log := logger.Nop()
	c := &app.Container{
		Config: config.Config{
			App:      config.AppConfig{AppName: "devretain-test", Environment: "test", HTTPPort: "0"},
			Database: dbCfg,
			JWT:      config.JWTConfig{Secret: "integration-test-secret"},
		},
		Logger: log,
		DB:     db,
		Redis:  cache.NewRedisFromClient(nil, log),
		Hub:    ws.NewHub(log),
		Events: events.Nop{},
	}
	return app.New(c).Fiber
}

type fixture struct {
	adminID, aliceID, bobID int64
	areaIDs                 []int64
}

func seedFixture(t *testing.T, ctx context.Context, db database.DB) fixture {
	t.Helper()

	users := repository.NewPostgresUserRepository(db)
	areas := repository.NewPostgresKnowledgeAreaRepository(db)
	userAreas := repository.NewPostgresUserKnowledgeAreaRepository(db)
	milestones := repository.NewPostgresCareerMilestoneRepository(db)
	svc := useruc.NewService(users, userAreas, milestones, nil, nil, logger.Nop())

	var f fixture
	for _, in := range []struct {
		in  useruc.CreateInput
		dst *int64
	}{
		{useruc.CreateInput{Name: "Admin User", Email: "admin@example.com", Password: "admin123", Role: "admin"}, &f.adminID},
		{useruc.CreateInput{Name: "User1 (Alice)", Email: "user1@example.com", Password: "user1pass"}, &f.aliceID},
		{useruc.CreateInput{Name: "User2 (Bob)", Email: "user2@example.com", Password: "user2pass"}, &f.bobID},
	} {
		u, err := svc.Create(ctx, in.in)
		if err != nil {
			t.Fatalf("create user %s: %v", in.in.Email, err)
		}
		*in.dst = u.ID
	}

	for _, name := range []string{"Frontend Architecture", "Backend API Design", "Security Protocols"} {
		a, err := areas.Create(ctx, knowledge.Area{Name: name})
		if err != nil {
			t.Fatalf("create area %s: %v", name, err)
		}
		f.areaIDs = append(f.areaIDs, a.ID)
	}

	score := func(v int) *int { return &v }
	rows := []knowledge.UserArea{
		{UserID: f.aliceID, KnowledgeAreaID: f.areaIDs[0], Level: 5, VulnerabilityScore: score(8), IsOwner: true},
		{UserID: f.bobID, KnowledgeAreaID: f.areaIDs[1], Level: 4, VulnerabilityScore: score(3), IsOwner: true},
		{UserID: f.adminID, KnowledgeAreaID: f.areaIDs[2], Level: 5, VulnerabilityScore: score(2), IsOwner: true},
		{UserID: f.bobID, KnowledgeAreaID: f.areaIDs[0], Level: 2, VulnerabilityScore: score(9)},
		{UserID: f.aliceID, KnowledgeAreaID: f.areaIDs[2], Level: 1},
	}
	for _, r := range rows {
		if _, err := userAreas.Create(ctx, r); err != nil {
			t.Fatalf("create user area: %v", err)
		}
	}

	day := func(s string) *time.Time {
		d, _ := time.Parse(time.DateOnly, s)
		return &d
	}
	for _, m := range []milestone.Milestone{
		{UserID: f.aliceID, Title: "Senior Developer Certification", Status: milestone.StatusCompleted, Date: day("2023-02-15")},
		{UserID: f.aliceID, Title: "System Architecture Certification", Status: milestone.StatusPlanned, PlannedDate: day("2024-08-20")},
		{UserID: f.aliceID, Title: "Lead a Major Project", Status: milestone.StatusAchieved, Date: day("2023-12-01")},
	} {
		if _, err := milestones.Create(ctx, m); err != nil {
			t.Fatalf("create milestone: %v", err)
		}
	}
	return f
}

func call(t *testing.T, a *fiber.App, method, path, token string, body any) (int, semanticResponse, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var sr semanticResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		t.Fatalf("%s %s: decode %q: %v", method, path, string(raw), err)
	}
	return resp.StatusCode, sr, raw
}

func login(t *testing.T, a *fiber.App, email, pass string) string {
	t.Helper()

	status, sr, raw := call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": pass})
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", email, status, sr.Message)
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("login response leaks password: %s", raw)
	}
	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil || data.AccessToken == "" {
		t.Fatalf("login %s: missing access_token", email)
	}
	return data.AccessToken
}

func TestIntegration_DashboardProfileAndGuards(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, dbCfg := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	prepareSchema(t, ctx, db)
	f := seedFixture(t, ctx, db)
	a := newTestApp(t, db, dbCfg)

	adminTok := login(t, a, "admin@example.com", "admin123")
	aliceTok := login(t, a, "user1@example.com", "user1pass")

	if status, _, _ := call(t, a, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "user1@example.com", "password": "wrong"}); status != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401, got %d", status)
	}

	// Heat map and stats.
	status, sr, _ := call(t, a, http.MethodGet, "/api/v1/dashboard/admin-data", adminTok, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard: expected 200, got %d (%s)", status, sr.Message)
	}
	var dash struct {
		HeatMapData []struct {
			Area string `json:"area"`
		} `json:"heatMapData"`
		Stats struct {
			KeyKnowledgeAreas   int64 `json:"keyKnowledgeAreas"`
			VulnerabilityAlerts int64 `json:"vulnerabilityAlerts"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(sr.Data, &dash); err != nil {
		t.Fatalf("dashboard decode: %v", err)
	}
	if len(dash.HeatMapData) != 3 {
		t.Fatalf("expected 3 heat map rows, got %d", len(dash.HeatMapData))
	}
	if dash.Stats.VulnerabilityAlerts != 2 {
		t.Fatalf("expected 2 vulnerability alerts, got %d", dash.Stats.VulnerabilityAlerts)
	}
	if dash.Stats.KeyKnowledgeAreas != 3 {
		t.Fatalf("expected 3 knowledge areas, got %d", dash.Stats.KeyKnowledgeAreas)
	}

	// Guards: non-admin is forbidden, a missing token is unauthenticated.
	if status, _, _ := call(t, a, http.MethodGet, "/api/v1/dashboard/admin-data", aliceTok, nil); status != http.StatusForbidden {
		t.Fatalf("non-admin dashboard: expected 403, got %d", status)
	}
	if status, _, _ := call(t, a, http.MethodGet, "/api/v1/dashboard/admin-data", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous dashboard: expected 401, got %d", status)
	}

	// Profile: no password, milestones ordered by relevance.
	status, sr, raw := call(t, a, http.MethodGet, "/api/v1/users/profile", aliceTok, nil)
	if status != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d", status)
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("profile leaks password: %s", raw)
	}
	var prof struct {
		Email            string `json:"email"`
		CareerMilestones []struct {
			Title string `json:"title"`
		} `json:"careerMilestones"`
	}
	if err := json.Unmarshal(sr.Data, &prof); err != nil {
		t.Fatalf("profile decode: %v", err)
	}
	want := []string{"System Architecture Certification", "Lead a Major Project", "Senior Developer Certification"}
	if len(prof.CareerMilestones) != len(want) {
		t.Fatalf("expected %d milestones, got %d", len(want), len(prof.CareerMilestones))
	}
	for i, title := range want {
		if prof.CareerMilestones[i].Title != title {
			t.Fatalf("milestone %d: expected %q, got %q", i, title, prof.CareerMilestones[i].Title)
		}
	}

	// Admins cannot be deactivated.
	path := "/api/v1/users/" + strconv.FormatInt(f.adminID, 10) + "/status"
	if status, _, _ := call(t, a, http.MethodPatch, path, adminTok, map[string]bool{"isActive": false}); status != http.StatusForbidden {
		t.Fatalf("deactivate admin: expected 403, got %d", status)
	}
	if status, _, _ := call(t, a, http.MethodGet, "/api/v1/users/profile", adminTok, nil); status != http.StatusOK {
		t.Fatalf("admin should remain active, got %d", status)
	}

	// Deactivating Bob revokes access on the next request.
	bobTok := login(t, a, "user2@example.com", "user2pass")
	path = "/api/v1/users/" + strconv.FormatInt(f.bobID, 10) + "/status"
	if status, _, _ := call(t, a, http.MethodPatch, path, adminTok, map[string]bool{"isActive": false}); status != http.StatusOK {
		t.Fatalf("deactivate bob: expected 200, got %d", status)
	}
	if status, _, _ := call(t, a, http.MethodGet, "/api/v1/users/profile", bobTok, nil); status != http.StatusUnauthorized {
		t.Fatalf("deactivated user: expected 401, got %d", status)
	}
}

func TestIntegration_UniqueUserAreaPair(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, _ := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	prepareSchema(t, ctx, db)
	f := seedFixture(t, ctx, db)

	userAreas := repository.NewPostgresUserKnowledgeAreaRepository(db)
	_, err := userAreas.Create(ctx, knowledge.UserArea{UserID: f.aliceID, KnowledgeAreaID: f.areaIDs[0], Level: 1})
	if !errors.Is(err, knowledge.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func stringsOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
