package auth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gilsonricardopeloso/devretain/internal/domain/user"
	"github.com/gilsonricardopeloso/devretain/internal/infrastructure/cache"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/apperr"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/jwt"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/password"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

type mockUserRepository struct {
	user.Repository

	mu      sync.Mutex
	users   map[int64]user.User
	touched map[int64]int
}

func newMockUserRepository(users ...user.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int64]user.User{}, touched: map[int64]int{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockUserRepository) GetByID(_ context.Context, id int64) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *mockUserRepository) TouchLastActivity(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.LastActivityAt = &at
	m.users[id] = u
	m.touched[id]++
	return nil
}

type memoryDenylist struct {
	revoked map[string]time.Duration
}

func (d *memoryDenylist) Revoke(_ context.Context, id string, ttl time.Duration) error {
	d.revoked[id] = ttl
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, id string) (bool, error) {
	_, ok := d.revoked[id]
	return ok, nil
}

type onceThrottle struct {
	seen map[int64]bool
}

func (o *onceThrottle) Allow(_ context.Context, id int64) bool {
	if o.seen[id] {
		return false
	}
	o.seen[id] = true
	return true
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := password.Hash(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func seedUsers(t *testing.T) []user.User {
	return []user.User{
		{ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: mustHash(t, "admin123"), Role: user.RoleAdmin, IsActive: true},
		{ID: 2, Name: "Alice", Email: "user1@example.com", PasswordHash: mustHash(t, "user1pass"), Role: user.RoleUser, IsActive: true},
		{ID: 3, Name: "Bob", Email: "user2@example.com", PasswordHash: mustHash(t, "user2pass"), Role: user.RoleUser, IsActive: false},
	}
}

func newTestService(t *testing.T) (*Service, *mockUserRepository, *memoryDenylist) {
	repo := newMockUserRepository(seedUsers(t)...)
	deny := &memoryDenylist{revoked: map[string]time.Duration{}}
	svc := NewService(repo, jwt.NewHMACService(testSecret), deny, &onceThrottle{seen: map[int64]bool{}}, nil)
	return svc, repo, deny
}

func TestLogin_MatchingPairsOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	pairs := map[string]string{"admin@example.com": "admin123", "user1@example.com": "user1pass"}
	for email, pw := range pairs {
		res, err := svc.Login(ctx, LoginInput{Email: email, Password: pw})
		if err != nil {
			t.Fatalf("login %s: %v", email, err)
		}
		if res.AccessToken == "" || res.User.Email != email {
			t.Fatalf("unexpected login result for %s: %+v", email, res)
		}
		if res.User.PasswordHash != "" {
			t.Fatalf("login result leaked the hash")
		}

		for otherEmail, otherPw := range pairs {
			if otherEmail == email {
				continue
			}
			if _, err := svc.Login(ctx, LoginInput{Email: email, Password: otherPw}); !apperr.Is(err, apperr.KindUnauthorized) {
				t.Fatalf("expected unauthorized for %s with foreign password, got %v", email, err)
			}
		}
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := []LoginInput{
		{Email: "nobody@example.com", Password: "x"},
		{Email: "user1@example.com", Password: ""},
		{Email: "user2@example.com", Password: "user2pass"},
	}
	for _, in := range cases {
		if _, err := svc.Login(context.Background(), in); !apperr.Is(err, apperr.KindUnauthorized) {
			t.Fatalf("expected unauthorized for %s, got %v", in.Email, err)
		}
	}
}

func TestLogin_RecordsActivityAndEmbedsIdentity(t *testing.T) {
	svc, repo, _ := newTestService(t)

	res, err := svc.Login(context.Background(), LoginInput{Email: " USER1@example.com", Password: "user1pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.touched[2] != 1 || res.User.LastActivityAt == nil {
		t.Fatalf("expected last activity to be recorded")
	}

	claims, err := jwt.NewHMACService(testSecret).Verify(res.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != 2 || claims.Email != "user1@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAuthenticate_Success(t *testing.T) {
	svc, repo, _ := newTestService(t)
	tok, _ := jwt.NewHMACService(testSecret).Issue(1, "admin@example.com")

	p, err := svc.Authenticate(context.Background(), tok.Value)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.User.ID != 1 || p.User.Role != user.RoleAdmin || p.User.PasswordHash != "" {
		t.Fatalf("unexpected principal %+v", p.User)
	}

	if _, err := svc.Authenticate(context.Background(), tok.Value); err != nil {
		t.Fatalf("second authenticate: %v", err)
	}
	if repo.touched[1] != 1 {
		t.Fatalf("expected throttled activity write, got %d", repo.touched[1])
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	svc, _, _ := newTestService(t)

	past := time.Now().Add(-48 * time.Hour)
	c := jwt.Claims{
		UserID: 1,
		Email:  "admin@example.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   strconv.FormatInt(1, 10),
			IssuedAt:  jwtlib.NewNumericDate(past),
			ExpiresAt: jwtlib.NewNumericDate(past.Add(jwt.TokenTTL)),
		},
	}
	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), expired)
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if ae, _ := err.(*apperr.Error); ae == nil || ae.Message != "token expired" {
		t.Fatalf("expected token expired message, got %v", err)
	}
}

func TestAuthenticate_ForeignSecret(t *testing.T) {
	svc, _, _ := newTestService(t)
	tok, _ := jwt.NewHMACService("someone-else").Issue(1, "admin@example.com")

	if _, err := svc.Authenticate(context.Background(), tok.Value); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestAuthenticate_InactiveOrMissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	issuer := jwt.NewHMACService(testSecret)

	inactive, _ := issuer.Issue(3, "user2@example.com")
	if _, err := svc.Authenticate(context.Background(), inactive.Value); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for inactive user, got %v", err)
	}

	missing, _ := issuer.Issue(99, "ghost@example.com")
	if _, err := svc.Authenticate(context.Background(), missing.Value); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for missing user, got %v", err)
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	svc, _, deny := newTestService(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Email: "admin@example.com", Password: "admin123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	p, err := svc.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := svc.Logout(ctx, p.Claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	ttl, ok := deny.revoked[p.Claims.TokenID()]
	if !ok || ttl <= 0 || ttl > jwt.TokenTTL {
		t.Fatalf("unexpected denylist entry ttl=%s ok=%v", ttl, ok)
	}

	if _, err := svc.Authenticate(ctx, res.AccessToken); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthenticate_RecordsActivityWithoutRedis(t *testing.T) {
	repo := newMockUserRepository(seedUsers(t)...)
	throttle := cache.NewActivityThrottle(cache.NewRedisFromClient(nil, logger.Nop()))
	svc := NewService(repo, jwt.NewHMACService(testSecret), nil, throttle, logger.Nop())

	tok, _ := jwt.NewHMACService(testSecret).Issue(2, "user1@example.com")
	for i := 0; i < 3; i++ {
		if _, err := svc.Authenticate(context.Background(), tok.Value); err != nil {
			t.Fatalf("authenticate %d: %v", i+1, err)
		}
	}
	if repo.touched[2] != 3 {
		t.Fatalf("expected an activity write per request without redis, got %d", repo.touched[2])
	}
}

func TestAuthenticate_RejectionIsAudited(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	repo := newMockUserRepository(seedUsers(t)...)
	svc := NewService(repo, jwt.NewHMACService(testSecret), nil, nil, &logger.Logger{SugaredLogger: zap.New(core).Sugar()})
	issuer := jwt.NewHMACService(testSecret)

	inactive, _ := issuer.Issue(3, "user2@example.com")
	if _, err := svc.Authenticate(context.Background(), inactive.Value); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	missing, _ := issuer.Issue(99, "ghost@example.com")
	if _, err := svc.Authenticate(context.Background(), missing.Value); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	entries := logs.FilterMessage("authentication rejected").AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["email"] != "user2@example.com" || first["role"] != "user" || first["reason"] != "inactive" {
		t.Fatalf("unexpected inactive entry: %v", first)
	}
	if entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected warn level, got %s", entries[0].Level)
	}
	if second := entries[1].ContextMap(); second["email"] != "ghost@example.com" {
		t.Fatalf("unexpected missing-user entry: %v", second)
	}
}
