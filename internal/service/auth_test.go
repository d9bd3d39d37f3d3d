package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/repository/sqlite"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/session"
)

const testJWTSecret = "test-secret-key-for-unit-tests-0123456789"

type testEnv struct {
	db       *sqlite.DB
	sessions *session.MemoryStore
	auth     *service.AuthService
	users    *service.UserService
	funerals *service.FuneralService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvTTL(t, time.Hour)
}

func newTestEnvTTL(t *testing.T, ttl time.Duration) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Use cost 4 for fast tests.
	hasher := service.NewPasswordHasher(4)
	sessions := session.NewMemoryStore()
	return &testEnv{
		db:       db,
		sessions: sessions,
		auth:     service.NewAuthService(db.Users(), sessions, hasher, testJWTSecret, ttl),
		users:    service.NewUserService(db.Users(), hasher),
		funerals: service.NewFuneralService(db.Funerals()),
	}
}

func userInput(username, password, role string) service.NewUserInput {
	return service.NewUserInput{
		FullName:        "User " + username,
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
		Village:         "Chilobwe",
		DateOfBirth:     time.Date(1985, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:          "Female",
		Role:            role,
	}
}

func (e *testEnv) register(t *testing.T, username, password, role string) *domain.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), userInput(username, password, role))
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return u
}

func TestAuthService_Login_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "jane", "pw1", "admin")

	sess, token, err := env.auth.Login(ctx, "jane", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if sess.UserID != user.ID || sess.Role != domain.RoleAdmin || sess.FullName != "User jane" {
		t.Fatalf("unexpected session %+v", sess)
	}
	if env.sessions.Len() != 1 {
		t.Fatalf("expected 1 stored session, got %d", env.sessions.Len())
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane", "pw1", "admin")

	_, _, err := env.auth.Login(context.Background(), "jane", "pw2")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if env.sessions.Len() != 0 {
		t.Fatal("failed login must not create a session")
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.auth.Login(context.Background(), "nobody", "pw1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Login_UsernameIsCaseSensitive(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "jane", "pw1", "admin")

	_, _, err := env.auth.Login(context.Background(), "Jane", "pw1")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Resolve(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "tom", "pw2", "reporter")

	sess, token, err := env.auth.Login(ctx, "tom", "pw2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, err := env.auth.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != sess.ID || got.Role != domain.RoleReporter {
		t.Fatalf("Resolve returned %+v, want session %s", got, sess.ID)
	}
}

func TestAuthService_Resolve_InvalidTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "tom", "pw2", "reporter")
	_, token, err := env.auth.Login(ctx, "tom", "pw2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	other := service.NewAuthService(env.db.Users(), env.sessions, service.NewPasswordHasher(4),
		"a-completely-different-secret-value-xyz", time.Hour)
	if _, err := other.Resolve(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("token signed with another secret: expected ErrUnauthorized, got %v", err)
	}

	for _, tok := range []string{"", "garbage", token + "x"} {
		if _, err := env.auth.Resolve(ctx, tok); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("Resolve(%q): expected ErrUnauthorized, got %v", tok, err)
		}
	}
}

func TestAuthService_Resolve_Expired(t *testing.T) {
	env := newTestEnvTTL(t, -time.Minute)
	ctx := context.Background()
	env.register(t, "tom", "pw2", "reporter")

	_, token, err := env.auth.Login(ctx, "tom", "pw2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if _, err := env.auth.Resolve(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

// plantSession stores sess directly and signs a matching token, bypassing Login.
func plantSession(t *testing.T, env *testEnv, sess *domain.Session) string {
	t.Helper()
	if err := env.sessions.Create(context.Background(), sess); err != nil {
		t.Fatalf("Create session: %v", err)
	}
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(sess.UserID, 10),
		ID:        sess.ID,
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAuthService_Resolve_RefreshesRoleFromAccount(t *testing.T) {
	env := newTestEnv(t)
	tom := env.register(t, "tom", "pw2", "reporter")

	now := time.Now().UTC()
	token := plantSession(t, env, &domain.Session{
		ID: "stale", UserID: tom.ID, Username: "tom", FullName: "Old Name",
		Role: domain.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})

	got, err := env.auth.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Role != domain.RoleReporter || got.FullName != tom.FullName {
		t.Fatalf("expected role and name from the account, got %q %q", got.Role, got.FullName)
	}
}

func TestAuthService_Resolve_MissingAccount(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()
	token := plantSession(t, env, &domain.Session{
		ID: "orphan", UserID: 999, Username: "ghost", Role: domain.RoleAdmin,
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	})

	if _, err := env.auth.Resolve(context.Background(), token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a session without an account, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "jane", "pw1", "admin")

	_, token, err := env.auth.Login(ctx, "jane", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := env.auth.Logout(ctx, token); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.Resolve(ctx, token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("token must stop resolving after logout, got %v", err)
	}

	// Logging out twice or with junk is harmless.
	if err := env.auth.Logout(ctx, token); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if err := env.auth.Logout(ctx, "junk"); err != nil {
		t.Fatalf("Logout(junk): %v", err)
	}
}

func TestAuthService_Login_TwoSessionsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "jane", "pw1", "admin")

	_, first, err := env.auth.Login(ctx, "jane", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	_, second, err := env.auth.Login(ctx, "jane", "pw1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := env.auth.Logout(ctx, first); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := env.auth.Resolve(ctx, second); err != nil {
		t.Fatalf("second session should survive logout of the first: %v", err)
	}
}
