package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/handler"
	"github.com/msomdec/zatigwera/internal/repository/sqlite"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/session"
)

const testJWTSecret = "test-secret-for-handler-tests-0123456789"

type testServices struct {
	db       *sqlite.DB
	auth     *service.AuthService
	users    *service.UserService
	funerals *service.FuneralService
	limiter  *service.TokenBucket
}

func newTestServices(t *testing.T) *testServices {
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

	hasher := service.NewPasswordHasher(4)
	limiter := service.NewTokenBucket(1, 100)
	t.Cleanup(limiter.Stop)

	return &testServices{
		db:       db,
		auth:     service.NewAuthService(db.Users(), session.NewMemoryStore(), hasher, testJWTSecret, time.Hour),
		users:    service.NewUserService(db.Users(), hasher),
		funerals: service.NewFuneralService(db.Funerals()),
		limiter:  limiter,
	}
}

func (s *testServices) mux() http.Handler {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, s.auth, s.users, s.funerals, s.db, s.limiter, false)
	return handler.Wrap(mux)
}

// createUser registers a user directly through the service.
func (s *testServices) createUser(t *testing.T, fullName, username, password string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.users.Register(context.Background(), service.NewUserInput{
		FullName:        fullName,
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
		Village:         "Zomba",
		DateOfBirth:     time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:          "Female",
		Role:            string(role),
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return u
}

func (s *testServices) login(t *testing.T, username, password string) string {
	t.Helper()
	_, token, err := s.auth.Login(context.Background(), username, password)
	if err != nil {
		t.Fatalf("Login(%s): %v", username, err)
	}
	return token
}

func TestRequireAuth_ValidToken(t *testing.T) {
	svc := newTestServices(t)
	svc.createUser(t, "Valid User", "valid", "pw1", domain.RoleAdmin)
	token := svc.login(t, "valid", "pw1")

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := handler.SessionFromContext(r.Context()); sess != nil {
			gotUser = sess.FullName
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireAuth(svc.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotUser != "Valid User" {
		t.Fatalf("expected user 'Valid User', got %q", gotUser)
	}
}

func TestRequireAuth_MissingCookieRedirectsToLogin(t *testing.T) {
	svc := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()

	handler.RequireAuth(svc.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %s", loc)
	}
}

func TestRequireAuth_DatastarRequestGets401(t *testing.T) {
	svc := newTestServices(t)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Datastar-Request", "true")
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: "invalid.jwt.token"})
	w := httptest.NewRecorder()

	handler.RequireAuth(svc.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_TamperedToken(t *testing.T) {
	svc := newTestServices(t)
	svc.createUser(t, "Tamper", "tamper", "pw1", domain.RoleReporter)
	token := svc.login(t, "tamper", "pw1")
	tampered := token[:len(token)-1] + "X"

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: tampered})
	w := httptest.NewRecorder()

	handler.RequireAuth(svc.auth, inner).ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
}

func TestRequireRole_WrongRoleIsForbidden(t *testing.T) {
	svc := newTestServices(t)
	svc.createUser(t, "Tom", "tom", "pw2", domain.RoleReporter)
	token := svc.login(t, "tom", "pw2")

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("inner handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	w := httptest.NewRecorder()

	handler.RequireRole(svc.auth, domain.RoleAdmin, inner).ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	svc := newTestServices(t)
	svc.createUser(t, "Optional", "opt", "pw1", domain.RoleReporter)
	token := svc.login(t, "opt", "pw1")

	var got *domain.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = handler.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	handler.OptionalAuth(svc.auth, inner).ServeHTTP(httptest.NewRecorder(), req)
	if got == nil || got.FullName != "Optional" {
		t.Fatalf("expected session for Optional, got %+v", got)
	}

	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.OptionalAuth(svc.auth, inner).ServeHTTP(w, req)
	if w.Code != http.StatusOK || got != nil {
		t.Fatalf("expected anonymous pass-through, got status %d session %+v", w.Code, got)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := service.NewTokenBucket(0, 2)
	defer limiter.Stop()

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := handler.RateLimit(limiter, inner)

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("username=jane"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = "192.0.2.1:5000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, w.Code)
		}
	}
}

func TestRequestIDAndSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler.RequestIDFromContext(r.Context()) == "" {
			t.Fatal("expected a request ID in context")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.Wrap(inner).ServeHTTP(w, req)

	if w.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" || w.Header().Get("Content-Security-Policy") == "" {
		t.Fatalf("missing security headers: %v", w.Header())
	}

	const incoming = "6f1c7d5e-2a4b-4c3d-9e8f-0a1b2c3d4e5f"
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	w = httptest.NewRecorder()
	handler.Wrap(inner).ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != incoming {
		t.Fatalf("expected incoming request ID to be kept, got %s", got)
	}
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	hash, err := service.NewPasswordHasher(4).Hash(pw)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	return hash
}
