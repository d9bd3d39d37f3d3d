package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
)

func TestUserService_Register_Success(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := userInput("  tom  ", "pw2", "reporter")
	in.FullName = "  Tom  "
	user, err := env.users.Register(ctx, in)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if user.Username != "tom" || user.FullName != "Tom" {
		t.Fatalf("expected trimmed fields, got %q / %q", user.Username, user.FullName)
	}
	if user.Role != domain.RoleReporter {
		t.Fatalf("expected reporter role, got %q", user.Role)
	}
	if user.PasswordHash == "pw2" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("password must be stored as a bcrypt hash, got %q", user.PasswordHash)
	}

	exists, err := env.db.Users().UsernameExists(ctx, "tom")
	if err != nil || !exists {
		t.Fatalf("UsernameExists(tom) = %v, %v", exists, err)
	}
}

func TestUserService_Register_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "tom", "pw2", "reporter")

	_, err := env.users.Register(context.Background(), userInput("tom", "other", "admin"))
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUserService_Register_PasswordMismatch(t *testing.T) {
	env := newTestEnv(t)

	in := userInput("tom", "pw2", "reporter")
	in.ConfirmPassword = "pw3"
	_, err := env.users.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if exists, _ := env.db.Users().UsernameExists(context.Background(), "tom"); exists {
		t.Fatal("user must not be created on mismatch")
	}
}

func TestUserService_Register_InvalidInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		mutate func(*service.NewUserInput)
	}{
		{"missing full name", func(in *service.NewUserInput) { in.FullName = "   " }},
		{"missing username", func(in *service.NewUserInput) { in.Username = "" }},
		{"missing password", func(in *service.NewUserInput) { in.Password, in.ConfirmPassword = "", "" }},
		{"username with space", func(in *service.NewUserInput) { in.Username = "to m" }},
		{"unknown role", func(in *service.NewUserInput) { in.Role = "superuser" }},
		{"unknown gender", func(in *service.NewUserInput) { in.Gender = "x" }},
		{"missing date of birth", func(in *service.NewUserInput) { in.DateOfBirth = time.Time{} }},
		{"future date of birth", func(in *service.NewUserInput) { in.DateOfBirth = time.Now().AddDate(1, 0, 0) }},
		{"password too long", func(in *service.NewUserInput) {
			in.Password = strings.Repeat("a", 73)
			in.ConfirmPassword = in.Password
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := userInput("tom", "pw2", "reporter")
			tt.mutate(&in)
			_, err := env.users.Register(context.Background(), in)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUserService_Register_AdministratorSynonym(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.users.Register(context.Background(), userInput("jane", "pw1", "administrator"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}
}
