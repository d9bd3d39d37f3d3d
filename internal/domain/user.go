package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role is the tagged set of user roles. The zero value is not a valid role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleReporter Role = "reporter"
)

// ParseRole maps user-supplied text onto a known role. "administrator" is
// accepted as a synonym for the stored "admin" value.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator":
		return RoleAdmin, nil
	case "reporter":
		return RoleReporter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Label is the human-readable role name shown in the navbar.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleReporter:
		return "Reporter"
	}
	return string(r)
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Genders lists the selectable genders in display order.
var Genders = []Gender{GenderMale, GenderFemale}

// ParseGender accepts a gender case-insensitively and returns its canonical form.
func ParseGender(s string) (Gender, error) {
	for _, g := range Genders {
		if strings.EqualFold(strings.TrimSpace(s), string(g)) {
			return g, nil
		}
	}
	return "", fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, s)
}

// User represents a registered administrator or reporter.
type User struct {
	ID           int64
	FullName     string
	Username     string
	PasswordHash string
	Role         Role
	Village      string
	DateOfBirth  time.Time
	Gender       Gender
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}
