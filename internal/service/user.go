package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/msomdec/zatigwera/internal/domain"
)

// bcrypt ignores input past 72 bytes.
const maxPasswordBytes = 72

// NewUserInput is the administrator's user registration form.
type NewUserInput struct {
	FullName        string    `label:"full name" validate:"required,max=120"`
	Username        string    `label:"username" validate:"required,max=50"`
	Password        string    `label:"password" validate:"required"`
	ConfirmPassword string    `label:"password confirmation"`
	Village         string    `label:"village" validate:"max=120"`
	DateOfBirth     time.Time `label:"date of birth" validate:"required"`
	Gender          string    `label:"gender" validate:"required,oneof=Male Female"`
	Role            string    `label:"role" validate:"required"`
}

// UserService registers users on behalf of administrators.
type UserService struct {
	users     domain.UserRepository
	passwords *PasswordHasher
	validate  *validator.Validate
	now       func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository, passwords *PasswordHasher) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		validate:  newValidator(),
		now:       time.Now,
	}
}

// Register validates the form and creates the user. Password mismatch yields
// domain.ErrPasswordMismatch and a taken username domain.ErrDuplicateUsername;
// other bad input yields domain.ErrInvalidInput.
func (s *UserService) Register(ctx context.Context, in NewUserInput) (*domain.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Village = strings.TrimSpace(in.Village)

	if err := checkStruct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be %d bytes or fewer", domain.ErrInvalidInput, maxPasswordBytes)
	}
	if strings.ContainsAny(in.Username, " \t\r\n") {
		return nil, fmt.Errorf("%w: username cannot contain spaces", domain.ErrInvalidInput)
	}

	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	gender, err := domain.ParseGender(in.Gender)
	if err != nil {
		return nil, err
	}
	if err := notAfterToday("date of birth", in.DateOfBirth, s.now()); err != nil {
		return nil, err
	}

	// Fast path for a friendly message; the unique index is the real guard.
	exists, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     in.FullName,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		Village:      in.Village,
		DateOfBirth:  in.DateOfBirth,
		Gender:       gender,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
