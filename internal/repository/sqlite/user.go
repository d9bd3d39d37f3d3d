package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

const userColumns = `id, full_name, username, password_hash, role, village, date_of_birth, gender, created_at`

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (full_name, username, password_hash, role, village, date_of_birth, gender, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.FullName, user.Username, user.PasswordHash, string(user.Role), user.Village,
		user.DateOfBirth.Format(domain.DateLayout), string(user.Gender), now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return user, nil
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
		gen  string
		dob  string
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.PasswordHash, &role,
		&u.Village, &dob, &gen, &u.CreatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(domain.DateLayout, dob)
	if err != nil {
		return nil, fmt.Errorf("parse date_of_birth %q: %w", dob, err)
	}
	u.DateOfBirth = parsed
	u.Role = domain.Role(role)
	u.Gender = domain.Gender(gen)
	return &u, nil
}
