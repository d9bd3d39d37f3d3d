// Package postgres is the Postgres-backed record store, selected with
// DATABASE_DRIVER=postgres. It mirrors the SQLite store statement for
// statement, using $n placeholders.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/migrations"
	"github.com/msomdec/zatigwera/internal/repository/postgres/schema"
)

const uniqueViolation = pq.ErrorCode("23505")

// DB is the Postgres-backed record store. It implements domain.Database.
type DB struct {
	SqlDB    *sql.DB
	users    *UserRepository
	funerals *FuneralRepository
}

// New connects to Postgres using a lib/pq connection string or URL.
func New(ctx context.Context, dsn string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return Wrap(sqlDB), nil
}

// Wrap builds a DB around an already-open handle.
func Wrap(sqlDB *sql.DB) *DB {
	return &DB{
		SqlDB:    sqlDB,
		users:    &UserRepository{db: sqlDB},
		funerals: &FuneralRepository{db: sqlDB},
	}
}

// Migrate applies the embedded Postgres schema.
func (db *DB) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, db.SqlDB, migrations.Source{FS: schema.FS, Placeholder: "$1"})
}

func (db *DB) Ping(ctx context.Context) error {
	return db.SqlDB.PingContext(ctx)
}

func (db *DB) Close() error {
	return db.SqlDB.Close()
}

func (db *DB) Users() domain.UserRepository {
	return db.users
}

func (db *DB) Funerals() domain.FuneralRepository {
	return db.funerals
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
