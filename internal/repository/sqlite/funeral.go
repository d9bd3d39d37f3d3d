package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
)

// FuneralRepository implements domain.FuneralRepository using SQLite.
type FuneralRepository struct {
	db *sql.DB
}

// NewFuneralRepository creates a new SQLite-backed FuneralRepository.
func NewFuneralRepository(db *DB) *FuneralRepository {
	return &FuneralRepository{db: db.SqlDB}
}

func (r *FuneralRepository) Create(ctx context.Context, rec *domain.FuneralRecord) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO funerals (full_name, age, gender, village, date_of_birth, date_of_death, cause_of_death, reported_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.FullName, rec.Age, string(rec.Gender), rec.Village,
		rec.DateOfBirth.Format(domain.DateLayout), rec.DateOfDeath.Format(domain.DateLayout),
		rec.CauseOfDeath, rec.ReportedBy, now,
	)
	if err != nil {
		return fmt.Errorf("insert funeral: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	rec.ID = id
	rec.CreatedAt = now
	return nil
}

func (r *FuneralRepository) List(ctx context.Context, filter domain.FuneralFilter) ([]domain.FuneralRecord, error) {
	query := `SELECT f.id, f.full_name, f.age, f.gender, f.village, f.date_of_birth, f.date_of_death,
		       f.cause_of_death, f.reported_by, COALESCE(u.full_name, ''), f.created_at
		  FROM funerals f
		  LEFT JOIN users u ON u.id = f.reported_by`
	var args []any
	if filter.ReporterID != nil {
		query += ` WHERE f.reported_by = ?`
		args = append(args, *filter.ReporterID)
	}
	query += ` ORDER BY f.date_of_death DESC, f.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list funerals: %w", err)
	}
	defer rows.Close()

	var records []domain.FuneralRecord
	for rows.Next() {
		var (
			rec      domain.FuneralRecord
			gender   string
			dob, dod string
			reporter sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.Age, &gender, &rec.Village, &dob, &dod,
			&rec.CauseOfDeath, &reporter, &rec.ReporterName, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan funeral: %w", err)
		}
		if rec.DateOfBirth, err = time.Parse(domain.DateLayout, dob); err != nil {
			return nil, fmt.Errorf("parse date_of_birth %q: %w", dob, err)
		}
		if rec.DateOfDeath, err = time.Parse(domain.DateLayout, dod); err != nil {
			return nil, fmt.Errorf("parse date_of_death %q: %w", dod, err)
		}
		rec.Gender = domain.Gender(gender)
		rec.ReportedBy = reporter.Int64
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *FuneralRepository) CountByGender(ctx context.Context, filter domain.FuneralFilter) ([]domain.GenderCount, error) {
	query := `SELECT gender, COUNT(*) FROM funerals`
	var args []any
	if filter.ReporterID != nil {
		query += ` WHERE reported_by = ?`
		args = append(args, *filter.ReporterID)
	}
	query += ` GROUP BY gender ORDER BY gender`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count funerals by gender: %w", err)
	}
	defer rows.Close()

	var counts []domain.GenderCount
	for rows.Next() {
		var c domain.GenderCount
		if err := rows.Scan(&c.Gender, &c.Count); err != nil {
			return nil, fmt.Errorf("scan gender count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
