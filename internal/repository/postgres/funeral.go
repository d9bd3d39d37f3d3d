package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/zatigwera/internal/domain"
)

// FuneralRepository implements domain.FuneralRepository using Postgres.
type FuneralRepository struct {
	db *sql.DB
}

func (r *FuneralRepository) Create(ctx context.Context, rec *domain.FuneralRecord) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO funerals (full_name, age, gender, village, date_of_birth, date_of_death, cause_of_death, reported_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		rec.FullName, rec.Age, string(rec.Gender), rec.Village,
		rec.DateOfBirth, rec.DateOfDeath, rec.CauseOfDeath, rec.ReportedBy,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert funeral: %w", err)
	}
	return nil
}

func (r *FuneralRepository) List(ctx context.Context, filter domain.FuneralFilter) ([]domain.FuneralRecord, error) {
	query := `SELECT f.id, f.full_name, f.age, f.gender, f.village, f.date_of_birth, f.date_of_death,
		       f.cause_of_death, f.reported_by, COALESCE(u.full_name, ''), f.created_at
		  FROM funerals f
		  LEFT JOIN users u ON u.id = f.reported_by`
	var args []any
	if filter.ReporterID != nil {
		query += ` WHERE f.reported_by = $1`
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
			reporter sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.FullName, &rec.Age, &gender, &rec.Village,
			&rec.DateOfBirth, &rec.DateOfDeath, &rec.CauseOfDeath, &reporter,
			&rec.ReporterName, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan funeral: %w", err)
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
		query += ` WHERE reported_by = $1`
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
