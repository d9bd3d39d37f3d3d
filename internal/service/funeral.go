package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/msomdec/zatigwera/internal/domain"
)

// NewFuneralInput is the reporter's funeral logging form. Age is not part of
// the input; it is derived from the two dates.
type NewFuneralInput struct {
	FullName     string    `label:"deceased full name" validate:"required,max=120"`
	Gender       string    `label:"gender" validate:"required,oneof=Male Female"`
	Village      string    `label:"village" validate:"max=120"`
	CauseOfDeath string    `label:"cause of death" validate:"max=2000"`
	DateOfBirth  time.Time `label:"date of birth" validate:"required"`
	DateOfDeath  time.Time `label:"date of death" validate:"required"`
}

// Stats is the aggregate view over a set of funeral records.
type Stats struct {
	Total   int
	Genders []domain.GenderCount
}

// FuneralService logs funerals and answers listing and statistics queries.
type FuneralService struct {
	funerals domain.FuneralRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewFuneralService creates a new FuneralService.
func NewFuneralService(funerals domain.FuneralRepository) *FuneralService {
	return &FuneralService{
		funerals: funerals,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Log validates and stores a funeral reported by reporterID. The stored age
// is computed here, once.
func (s *FuneralService) Log(ctx context.Context, reporterID int64, in NewFuneralInput) (*domain.FuneralRecord, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Village = strings.TrimSpace(in.Village)
	in.CauseOfDeath = strings.TrimSpace(in.CauseOfDeath)

	if err := checkStruct(s.validate, in); err != nil {
		return nil, err
	}
	gender, err := domain.ParseGender(in.Gender)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := notAfterToday("date of birth", in.DateOfBirth, now); err != nil {
		return nil, err
	}
	if err := notAfterToday("date of death", in.DateOfDeath, now); err != nil {
		return nil, err
	}

	rec := &domain.FuneralRecord{
		FullName:     in.FullName,
		Age:          domain.AgeAtDeath(in.DateOfBirth, in.DateOfDeath),
		Gender:       gender,
		Village:      in.Village,
		DateOfBirth:  in.DateOfBirth,
		DateOfDeath:  in.DateOfDeath,
		CauseOfDeath: in.CauseOfDeath,
		ReportedBy:   reporterID,
	}
	if err := s.funerals.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create funeral: %w", err)
	}
	return rec, nil
}

// List returns the records in scope whose name or village matches q.
func (s *FuneralService) List(ctx context.Context, filter domain.FuneralFilter, q string) ([]domain.FuneralRecord, error) {
	records, err := s.funerals.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list funerals: %w", err)
	}
	return domain.FilterFunerals(records, q), nil
}

// Stats returns the record count and gender distribution for a scope.
func (s *FuneralService) Stats(ctx context.Context, filter domain.FuneralFilter) (*Stats, error) {
	counts, err := s.funerals.CountByGender(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count by gender: %w", err)
	}
	stats := &Stats{Genders: domain.NormalizeGenderCounts(counts)}
	for _, c := range stats.Genders {
		stats.Total += c.Count
	}
	return stats, nil
}

// PreviewAge computes the age shown on the logging form while the reporter is
// still typing. ok is false until both dates parse.
func PreviewAge(dob, dod string) (age int, ok bool) {
	birth, err := time.Parse(domain.DateLayout, strings.TrimSpace(dob))
	if err != nil {
		return 0, false
	}
	death, err := time.Parse(domain.DateLayout, strings.TrimSpace(dod))
	if err != nil {
		return 0, false
	}
	return domain.AgeAtDeath(birth, death), true
}
