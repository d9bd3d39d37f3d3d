package domain

import (
	"context"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// FuneralRecord is one logged funeral. Age is derived from the two dates
// when the record is created and stored; it is never recomputed.
type FuneralRecord struct {
	ID           int64
	FullName     string
	Age          int
	Gender       Gender
	Village      string
	DateOfBirth  time.Time
	DateOfDeath  time.Time
	CauseOfDeath string
	ReportedBy   int64
	ReporterName string // joined from users.full_name, empty if the reporter is gone
	CreatedAt    time.Time
}

// FuneralFilter scopes a listing to every record or to one reporter's records.
type FuneralFilter struct {
	ReporterID *int64
}

// AllFunerals selects every record.
func AllFunerals() FuneralFilter {
	return FuneralFilter{}
}

// FuneralsByReporter selects the records logged by one user.
func FuneralsByReporter(userID int64) FuneralFilter {
	return FuneralFilter{ReporterID: &userID}
}

// GenderCount is one bucket of a gender distribution.
type GenderCount struct {
	Gender Gender
	Count  int
}

// FuneralRepository defines persistence operations for funeral records.
type FuneralRepository interface {
	Create(ctx context.Context, record *FuneralRecord) error
	List(ctx context.Context, filter FuneralFilter) ([]FuneralRecord, error)
	CountByGender(ctx context.Context, filter FuneralFilter) ([]GenderCount, error)
}
