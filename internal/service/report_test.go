package service_test

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []domain.FuneralRecord {
	return []domain.FuneralRecord{
		{
			ID: 2, FullName: "Amai X", Age: 93, Gender: domain.GenderFemale, Village: "Chilobwe",
			DateOfBirth: date(1930, time.January, 1), DateOfDeath: date(2023, time.June, 15),
			CauseOfDeath: "Old age, peacefully", ReporterName: "Tom",
		},
		{
			ID: 1, FullName: "Bambo \"Y\"", Age: 40, Gender: domain.GenderMale, Village: "Ndirande",
			DateOfBirth: date(1980, time.February, 2), DateOfDeath: date(2020, time.March, 3),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	want := [][]string{
		service.ExportHeader,
		{"2", "Amai X", "93", "Female", "Chilobwe", "1930-01-01", "2023-06-15", "Old age, peacefully", "Tom"},
		{"1", "Bambo \"Y\"", "40", "Male", "Ndirande", "1980-02-02", "2020-03-03", "", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("csv rows mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := service.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back csv: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := service.WriteXLSX(&buf, sampleRecords()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != "Funerals" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	if active := f.GetSheetName(f.GetActiveSheetIndex()); active != "Funerals" {
		t.Fatalf("active sheet = %q, want Funerals", active)
	}
	rows, err := f.GetRows("Funerals")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if diff := cmp.Diff(service.ExportHeader, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if rows[1][1] != "Amai X" || rows[1][2] != "93" || rows[1][8] != "Tom" {
		t.Fatalf("unexpected first data row %v", rows[1])
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		role domain.Role
		f    service.ExportFormat
		want string
	}{
		{domain.RoleAdmin, service.ExportCSV, "funerals.csv"},
		{domain.RoleAdmin, service.ExportXLSX, "funerals.xlsx"},
		{domain.RoleReporter, service.ExportCSV, "my_funerals.csv"},
		{domain.RoleReporter, service.ExportXLSX, "my_funerals.xlsx"},
	}
	for _, tt := range tests {
		if got := service.ExportFilename(tt.role, tt.f); got != tt.want {
			t.Fatalf("ExportFilename(%s, %s) = %q, want %q", tt.role, tt.f, got, tt.want)
		}
	}
}

func TestParseExportFormat(t *testing.T) {
	if f, err := service.ParseExportFormat("xlsx"); err != nil || f != service.ExportXLSX {
		t.Fatalf("ParseExportFormat(xlsx) = %q, %v", f, err)
	}
	if _, err := service.ParseExportFormat("pdf"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
