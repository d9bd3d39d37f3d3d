package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/xuri/excelize/v2"
)

// ExportFormat selects the encoding of a records export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

// ParseExportFormat accepts "csv" or "xlsx".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportCSV, ExportXLSX:
		return ExportFormat(s), nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, s)
}

func (f ExportFormat) ContentType() string {
	if f == ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// ExportFilename names the download: administrators export the whole
// registry, reporters only their own records.
func ExportFilename(role domain.Role, f ExportFormat) string {
	if role == domain.RoleReporter {
		return "my_funerals." + string(f)
	}
	return "funerals." + string(f)
}

const exportSheet = "Funerals"

// ExportHeader is the column set shared by the CSV and XLSX exports.
var ExportHeader = []string{
	"ID",
	"Full Name",
	"Age",
	"Gender",
	"Village",
	"Date of Birth",
	"Date of Death",
	"Cause of Death",
	"Reporter",
}

// WriteExport encodes records in the given format.
func WriteExport(w io.Writer, f ExportFormat, records []domain.FuneralRecord) error {
	switch f {
	case ExportCSV:
		return WriteCSV(w, records)
	case ExportXLSX:
		return WriteXLSX(w, records)
	}
	return fmt.Errorf("%w: unknown export format %q", domain.ErrInvalidInput, f)
}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []domain.FuneralRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.FullName,
			strconv.Itoa(r.Age),
			string(r.Gender),
			r.Village,
			r.DateOfBirth.Format(domain.DateLayout),
			r.DateOfDeath.Format(domain.DateLayout),
			r.CauseOfDeath,
			r.ReporterName,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, records []domain.FuneralRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(exportSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(exportSheet)
	if err != nil {
		return fmt.Errorf("find sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		row := []any{
			r.ID,
			r.FullName,
			r.Age,
			string(r.Gender),
			r.Village,
			r.DateOfBirth.Format(domain.DateLayout),
			r.DateOfDeath.Format(domain.DateLayout),
			r.CauseOfDeath,
			r.ReporterName,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	widths := map[string]float64{"A": 8, "B": 28, "C": 6, "D": 10, "E": 20, "F": 14, "G": 14, "H": 36, "I": 24}
	for col, width := range widths {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
