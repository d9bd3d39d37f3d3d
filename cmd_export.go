package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/spf13/cobra"
)

var exportFlags struct {
	format   string
	reporter string
	query    string
	out      string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export funeral records as CSV or XLSX",
	Long: `export writes funeral records in the same layout as the web download.
Without --reporter every record is exported; with it, only the records that
reporter logged.`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.format, "format", "f", string(service.ExportCSV), "csv or xlsx")
	f.StringVar(&exportFlags.reporter, "reporter", "", "limit to records logged by this username")
	f.StringVarP(&exportFlags.query, "query", "q", "", "filter by deceased name or village")
	f.StringVarP(&exportFlags.out, "out", "o", "", "output file (default: the web download name)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, flush, err := setup()
	if err != nil {
		return err
	}
	defer flush()

	format, err := service.ParseExportFormat(exportFlags.format)
	if err != nil {
		return err
	}

	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	filter, role := domain.AllFunerals(), domain.RoleAdmin
	if exportFlags.reporter != "" {
		user, err := db.Users().GetByUsername(cmd.Context(), exportFlags.reporter)
		if err != nil {
			return fmt.Errorf("look up reporter %q: %w", exportFlags.reporter, err)
		}
		filter, role = domain.FuneralsByReporter(user.ID), domain.RoleReporter
	}

	records, err := service.NewFuneralService(db.Funerals()).List(cmd.Context(), filter, exportFlags.query)
	if err != nil {
		return err
	}

	out := exportFlags.out
	if out == "" {
		out = service.ExportFilename(role, format)
	}
	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := service.WriteExport(w, format, records); err != nil {
		return err
	}
	slog.Info("records exported", "count", len(records), "format", format, "out", out)
	return nil
}
