package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// RecordsHandler lists, searches, exports and charts funeral records. The
// same handler serves both roles; what a session sees is decided by
// service.RecordScope.
type RecordsHandler struct {
	funerals *service.FuneralService
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(funerals *service.FuneralService) *RecordsHandler {
	return &RecordsHandler{funerals: funerals}
}

// recordsView fills in the role-specific paths and headings.
func recordsView(role domain.Role) view.RecordsView {
	if role == domain.RoleAdmin {
		return view.RecordsView{
			Heading:    "Funeral records",
			Admin:      true,
			BasePath:   "/admin/records",
			ChartsPath: "/admin/charts",
		}
	}
	return view.RecordsView{
		Heading:    "My funeral records",
		BasePath:   "/reporter/records",
		ChartsPath: "/reporter/charts",
	}
}

// scope resolves the session's record filter, writing the error response
// itself when there is none.
func (h *RecordsHandler) scope(w http.ResponseWriter, r *http.Request) (*domain.Session, domain.FuneralFilter, bool) {
	sess := SessionFromContext(r.Context())
	filter, err := service.RecordScope(sess)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return nil, filter, false
		}
		slog.Error("record scope", "error", err)
		renderForbidden(w, r, sess, "Your account's role cannot view funeral records.")
		return nil, filter, false
	}
	return sess, filter, true
}

// HandleList renders the records page, filtered by the q query parameter.
// GET /admin/records, GET /reporter/records
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sess, filter, ok := h.scope(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	records, err := h.funerals.List(r.Context(), filter, q)
	if err != nil {
		renderServerError(w, r, "list funerals", err)
		return
	}

	rv := recordsView(sess.Role)
	rv.Query = q
	rv.Records = records
	render(w, r, http.StatusOK, view.RecordsPage(view.NavFor(sess), rv))
}

// HandleSearch patches the results (exports, table and pie) as the search
// box changes.
// GET /admin/records/search, GET /reporter/records/search
func (h *RecordsHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	sess, filter, ok := h.scope(w, r)
	if !ok {
		return
	}
	var signals struct {
		Q string `json:"q"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	q := strings.TrimSpace(signals.Q)
	records, err := h.funerals.List(r.Context(), filter, q)
	if err != nil {
		slog.Error("search funerals", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	rv := recordsView(sess.Role)
	rv.Query = q
	rv.Records = records
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.RecordsResults(rv)); err != nil {
		slog.Error("patch search results", "error", err)
	}
}

// HandleExport downloads the filtered records as CSV or XLSX.
// GET /admin/records/export/{format}, GET /reporter/records/export/{format}
func (h *RecordsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	sess, filter, ok := h.scope(w, r)
	if !ok {
		return
	}
	format, err := service.ParseExportFormat(r.PathValue("format"))
	if err != nil {
		HandleNotFound(w, r)
		return
	}

	records, err := h.funerals.List(r.Context(), filter, r.URL.Query().Get("q"))
	if err != nil {
		renderServerError(w, r, "list funerals for export", err)
		return
	}

	// Encode fully before writing so a failure can still become an error page.
	var buf bytes.Buffer
	if err := service.WriteExport(&buf, format, records); err != nil {
		renderServerError(w, r, "export funerals", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+service.ExportFilename(sess.Role, format)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("write export", "error", err)
	}
}

// HandleChart serves a gender-distribution chart for the session's scope,
// narrowed to the records matching the q query parameter when given.
// GET /admin/charts/{chart}, GET /reporter/charts/{chart}
func (h *RecordsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	_, filter, ok := h.scope(w, r)
	if !ok {
		return
	}

	counts, err := h.genderCounts(r, filter, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		slog.Error("chart counts", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	svg, err := service.RenderChart(service.ChartKind(r.PathValue("chart")), counts)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("render chart", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if svg == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(svg); err != nil {
		slog.Error("write chart", "error", err)
	}
}

// genderCounts aggregates in the store for a whole scope and over the
// matching records when a query narrows it.
func (h *RecordsHandler) genderCounts(r *http.Request, filter domain.FuneralFilter, q string) ([]domain.GenderCount, error) {
	if q == "" {
		stats, err := h.funerals.Stats(r.Context(), filter)
		if err != nil {
			return nil, err
		}
		return stats.Genders, nil
	}
	records, err := h.funerals.List(r.Context(), filter, q)
	if err != nil {
		return nil, err
	}
	return domain.CountGenders(records), nil
}
