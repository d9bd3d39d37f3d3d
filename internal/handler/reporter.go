package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/view"
	"github.com/starfederation/datastar-go/datastar"
)

// ReporterHandler serves the reporter landing page and the funeral form.
type ReporterHandler struct {
	funerals *service.FuneralService
}

// NewReporterHandler creates a new ReporterHandler.
func NewReporterHandler(funerals *service.FuneralService) *ReporterHandler {
	return &ReporterHandler{funerals: funerals}
}

// HandleHome welcomes the reporter with a count of their submissions.
// GET /reporter
func (h *ReporterHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	stats, err := h.funerals.Stats(r.Context(), domain.FuneralsByReporter(sess.UserID))
	if err != nil {
		renderServerError(w, r, "reporter stats", err)
		return
	}
	render(w, r, http.StatusOK, view.ReporterHomePage(view.NavFor(sess), stats.Total))
}

// HandleNewFuneral renders the empty logging form.
// GET /reporter/funerals/new
func (h *ReporterHandler) HandleNewFuneral(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	render(w, r, http.StatusOK, view.FuneralFormPage(view.NavFor(sess), view.FuneralForm{}, view.AgePreview{}, "", ""))
}

// HandleCreateFuneral stores the submitted funeral. The age is recomputed
// server-side regardless of what the form showed.
// POST /reporter/funerals
func (h *ReporterHandler) HandleCreateFuneral(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	nav := view.NavFor(sess)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.FuneralForm{
		FullName:     r.FormValue("full_name"),
		Gender:       r.FormValue("gender"),
		Village:      r.FormValue("village"),
		CauseOfDeath: r.FormValue("cause_of_death"),
		DateOfBirth:  r.FormValue("date_of_birth"),
		DateOfDeath:  r.FormValue("date_of_death"),
	}
	age, ok := service.PreviewAge(form.DateOfBirth, form.DateOfDeath)
	preview := view.AgePreview{Age: age, OK: ok}

	rec, err := h.logFuneral(r, sess.UserID, form)
	if err != nil {
		if msg, ok := formError(err); ok {
			render(w, r, http.StatusUnprocessableEntity, view.FuneralFormPage(nav, form, preview, msg, ""))
			return
		}
		renderServerError(w, r, "log funeral", err)
		return
	}

	success := "Funeral of " + rec.FullName + " recorded."
	render(w, r, http.StatusOK, view.FuneralFormPage(nav, view.FuneralForm{}, view.AgePreview{}, "", success))
}

func (h *ReporterHandler) logFuneral(r *http.Request, reporterID int64, form view.FuneralForm) (*domain.FuneralRecord, error) {
	dob, err := parseDateField("date of birth", form.DateOfBirth)
	if err != nil {
		return nil, err
	}
	dod, err := parseDateField("date of death", form.DateOfDeath)
	if err != nil {
		return nil, err
	}
	return h.funerals.Log(r.Context(), reporterID, service.NewFuneralInput{
		FullName:     form.FullName,
		Gender:       form.Gender,
		Village:      form.Village,
		CauseOfDeath: form.CauseOfDeath,
		DateOfBirth:  dob,
		DateOfDeath:  dod,
	})
}

// HandleAgePreview recomputes the read-only age field as the dates change.
// GET /reporter/funerals/age
func (h *ReporterHandler) HandleAgePreview(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		DOB string `json:"dob"`
		DOD string `json:"dod"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	age, ok := service.PreviewAge(signals.DOB, signals.DOD)

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.AgeField(view.AgePreview{Age: age, OK: ok})); err != nil {
		slog.Error("patch age preview", "error", err)
	}
}
