package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/view"
)

// render writes an HTML component with the given status.
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
	}
}

func renderForbidden(w http.ResponseWriter, r *http.Request, sess *domain.Session, message string) {
	render(w, r, http.StatusForbidden, view.ErrorPage(view.NavFor(sess), "Forbidden", message))
}

// renderServerError logs err and shows the generic failure page. The
// session is left alone.
func renderServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
	render(w, r, http.StatusInternalServerError,
		view.ErrorPage(view.NavFor(SessionFromContext(r.Context())), "Something went wrong", "An unexpected error occurred. Please try again."))
}

// formError maps validation failures onto the message shown above a form.
// ok is false for errors that are not the user's to fix.
func formError(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrPasswordMismatch):
		return "Passwords do not match.", true
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "That username is already taken.", true
	case errors.Is(err, domain.ErrInvalidInput):
		detail := strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
		return sentence(detail), true
	}
	return "", false
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	s = string(unicode.ToUpper(r)) + s[size:]
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}
