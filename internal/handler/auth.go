package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/view"
)

// AuthHandler handles login, logout and the root dispatch.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleRoot sends the visitor to the page for their session state.
// GET /
func (h *AuthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, SessionFromContext(r.Context()))
}

func (h *AuthHandler) dispatch(w http.ResponseWriter, r *http.Request, sess *domain.Session) {
	dest, err := service.Route(sess)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownRole) {
			slog.Error("session has no dashboard", "user", sess.Username, "role", sess.Role)
			renderForbidden(w, r, sess, "Your account's role has no dashboard. Contact an administrator.")
			return
		}
		renderServerError(w, r, "route session", err)
		return
	}
	http.Redirect(w, r, string(dest), http.StatusSeeOther)
}

// HandleLoginPage renders the login form, or forwards an already
// logged-in visitor to their dashboard.
// GET /login
func (h *AuthHandler) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess := SessionFromContext(r.Context()); sess != nil {
		h.dispatch(w, r, sess)
		return
	}
	render(w, r, http.StatusOK, view.LoginPage("", ""))
}

// HandleLogin verifies the submitted credentials and starts a session.
// POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	sess, token, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			slog.Info("login failed", "user", username, "ip", clientIP(r))
			render(w, r, http.StatusUnauthorized, view.LoginPage(username, "Invalid credentials"))
			return
		}
		slog.Error("login user", "error", err)
		render(w, r, http.StatusInternalServerError, view.LoginPage(username, "An unexpected error occurred. Please try again."))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.auth.SessionTTL().Seconds()),
	})
	slog.Info("login", "user", sess.Username, "role", sess.Role)
	h.dispatch(w, r, sess)
}

// HandleLogout ends the session and clears the cookie.
// POST /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(authCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("logout", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	http.Redirect(w, r, string(service.DestinationLogin), http.StatusSeeOther)
}

// HandleNotFound renders the 404 page for unmatched paths.
func HandleNotFound(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusNotFound,
		view.ErrorPage(view.NavFor(SessionFromContext(r.Context())), "Not found", "The page you asked for does not exist."))
}
