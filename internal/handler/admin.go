package handler

import (
	"net/http"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
	"github.com/msomdec/zatigwera/internal/view"
)

// AdminHandler serves the administrator dashboard and user registration.
type AdminHandler struct {
	users    *service.UserService
	funerals *service.FuneralService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users *service.UserService, funerals *service.FuneralService) *AdminHandler {
	return &AdminHandler{users: users, funerals: funerals}
}

// HandleStats renders the record total, gender chart and full table.
// GET /admin, GET /admin/stats
func (h *AdminHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	stats, err := h.funerals.Stats(r.Context(), domain.AllFunerals())
	if err != nil {
		renderServerError(w, r, "funeral stats", err)
		return
	}
	records, err := h.funerals.List(r.Context(), domain.AllFunerals(), "")
	if err != nil {
		renderServerError(w, r, "list funerals", err)
		return
	}

	render(w, r, http.StatusOK, view.AdminHomePage(view.NavFor(sess), stats.Total, records))
}

// HandleNewUser renders the empty registration form.
// GET /admin/users/new
func (h *AdminHandler) HandleNewUser(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	form := view.UserForm{Role: string(domain.RoleReporter)}
	render(w, r, http.StatusOK, view.RegisterUserPage(view.NavFor(sess), form, "", ""))
}

// HandleCreateUser registers a user from the submitted form.
// POST /admin/users
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	nav := view.NavFor(sess)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := view.UserForm{
		FullName:    r.FormValue("full_name"),
		Username:    r.FormValue("username"),
		Village:     r.FormValue("village"),
		DateOfBirth: r.FormValue("date_of_birth"),
		Gender:      r.FormValue("gender"),
		Role:        r.FormValue("role"),
	}

	dob, err := parseDateField("date of birth", form.DateOfBirth)
	if err == nil {
		_, err = h.users.Register(r.Context(), service.NewUserInput{
			FullName:        form.FullName,
			Username:        form.Username,
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
			Village:         form.Village,
			DateOfBirth:     dob,
			Gender:          form.Gender,
			Role:            form.Role,
		})
	}
	if err != nil {
		if msg, ok := formError(err); ok {
			render(w, r, http.StatusUnprocessableEntity, view.RegisterUserPage(nav, form, msg, ""))
			return
		}
		renderServerError(w, r, "register user", err)
		return
	}

	success := "User " + form.Username + " registered."
	render(w, r, http.StatusOK, view.RegisterUserPage(nav, view.UserForm{Role: string(domain.RoleReporter)}, "", success))
}
