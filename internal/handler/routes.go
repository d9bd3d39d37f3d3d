package handler

import (
	"net/http"

	"github.com/msomdec/zatigwera/internal/domain"
	"github.com/msomdec/zatigwera/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, users *service.UserService, funerals *service.FuneralService, db Pinger, limiter *service.TokenBucket, cookieSecure bool) {
	authHandler := NewAuthHandler(auth, cookieSecure)
	adminHandler := NewAdminHandler(users, funerals)
	reporterHandler := NewReporterHandler(funerals)
	recordsHandler := NewRecordsHandler(funerals)

	admin := func(h http.HandlerFunc) http.Handler { return RequireRole(auth, domain.RoleAdmin, h) }
	reporter := func(h http.HandlerFunc) http.Handler { return RequireRole(auth, domain.RoleReporter, h) }

	mux.HandleFunc("GET /healthz", HandleHealthz(db))

	mux.Handle("GET /{$}", OptionalAuth(auth, http.HandlerFunc(authHandler.HandleRoot)))
	mux.Handle("GET /login", OptionalAuth(auth, http.HandlerFunc(authHandler.HandleLoginPage)))
	mux.Handle("POST /login", RateLimit(limiter, http.HandlerFunc(authHandler.HandleLogin)))
	mux.HandleFunc("POST /logout", authHandler.HandleLogout)

	// Administrator pages.
	mux.Handle("GET /admin", admin(adminHandler.HandleStats))
	mux.Handle("GET /admin/stats", admin(adminHandler.HandleStats))
	mux.Handle("GET /admin/users/new", admin(adminHandler.HandleNewUser))
	mux.Handle("POST /admin/users", admin(adminHandler.HandleCreateUser))
	mux.Handle("GET /admin/records", admin(recordsHandler.HandleList))
	mux.Handle("GET /admin/records/search", admin(recordsHandler.HandleSearch))
	mux.Handle("GET /admin/records/export/{format}", admin(recordsHandler.HandleExport))
	mux.Handle("GET /admin/charts/{chart}", admin(recordsHandler.HandleChart))

	// Reporter pages.
	mux.Handle("GET /reporter", reporter(reporterHandler.HandleHome))
	mux.Handle("GET /reporter/funerals/new", reporter(reporterHandler.HandleNewFuneral))
	mux.Handle("POST /reporter/funerals", reporter(reporterHandler.HandleCreateFuneral))
	mux.Handle("GET /reporter/funerals/age", reporter(reporterHandler.HandleAgePreview))
	mux.Handle("GET /reporter/records", reporter(recordsHandler.HandleList))
	mux.Handle("GET /reporter/records/search", reporter(recordsHandler.HandleSearch))
	mux.Handle("GET /reporter/records/export/{format}", reporter(recordsHandler.HandleExport))
	mux.Handle("GET /reporter/charts/{chart}", reporter(recordsHandler.HandleChart))

	mux.Handle("/", OptionalAuth(auth, http.HandlerFunc(HandleNotFound)))
}

// Wrap applies the middleware shared by every route.
func Wrap(mux http.Handler) http.Handler {
	return RequestID(SecurityHeaders(mux))
}
