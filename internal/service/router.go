package service

import (
	"fmt"

	"github.com/msomdec/zatigwera/internal/domain"
)

// Destination is the landing page for a session state.
type Destination string

const (
	DestinationLogin    Destination = "/login"
	DestinationAdmin    Destination = "/admin"
	DestinationReporter Destination = "/reporter"
)

// Route dispatches a session to its dashboard. A nil session is the
// logged-out state. Roles without a dashboard are reported as
// domain.ErrUnknownRole instead of falling through.
func Route(sess *domain.Session) (Destination, error) {
	if sess == nil {
		return DestinationLogin, nil
	}
	switch sess.Role {
	case domain.RoleAdmin:
		return DestinationAdmin, nil
	case domain.RoleReporter:
		return DestinationReporter, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownRole, sess.Role)
}

// Authorize checks that sess may use pages reserved for role.
func Authorize(sess *domain.Session, role domain.Role) error {
	if sess == nil {
		return domain.ErrUnauthorized
	}
	if sess.Role != role {
		return fmt.Errorf("%w: %s pages require the %s role", domain.ErrForbidden, role, role)
	}
	return nil
}

// RecordScope returns the funeral records a session may see: everything for
// administrators, only their own submissions for reporters.
func RecordScope(sess *domain.Session) (domain.FuneralFilter, error) {
	if sess == nil {
		return domain.FuneralFilter{}, domain.ErrUnauthorized
	}
	switch sess.Role {
	case domain.RoleAdmin:
		return domain.AllFunerals(), nil
	case domain.RoleReporter:
		return domain.FuneralsByReporter(sess.UserID), nil
	}
	return domain.FuneralFilter{}, fmt.Errorf("%w: %q", domain.ErrUnknownRole, sess.Role)
}
