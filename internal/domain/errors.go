package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrUnknownRole       = errors.New("unknown role")
	ErrInvalidInput      = errors.New("invalid input")
)
