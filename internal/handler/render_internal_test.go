package handler

import (
	"errors"
	"fmt"
	"testing"

	"github.com/msomdec/zatigwera/internal/domain"
)

func TestFormError(t *testing.T) {
	tests := []struct {
		err error
		msg string
		ok  bool
	}{
		{domain.ErrPasswordMismatch, "Passwords do not match.", true},
		{fmt.Errorf("create user: %w", domain.ErrDuplicateUsername), "That username is already taken.", true},
		{fmt.Errorf("%w: full name is required", domain.ErrInvalidInput), "Full name is required.", true},
		{errors.New("disk full"), "", false},
	}
	for _, tt := range tests {
		msg, ok := formError(tt.err)
		if msg != tt.msg || ok != tt.ok {
			t.Fatalf("formError(%v) = %q, %v; want %q, %v", tt.err, msg, ok, tt.msg, tt.ok)
		}
	}
}
