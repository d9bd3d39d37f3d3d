package service

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/msomdec/zatigwera/internal/domain"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form label rather than the Go field name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// checkStruct runs tag validation and converts the first failure into a
// domain.ErrInvalidInput carrying a message fit for the form.
func checkStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate input: %w", err)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, fe.Field())
	case "max":
		return fmt.Errorf("%w: %s must be %s characters or fewer", domain.ErrInvalidInput, fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%w: %s must be one of %s", domain.ErrInvalidInput, fe.Field(), fe.Param())
	}
	return fmt.Errorf("%w: %s is invalid", domain.ErrInvalidInput, fe.Field())
}

// notAfterToday rejects dates later than the current calendar day. Dates are
// compared as calendar days, ignoring the time of day.
func notAfterToday(label string, d, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		return fmt.Errorf("%w: %s cannot be in the future", domain.ErrInvalidInput, label)
	}
	return nil
}
