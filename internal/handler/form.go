package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/zatigwera/internal/domain"
)

// parseDateField parses a YYYY-MM-DD form value. An empty value yields the
// zero time, left for the service's required check to reject.
func parseDateField(label, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", domain.ErrInvalidInput, label)
	}
	return t, nil
}
