package service

import (
	"fmt"
	"time"
)

// ParseDate accepts RFC 3339 timestamps and plain dates. A plain date is
// taken as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrValidation, value)
	}
	return t, nil
}
