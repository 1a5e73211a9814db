// utils/dates.go
package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned (wrapped) by EnsureISODate.
var ErrInvalidDate = errors.New("invalid date")

// EnsureISODate parses a calendar date and returns it as YYYY-MM-DD.
// Month and day may omit their leading zero ("2025-3-7"); anything else,
// including times and surrounding text, is rejected.
func EnsureISODate(s string) (string, error) {
	for _, layout := range []string{"2006-01-02", "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w (expected YYYY-MM-DD): %s", ErrInvalidDate, s)
}

// NormalizeRouteDate is EnsureISODate for optional inputs: blank stays blank.
func NormalizeRouteDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	return EnsureISODate(s)
}
