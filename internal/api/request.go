package api

import (
	"fmt"
	"time"

	"github.com/medvisit/scheduler/internal/clinicerr"
)

// parseDate reads a YYYY-MM-DD calendar date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", clinicerr.ErrValidation, s)
	}
	return t, nil
}
