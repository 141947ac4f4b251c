package transport

import (
	"net/http"
	"strings"
	"time"

	"tookjai-pos/internal/domain"
)

const dateLayout = "2006-01-02"

// parseTimeParam reads an optional date or RFC 3339 timestamp from the query
// string. A bare date used as an upper bound covers the whole day.
func parseTimeParam(r *http.Request, name string, loc *time.Location, upper bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}

	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, domain.NewValidationError(name, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if upper {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

func parseRange(r *http.Request, fromName, toName string, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := parseTimeParam(r, fromName, loc, false)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseTimeParam(r, toName, loc, true)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, domain.NewValidationError(toName, "must not be before "+fromName)
	}
	return from, to, nil
}

func passthrough(next http.Handler) http.Handler {
	return next
}
