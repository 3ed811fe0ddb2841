package filter

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lead_management_backend/internal/leads/domain"
)

var calendarDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dayBounds expands a bare YYYY-MM-DD into the whole UTC day, inclusive to the
// millisecond. Any other literal is a single instant used for both bounds.
func dayBounds(raw string) (time.Time, time.Time, bool) {
	raw = strings.TrimSpace(raw)
	t, ok := domain.ParseTime(raw)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if calendarDate.MatchString(raw) {
		return t, t.Add(24*time.Hour - time.Millisecond), true
	}
	return t, t, true
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToLower(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func numberPtr(raw string) *float64 {
	n, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	return &n
}

func timePtr(raw string) *time.Time {
	t, ok := domain.ParseTime(raw)
	if !ok {
		return nil
	}
	return &t
}
