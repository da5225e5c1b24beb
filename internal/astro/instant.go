package astro

import (
	"fmt"
	"strings"
	"time"

	engerrors "github.com/litescript/ndastro/internal/errors"
)

// instantLayouts are tried in order. Layouts without a zone are read as UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseInstant parses a user-supplied instant and returns it in UTC.
// The empty string and "now" return now.
func ParseInstant(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "now") {
		return now.UTC(), nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, engerrors.NewInvalidInput(
		fmt.Sprintf("cannot parse time %q, use RFC 3339 or YYYY-MM-DD[THH:MM[:SS]]", s),
		map[string]any{"time": s})
}
