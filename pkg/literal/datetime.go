package literal

import (
	"strings"
	"time"

	"github.com/sandrolain/gorule/pkg/types"
)

// Layouts carrying an explicit offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	time.RFC1123Z,
	time.RFC1123,
}

// Layouts without an offset; they are read in the default location.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDatetime parses an ISO-8601 / RFC 3339 datetime or date. Values
// without an offset are interpreted in loc, or UTC when loc is nil.
// The result is always expressed in UTC.
func ParseDatetime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, types.NewLiteralError(types.ErrDatetimeSyntax, "invalid datetime", s)
}
