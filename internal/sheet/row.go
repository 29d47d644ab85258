package sheet

import (
	"strconv"
	"strings"
	"time"
)

// Accessors below coerce the loosely typed cell values the script returns.
// Each degrades to a zero value instead of failing so a single odd cell never
// rejects the whole row.

// String returns the cell as a string.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Bool interprets true, "true" and "TRUE" as true.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// Int64 parses the cell as an integer, returning 0 when it cannot.
func (r Row) Int64(key string) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// OptionalInt distinguishes an absent or unparseable cell (nil) from a
// numeric one. A literal 0 stays 0.
func (r Row) OptionalInt(key string) *int {
	switch v := r[key].(type) {
	case float64:
		n := int(v)
		return &n
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// Time parses an RFC3339 timestamp cell, returning the zero time when it
// cannot. Zero times sort last under the newest-first convention.
func (r Row) Time(key string) time.Time {
	s := r.String(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
