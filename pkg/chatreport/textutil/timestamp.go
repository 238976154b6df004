package textutil

import (
	"strconv"
	"strings"
	"time"
)

// ChinaZone is the fixed UTC+8 offset all hour-of-day statistics use.
var ChinaZone = time.FixedZone("UTC+8", 8*60*60)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime resolves an exported timestamp. Timestamps without an explicit
// offset are read as UTC+8; bare integers are unix seconds or milliseconds.
// The result is expressed in UTC+8.
func ParseTime(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}

	if n, err := strconv.ParseInt(ts, 10, 64); err == nil {
		switch {
		case n > 1e12:
			return time.UnixMilli(n).In(ChinaZone), true
		case n > 0:
			return time.Unix(n, 0).In(ChinaZone), true
		default:
			return time.Time{}, false
		}
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.In(ChinaZone), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, ts, ChinaZone); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Hour returns the UTC+8 hour of day for ts, or false when ts is unresolvable.
func Hour(ts string) (int, bool) {
	t, ok := ParseTime(ts)
	if !ok {
		return 0, false
	}
	return t.Hour(), true
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC+8.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", strings.TrimSpace(s), ChinaZone)
}
