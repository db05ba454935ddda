package weather

import (
	"strings"
	"time"
)

var localLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseLocalTime parses an ISO-8601 timestamp as reported by forecast APIs.
// Timestamps without a zone are interpreted in loc.
func ParseLocalTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	var err error
	for _, layout := range localLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// SelectCurrentIndex picks the entry of an ordered timestamp series that
// represents "now". When now falls on an hour boundary the entry in the same
// hour bucket wins; otherwise the first entry at or after now; otherwise 0.
// It returns -1 for an empty series.
func SelectCurrentIndex(times []string, now time.Time, loc *time.Location) int {
	if len(times) == 0 {
		return -1
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	if now.Equal(now.Truncate(time.Hour)) {
		bucket := now.Format("2006-01-02T15")
		for i, ts := range times {
			if strings.HasPrefix(ts, bucket) {
				return i
			}
		}
	}

	for i, ts := range times {
		t, err := ParseLocalTime(ts, loc)
		if err != nil {
			continue
		}
		if !t.Before(now) {
			return i
		}
	}

	return 0
}
