package reminder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	relativeRe = regexp.MustCompile(`^in\s+(\d+)\s*(m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days|w|week|weeks)$`)
	clockRe    = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(am|pm)?$`)
)

var absoluteLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DefaultDue is the due time used when none is given: 09:00 today in loc.
func DefaultDue(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 9, 0, 0, 0, loc)
}

// ParseDue turns a user supplied due time into an instant. Accepted forms:
//
//	2025-01-15T09:00:00Z   RFC3339
//	2025-01-15 09:00       date and time in loc
//	2025-01-15             date, 09:00 in loc
//	now
//	in 2 hours, in 30m     relative to now
//	90m, 1h30m             Go durations, relative to now
//	15:30, 3pm, 9:15am     today in loc
//	today 5pm, tomorrow    day keyword with optional time (default 09:00)
func ParseDue(text string, now time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty due time")
	}

	raw := strings.TrimSpace(text)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			if layout == "2006-01-02" {
				t = t.Add(9 * time.Hour)
			}
			return t, nil
		}
	}

	if s == "now" {
		return now, nil
	}

	if m := relativeRe.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.Add(time.Duration(n) * unitDuration(m[2])), nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return now.Add(d), nil
	}

	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	rest := s
	hasDay := false
	switch {
	case strings.HasPrefix(s, "tomorrow"):
		day = day.AddDate(0, 0, 1)
		rest = strings.TrimSpace(strings.TrimPrefix(s, "tomorrow"))
		hasDay = true
	case strings.HasPrefix(s, "today"):
		rest = strings.TrimSpace(strings.TrimPrefix(s, "today"))
		hasDay = true
	case strings.HasPrefix(s, "tonight"):
		rest = strings.TrimSpace(strings.TrimPrefix(s, "tonight"))
		if rest == "" {
			rest = "8pm"
		}
		hasDay = true
	}
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "at "))

	if rest == "" {
		if hasDay {
			return day.Add(9 * time.Hour), nil
		}
		return time.Time{}, fmt.Errorf("could not parse due time %q", text)
	}

	hour, minute, ok := parseClock(rest)
	if !ok {
		return time.Time{}, fmt.Errorf("could not parse due time %q", text)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

func parseClock(s string) (hour, minute int, ok bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	switch m[3] {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		// a bare number like "5" is too ambiguous to be a time
		if m[2] == "" {
			return 0, 0, false
		}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func unitDuration(unit string) time.Duration {
	switch unit[0] {
	case 'm':
		return time.Minute
	case 'h':
		return time.Hour
	case 'd':
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}
