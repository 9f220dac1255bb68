package companies

import (
	"regexp"
	"strconv"
	"time"
)

// offsetPattern matches "UTC +01:00", "UTC-5", "utc +00:00" and similar
// labels the sheet uses for company timezones.
var offsetPattern = regexp.MustCompile(`(?i)UTC\s*([-+]?\d{1,2})(?::(\d{2}))?`)

// ParseTimezoneOffset converts a "UTC +01:00" style label to an offset in
// minutes. Unparseable or empty labels resolve to 0 (UTC).
func ParseTimezoneOffset(timezone string) int {
	if timezone == "" {
		return 0
	}

	m := offsetPattern.FindStringSubmatch(timezone)
	if m == nil {
		return 0
	}

	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}

	minutes := 0
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}

	if hours < 0 {
		return hours*60 - minutes
	}
	return hours*60 + minutes
}

// LocalTimeAt formats the wall-clock time in the given offset label at the
// given instant, e.g. "2:30 PM". Display only, never persisted as
// authoritative.
func LocalTimeAt(timezone string, now time.Time) string {
	offset := ParseTimezoneOffset(timezone)
	local := now.UTC().Add(time.Duration(offset) * time.Minute)
	return local.Format("3:04 PM")
}

// LocalTime is LocalTimeAt for the current instant.
func LocalTime(timezone string) string {
	return LocalTimeAt(timezone, time.Now())
}
