package actionitem

import "time"

const (
	DateLayout = "2006-01-02"
	// совпадает с Date.toISOString() в браузере
	TimestampLayout = "2006-01-02T15:04:05.000Z"
)

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// TodayISO is the local calendar date of now.
func TodayISO(now time.Time) string {
	return now.Format(DateLayout)
}

func PlusDaysISO(now time.Time, days int) string {
	return now.AddDate(0, 0, days).Format(DateLayout)
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// timestampBefore compares instants; values that do not parse fall back to
// string order.
func timestampBefore(a, b string) bool {
	ta, okA := parseTimestamp(a)
	tb, okB := parseTimestamp(b)
	if okA && okB {
		return ta.Before(tb)
	}
	return a < b
}
