package printer

import (
	"fmt"
	"time"
)

// TimeAgo returns how long ago t happened relative to now, using the largest
// whole unit. Examples: "just now", "1 minute ago", "3 hours ago".
func TimeAgo(now, t time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 0:
		return "in the future"
	case diff < time.Second:
		return "just now"
	case diff < time.Minute:
		return plural(int(diff.Seconds()), "second") + " ago"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	default:
		return plural(int(diff.Hours()/24), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatTimestamp returns a formatted timestamp string in UTC.
// Format: "2006-01-02 15:04:05 UTC".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// FormatDuration returns the run duration rounded for humans, "-" when the
// run has not finished.
func FormatDuration(start time.Time, end *time.Time) string {
	if end == nil {
		return "-"
	}

	d := end.Sub(start)
	switch {
	case d < 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Minute:
		return d.Round(100 * time.Millisecond).String()
	default:
		return d.Round(time.Second).String()
	}
}
