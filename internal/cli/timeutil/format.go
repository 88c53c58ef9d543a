// Package timeutil formats timestamps and durations for CLI output.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// Display formats. Tables use the compact form; single-resource views
// can afford the long one.
const (
	LocalTimeFormat   = "Mon Jan 2 15:04:05 2006"
	CompactTimeFormat = "2006-01-02 15:04:05"
)

// FormatLocal renders t in local time using the compact format, with
// "-" for the zero time so table cells stay aligned.
func FormatLocal(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(CompactTimeFormat)
}

// FormatTime renders an RFC3339 timestamp as local time in the long
// format, or echoes the input when it does not parse.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(LocalTimeFormat)
}

// FormatUptime renders a Go duration string like "72h30m15s" as
// "3d 0h 30m 15s", dropping leading units that are zero. The input is
// echoed when it does not parse.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	total := int(d.Seconds())
	days, hours := total/86400, total%86400/3600
	minutes, seconds := total%3600/60, total%60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if days > 0 || hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if days > 0 || hours > 0 || minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	fmt.Fprintf(&b, "%ds", seconds)
	return b.String()
}
