package pnr

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatClock renders an instant's wall clock; invalid instants give ""
func FormatClock(in Instant, format TimeFormat) string {
	if !in.Valid {
		return ""
	}
	if format == Format24h {
		return in.Time.Format(ClockLayout24)
	}
	return in.Time.Format(ClockLayout12)
}

// FormatDate renders e.g. "Saturday, 15 Aug 2026"
func FormatDate(in Instant) string {
	if !in.Valid {
		return ""
	}
	return in.Time.Format(DateLayout)
}

// FormatDayMonth renders the GDS DDMMM token, e.g. "15AUG"
func FormatDayMonth(in Instant) string {
	if !in.Valid {
		return ""
	}
	return strings.ToUpper(in.Time.Format(DayMonLayout))
}

// FormatHourMinute renders the GDS HHMM token, e.g. "1155"
func FormatHourMinute(in Instant) string {
	if !in.Valid {
		return ""
	}
	return in.Time.Format(HourMinLayout)
}

// FormatDuration renders the elapsed time between two instants as "HHh MMm"
func FormatDuration(from, to Instant) string {
	if !from.Valid || !to.Valid {
		return "Invalid time"
	}
	d := to.Time.Sub(from.Time)
	if d < 0 {
		return "Invalid duration"
	}
	return formatHoursMinutes(int(d / time.Minute))
}

// roundMinutes rounds a duration to whole minutes
func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

func formatHoursMinutes(minutes int) string {
	return fmt.Sprintf("%02dh %02dm", minutes/60, minutes%60)
}
