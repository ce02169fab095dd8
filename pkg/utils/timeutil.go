package utils

import (
	"fmt"
	"time"
)

// IST is Asia/Kolkata, falling back to a fixed +05:30 zone when the tz
// database is unavailable.
var IST = loadIST()

func loadIST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*60*60+30*60)
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// FormatDateTimeIST formats t as "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}

// NSE session boundaries, as minutes after midnight IST.
const (
	preOpenMinute = 9 * 60
	openMinute    = 9*60 + 15
	closeMinute   = 15*60 + 30
)

// NSE equity segment holidays for 2026, keyed by IST date.
var nseHolidays = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}

// MarketStatus describes the NSE session right now.
func MarketStatus() string {
	return MarketStatusAt(NowIST())
}

// MarketStatusAt describes the NSE session at t: "OPEN", "CLOSED",
// "PRE-MARKET", "PRE-OPEN SESSION", or "CLOSED (<reason>)" on weekends
// and holidays.
func MarketStatusAt(t time.Time) string {
	t = t.In(IST)
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return "CLOSED (Weekend)"
	}
	if name, ok := nseHolidays[t.Format("2006-01-02")]; ok {
		return "CLOSED (" + name + ")"
	}

	minute := t.Hour()*60 + t.Minute()
	switch {
	case minute < preOpenMinute:
		return "PRE-MARKET"
	case minute < openMinute:
		return "PRE-OPEN SESSION"
	case minute < closeMinute || (minute == closeMinute && t.Second() == 0 && t.Nanosecond() == 0):
		return "OPEN"
	default:
		return "CLOSED"
	}
}

// RelativeTime renders how long ago t was relative to now, in the style
// news feeds display it ("just now", "5 minutes ago", "2 hours ago",
// "1 day ago"). Future times render as "just now"; anything older than
// thirty days falls back to an absolute IST timestamp.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute")
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day")
	default:
		return FormatDateTimeIST(t)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
