package pnr

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// CivilDate is a calendar date with no zone attached
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

func civilOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// valid rejects dates time.Date would silently normalise (31FEB and such)
func (d CivilDate) valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return d.Day <= time.Date(d.Year, d.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d CivilDate) addDays(n int) CivilDate {
	return civilOf(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

// ZoneProvider resolves wall-clock times in IANA zones
type ZoneProvider interface {
	IsKnownZone(name string) bool
	// ResolveLocal picks the later occurrence of an ambiguous fall-back
	// wall time. Invalid dates or clock values yield an invalid Instant.
	ResolveLocal(date CivilDate, hour, minute int, zone string) Instant
	// In converts an instant to the wall clock of a zone (UTC if unknown)
	In(t time.Time, zone string) time.Time
}

// LocationZones is a ZoneProvider backed by the Go time zone database.
// Loaded locations are cached; the cache is safe for concurrent parses.
type LocationZones struct {
	cache sync.Map // zone name -> *time.Location, or nil when unknown
}

// NewLocationZones creates a zone provider with an empty cache
func NewLocationZones() *LocationZones {
	return &LocationZones{}
}

func (z *LocationZones) location(name string) (*time.Location, bool) {
	if name == "" || name == "Local" {
		return nil, false
	}
	if v, ok := z.cache.Load(name); ok {
		loc, _ := v.(*time.Location)
		return loc, loc != nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		z.cache.Store(name, (*time.Location)(nil))
		return nil, false
	}
	z.cache.Store(name, loc)
	return loc, true
}

// IsKnownZone reports whether name is a loadable IANA zone
func (z *LocationZones) IsKnownZone(name string) bool {
	_, ok := z.location(name)
	return ok
}

// In converts t to the wall clock of zone
func (z *LocationZones) In(t time.Time, zone string) time.Time {
	loc, ok := z.location(zone)
	if !ok {
		loc = time.UTC
	}
	return t.In(loc)
}

// ResolveLocal builds an instant from a local date and clock time
func (z *LocationZones) ResolveLocal(date CivilDate, hour, minute int, zone string) Instant {
	if !date.valid() || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return InvalidInstant
	}
	loc, ok := z.location(zone)
	if !ok {
		loc = time.UTC
	}
	t := time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, loc)
	return validInstant(laterOccurrence(t))
}

// laterOccurrence moves an ambiguous fall-back wall time to its second
// (standard time) occurrence. time.Date returns the first one, so the hour
// after it shows the same clock exactly when the wall time is ambiguous.
// A time that already equals the clock of the hour before it is the second
// occurrence and is returned unchanged.
func laterOccurrence(t time.Time) time.Time {
	if before := t.Add(-time.Hour); sameClock(before, t) {
		return t
	}
	if after := t.Add(time.Hour); sameClock(after, t) {
		return after
	}
	return t
}

func sameClock(a, b time.Time) bool {
	return a.Hour() == b.Hour() && a.Minute() == b.Minute()
}

var monthByAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// parseDayMonth reads a DDMMM token such as 15AUG
func parseDayMonth(token string) (int, time.Month, bool) {
	token = strings.ToUpper(strings.TrimSpace(token))
	if len(token) != 5 {
		return 0, 0, false
	}
	day, err := strconv.Atoi(token[:2])
	if err != nil {
		return 0, 0, false
	}
	month, ok := monthByAbbrev[token[2:]]
	if !ok {
		return 0, 0, false
	}
	return day, month, true
}

// parseClock reads a 4-digit 24h HHMM token, left-padding shorter ones
func parseClock(token string) (int, int, bool) {
	token = strings.TrimSpace(token)
	if token == "" || len(token) > 4 {
		return 0, 0, false
	}
	token = strings.Repeat("0", 4-len(token)) + token
	hour, err := strconv.Atoi(token[:2])
	if err != nil {
		return 0, 0, false
	}
	minute, err := strconv.Atoi(token[2:])
	if err != nil {
		return 0, 0, false
	}
	if hour > 23 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// advanceYear applies year inference for a departure in month/day and
// returns the updated state together with the year to use.
//
// The first departure takes the current year, or next year when that date
// lies more than three months in the past. Every later departure whose month
// is earlier than the previous departure's month moves to the next year.
func (st ParseState) advanceYear(month time.Month, day int, now time.Time) (ParseState, int) {
	if st.inferredYear == 0 {
		year := now.Year()
		prospective := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		if prospective.Before(now.AddDate(0, -3, 0)) {
			year++
		}
		st.inferredYear = year
	} else if month < st.prevDepMonth {
		st.inferredYear++
	}
	st.prevDepMonth = month
	return st, st.inferredYear
}

// temporalResolver turns date/time tokens into instants
type temporalResolver struct {
	zones ZoneProvider
}

// resolveDeparture resolves the departure instant and advances year
// inference. A bad date token leaves the state untouched.
func (r temporalResolver) resolveDeparture(dateToken, timeToken, zone string, st ParseState, now time.Time) (Instant, ParseState) {
	day, month, ok := parseDayMonth(dateToken)
	if !ok {
		return InvalidInstant, st
	}
	st, year := st.advanceYear(month, day, now)
	hour, minute, ok := parseClock(timeToken)
	if !ok {
		return InvalidInstant, st
	}
	return r.zones.ResolveLocal(CivilDate{Year: year, Month: month, Day: day}, hour, minute, zone), st
}

// resolveArrival resolves the arrival instant from the departure, an
// optional arrival date or +N offset, and the arrival clock time.
func (r temporalResolver) resolveArrival(dep Instant, depZone string, token *ArrivalToken, timeToken, zone string) Instant {
	if !dep.Valid {
		return InvalidInstant
	}
	hour, minute, ok := parseClock(timeToken)
	if !ok {
		return InvalidInstant
	}
	depLocal := r.zones.In(dep.Time, depZone)

	switch {
	case token != nil && !token.IsOffset():
		day, month, ok := parseDayMonth(token.Date)
		if !ok {
			return InvalidInstant
		}
		year := depLocal.Year()
		if month < depLocal.Month() {
			year++
		}
		return r.zones.ResolveLocal(CivilDate{Year: year, Month: month, Day: day}, hour, minute, zone)

	case token != nil:
		arrLocal := r.zones.In(dep.Time, zone)
		date := civilOf(arrLocal).addDays(token.Offset)
		return r.zones.ResolveLocal(date, hour, minute, zone)

	default:
		date := civilOf(depLocal)
		arr := r.zones.ResolveLocal(date, hour, minute, zone)
		if arr.Valid && !arr.Time.After(dep.Time) {
			arr = r.zones.ResolveLocal(date.addDays(1), hour, minute, zone)
		}
		return arr
	}
}
