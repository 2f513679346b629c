package pnr

import (
	"strings"
	"time"

	"pnr-itinerary-service/pkg/logger"
)

const (
	// gaps at or below this are not a real connection
	minConnection = 30 * time.Minute
	// gaps at or above this are a stopover, not a transit
	stopoverThreshold = 24 * time.Hour
)

// Parser converts PNR text into an itinerary. A Parser only reads its
// tables and may be shared by concurrent callers.
type Parser struct {
	tables   ReferenceTables
	zones    ZoneProvider
	resolver temporalResolver
	logger   logger.Logger
}

// NewParser creates a parser over the given reference tables using the Go
// time zone database.
func NewParser(tables ReferenceTables) *Parser {
	return NewParserWithZones(tables, NewLocationZones())
}

// NewParserWithZones creates a parser with a custom zone provider
func NewParserWithZones(tables ReferenceTables, zones ZoneProvider) *Parser {
	if tables == nil {
		tables = NewMapTables()
	}
	return &Parser{
		tables:   tables,
		zones:    zones,
		resolver: temporalResolver{zones: zones},
		logger:   logger.NewNopLogger(),
	}
}

// WithLogger returns a copy of the parser that logs through l
func (p *Parser) WithLogger(l logger.Logger) *Parser {
	cp := *p
	cp.logger = l
	return &cp
}

// Parse is a convenience wrapper for one-off parses
func Parse(text string, tables ReferenceTables, opts Options) Result {
	return NewParser(tables).Parse(text, opts)
}

// Parse folds the lines of text into an itinerary. Malformed input never
// fails the parse: unrecognised lines become notes, bad dates become
// invalid instants.
func (p *Parser) Parse(text string, opts Options) Result {
	st := newParseState()
	for _, line := range splitLines(text) {
		st = p.step(st, line, opts)
	}
	st = st.closeOpen()

	multiCity := annotateItinerary(st.flights, opts.TransitTimeFormat)

	p.logger.Debug("PNR parse completed",
		"flights", len(st.flights),
		"passengers", len(st.passengers),
		"multiCity", multiCity)

	return Result{
		Flights:    st.flights,
		Passengers: st.passengers,
		MultiCity:  multiCity,
	}
}

// step applies one line to the parse state
func (p *Parser) step(st ParseState, line string, opts Options) ParseState {
	kind := Classify(line)

	switch kind.Kind {
	case KindSegment:
		st = st.closeOpen()
		var seg FlightSegment
		seg, st = p.openSegment(kind.Segment, st, opts)
		st.open = &seg
		p.logger.Debug("Segment line recognised",
			"format", seg.Format,
			"flight", seg.Airline.Code+seg.FlightNumber,
			"from", seg.Departure.Code,
			"to", seg.Arrival.Code,
			"validDeparture", seg.DepartureInstant.Valid,
			"validArrival", seg.ArrivalInstant.Valid)

	case KindPassenger:
		st = st.addPassengers(ParsePassengers(kind.Text))

	case KindOperatedBy:
		if st.open != nil {
			attachOperatedBy(st.open, kind.Text)
		}

	case KindNote:
		if st.open != nil {
			appendNote(st.open, kind.Text)
		} else {
			p.logger.Debug("Dropping note before first segment", "line", kind.Text)
		}
	}
	return st
}

// closeOpen pushes the open segment, if any, onto the output list
func (st ParseState) closeOpen() ParseState {
	if st.open != nil {
		st.flights = append(st.flights, *st.open)
		st.open = nil
	}
	return st
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// annotateItinerary runs the transit and direction pass over the completed
// segment list and reports whether the trip looks multi-city.
func annotateItinerary(flights []FlightSegment, transitFormat TimeFormat) bool {
	if len(flights) == 0 {
		return false
	}

	roundTrip := flights[0].Departure.Code == flights[len(flights)-1].Arrival.Code
	stopovers := 0

	flights[0].Direction = Outbound
	for i := 1; i < len(flights); i++ {
		prev, cur := &flights[i-1], &flights[i]
		cur.Direction = prev.Direction

		if !prev.ArrivalInstant.Valid || !cur.DepartureInstant.Valid {
			continue
		}
		gap := cur.DepartureInstant.Time.Sub(prev.ArrivalInstant.Time)

		if gap > minConnection && gap < stopoverThreshold {
			minutes := roundMinutes(gap)
			cur.Transit = &Transit{
				Duration:      gap,
				Minutes:       minutes,
				Formatted:     formatHoursMinutes(minutes),
				NextDeparture: FormatClock(cur.DepartureInstant, transitFormat),
			}
		}
		if gap > stopoverThreshold {
			stopovers++
			if roundTrip {
				cur.Direction = Inbound
			}
		}
	}

	return isMultiCity(flights, roundTrip, stopovers)
}

// isMultiCity flags itineraries the two-state direction heuristic cannot
// describe: three or more airports with either several stopovers or a
// stopover on a trip that does not return to its origin.
func isMultiCity(flights []FlightSegment, roundTrip bool, stopovers int) bool {
	airports := make(map[string]struct{})
	for _, f := range flights {
		airports[f.Departure.Code] = struct{}{}
		airports[f.Arrival.Code] = struct{}{}
	}
	if len(airports) < 3 {
		return false
	}
	return stopovers >= 2 || (stopovers >= 1 && !roundTrip)
}
