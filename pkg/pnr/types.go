// Package pnr turns free-text reservation dumps (Amadeus / Galileo style)
// into an ordered list of flight segments plus a passenger list.
//
// The engine is synchronous and keeps no package-level mutable state. Each
// call to Parse threads its own ParseState through the input lines; the
// reference tables handed to a Parser are only ever read.
package pnr

import (
	"time"
)

// Direction says which half of a round trip a segment belongs to
type Direction string

const (
	Outbound         Direction = "OUTBOUND"
	Inbound          Direction = "INBOUND"
	DirectionUnknown Direction = "UNKNOWN"
)

// TimeFormat selects 24h or 12h clock output
type TimeFormat string

const (
	Format24h TimeFormat = "24h"
	Format12h TimeFormat = "12h"
)

// Layouts used for display and round-tripping of GDS tokens
const (
	ClockLayout24 = "15:04"
	ClockLayout12 = "03:04 PM"
	DateLayout    = "Monday, 02 Jan 2006"
	DayMonLayout  = "02Jan"
	HourMinLayout = "1504"
)

// Options control presentation of the parsed times
type Options struct {
	SegmentTimeFormat TimeFormat
	TransitTimeFormat TimeFormat

	// Now anchors year inference. Nil means time.Now.
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// AirportRecord is one row of the airport reference table
type AirportRecord struct {
	Code     string `json:"airport"`
	City     string `json:"city"`
	Country  string `json:"country,omitempty"`
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// Instant is a zone-aware point in time that may be invalid when the source
// tokens could not be parsed.
type Instant struct {
	Time  time.Time
	Valid bool
}

// InvalidInstant is returned for unparseable date/time tokens
var InvalidInstant = Instant{}

func validInstant(t time.Time) Instant {
	return Instant{Time: t, Valid: true}
}

// Transit describes the layover before a segment
type Transit struct {
	Duration      time.Duration `json:"-"`
	Minutes       int           `json:"durationMinutes"`
	Formatted     string        `json:"duration"`
	NextDeparture string        `json:"formattedNextDeparture"`
}

// Airline is a carrier code with its display name
type Airline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TravelClass is a booking class letter with its cabin name
type TravelClass struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Endpoint is one side (departure or arrival) of a segment
type Endpoint struct {
	AirportRecord
	Time       string  `json:"time"`
	DateString *string `json:"dateString"`
	Terminal   *string `json:"terminal"`
}

// Meal holds the raw meal code and its expanded description
type Meal struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FlightSegment is one flight leg of an itinerary.
//
// Optional fields are pointers: nil means the token was not present, which
// is distinct from a present-but-empty value.
type FlightSegment struct {
	SegmentNumber int           `json:"segment"`
	Format        SegmentFormat `json:"format"`
	Airline       Airline       `json:"airline"`
	FlightNumber  string        `json:"flightNumber"`
	TravelClass   TravelClass   `json:"travelClass"`
	Date          string        `json:"date"`
	Departure     Endpoint      `json:"departure"`
	Arrival       Endpoint      `json:"arrival"`
	Duration      string        `json:"duration"`
	Aircraft      *string       `json:"aircraft"`
	Meal          *Meal         `json:"meal"`
	OperatedBy    *string       `json:"operatedBy"`
	Notes         []string      `json:"notes"`
	Transit       *Transit      `json:"transit"`
	Direction     Direction     `json:"direction"`

	DepartureInstant Instant `json:"-"`
	ArrivalInstant   Instant `json:"-"`
}

// Result is the complete output of one parse
type Result struct {
	Flights    []FlightSegment `json:"flights"`
	Passengers []string        `json:"passengers"`

	// MultiCity is set when the itinerary visits three or more distinct
	// airports without returning to its origin. Directions for such trips
	// come from the same two-state heuristic and may be wrong.
	MultiCity bool `json:"multiCity"`
}

// ParseState is threaded through the line fold of a single parse and is
// discarded when the parse ends.
type ParseState struct {
	open          *FlightSegment
	inferredYear  int
	prevDepMonth  time.Month
	flights       []FlightSegment
	passengers    []string
	seenPassenger map[string]struct{}
}

func newParseState() ParseState {
	return ParseState{
		flights:       []FlightSegment{},
		passengers:    []string{},
		seenPassenger: make(map[string]struct{}),
	}
}
