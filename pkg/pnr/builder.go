package pnr

import (
	"regexp"
	"strconv"
	"strings"
)

var mealCodeRe = regexp.MustCompile(`(?i)^[BLDSMFHCVKOPRWYNG]+$`)

// openSegment assembles a segment record from classifier output. The year
// inference carried by st is advanced and returned.
func (p *Parser) openSegment(fields SegmentFields, st ParseState, opts Options) (FlightSegment, ParseState) {
	core := fields.Core()
	depAirport := p.airport(core.DepartureAirport)
	arrAirport := p.airport(core.ArrivalAirport)

	var (
		arrToken         *ArrivalToken
		depTerm, arrTerm *string
	)
	switch f := fields.(type) {
	case CompactFields:
		arrToken = f.Arrival
	case FlexibleFields:
		arrToken = f.Arrival
		depTerm = normalizeTerminal(f.DepartureTerminal)
		arrTerm = normalizeTerminal(f.ArrivalTerminal)
	case ConcatenatedFields:
		arrToken = f.Arrival
	}

	dep, st := p.resolver.resolveDeparture(core.DepartureDate, core.DepartureTime, depAirport.Timezone, st, opts.now())
	arr := p.resolver.resolveArrival(dep, depAirport.Timezone, arrToken, core.ArrivalTime, arrAirport.Timezone)

	airlineName, ok := p.tables.LookupAirline(core.Airline)
	if !ok {
		airlineName = unknownAirlineName(core.Airline)
	}

	extras, operatedBy := splitOperatedBy(core.Trailing)
	aircraft, meal := p.scanExtras(extras)

	seg := FlightSegment{
		SegmentNumber: segmentNumber(core.Sequence, len(st.flights)+1),
		Format:        fields.Format(),
		Airline:       Airline{Code: core.Airline, Name: airlineName},
		FlightNumber:  core.FlightNumber,
		TravelClass:   TravelClass{Code: core.Class, Name: TravelClassName(core.Class)},
		Date:          FormatDate(dep),
		Departure: Endpoint{
			AirportRecord: depAirport,
			Time:          FormatClock(dep, opts.SegmentTimeFormat),
			Terminal:      depTerm,
		},
		Arrival: Endpoint{
			AirportRecord: arrAirport,
			Time:          FormatClock(arr, opts.SegmentTimeFormat),
			DateString:    arrivalDateString(dep, arr),
			Terminal:      arrTerm,
		},
		Duration:         FormatDuration(dep, arr),
		Aircraft:         aircraft,
		Meal:             meal,
		OperatedBy:       operatedBy,
		Notes:            []string{},
		Direction:        DirectionUnknown,
		DepartureInstant: dep,
		ArrivalInstant:   arr,
	}
	return seg, st
}

// attachOperatedBy records the operating carrier on the open segment
func attachOperatedBy(seg *FlightSegment, carrier string) {
	carrier = strings.TrimSpace(carrier)
	seg.OperatedBy = &carrier
}

// appendNote adds a free-text line to the open segment
func appendNote(seg *FlightSegment, text string) {
	seg.Notes = append(seg.Notes, strings.TrimSpace(text))
}

// airport resolves a code, synthesising a placeholder for unknown codes and
// substituting UTC for zones the provider does not know.
func (p *Parser) airport(code string) AirportRecord {
	rec, ok := p.tables.LookupAirport(code)
	if !ok {
		rec = placeholderAirport(code)
	}
	if rec.Code == "" {
		rec.Code = code
	}
	if !p.zones.IsKnownZone(rec.Timezone) {
		rec.Timezone = "UTC"
	}
	return rec
}

// segmentNumber uses the literal sequence token when it is a positive
// number, the 1-based position otherwise.
func segmentNumber(token string, position int) int {
	n, err := strconv.Atoi(token)
	if err != nil || n <= 0 {
		return position
	}
	return n
}

// normalizeTerminal strips a leading T and keeps the bare identifier
func normalizeTerminal(term *string) *string {
	if term == nil {
		return nil
	}
	t := strings.TrimSpace(*term)
	if t == "" {
		return nil
	}
	if len(t) > 1 && (t[0] == 'T' || t[0] == 't') {
		t = t[1:]
	}
	return &t
}

// arrivalDateString is set only when arrival falls on a different local
// calendar day than departure.
func arrivalDateString(dep, arr Instant) *string {
	if !dep.Valid || !arr.Valid {
		return nil
	}
	if civilOf(dep.Time) == civilOf(arr.Time) {
		return nil
	}
	s := FormatDayMonth(arr)
	return &s
}

// splitOperatedBy cuts an inline "OPERATED BY ..." clause off the trailing
// text of a segment line.
func splitOperatedBy(trailing string) (string, *string) {
	loc := operatedByRe.FindStringSubmatchIndex(trailing)
	if loc == nil {
		return trailing, nil
	}
	carrier := strings.TrimSpace(trailing[loc[2]:loc[3]])
	return trailing[:loc[0]], &carrier
}

// scanExtras walks the free-text tokens left to right. The first token
// found in the aircraft table (after a CODE/ prefix is removed) is the
// aircraft; independently, the first meal-code token is the meal.
func (p *Parser) scanExtras(text string) (*string, *Meal) {
	var (
		aircraft *string
		meal     *Meal
	)
	for _, tok := range strings.Fields(text) {
		if aircraft == nil {
			code := tok
			if i := strings.LastIndex(code, "/"); i >= 0 {
				code = code[i+1:]
			}
			if name, ok := p.tables.LookupAircraft(code); ok {
				aircraft = &name
			}
		}
		if meal == nil && mealCodeRe.MatchString(tok) {
			code := strings.ToUpper(tok)
			meal = &Meal{Code: code, Description: MealDescription(code)}
		}
		if aircraft != nil && meal != nil {
			break
		}
	}
	return aircraft, meal
}
