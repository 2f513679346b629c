package pnr

import (
	"regexp"
	"strconv"
	"strings"
)

// SegmentFormat names the line shape that recognised a segment
type SegmentFormat string

const (
	FormatCompact      SegmentFormat = "COMPACT"
	FormatFlexible     SegmentFormat = "FLEXIBLE"
	FormatConcatenated SegmentFormat = "CONCATENATED"
)

// CoreFields are the tokens every segment format extracts
type CoreFields struct {
	Sequence         string // empty when the format allows it to be absent
	Airline          string
	FlightNumber     string
	Class            string
	DepartureDate    string // DDMMM
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    string // HHMM
	ArrivalTime      string // HHMM
	Trailing         string // free text after the structured part
}

// ArrivalToken is the optional trailing DDMMM date or +N day offset
type ArrivalToken struct {
	Date   string
	Offset int
}

// IsOffset reports whether the token was a +N marker
func (a ArrivalToken) IsOffset() bool {
	return a.Date == ""
}

// SegmentFields is implemented by one struct per recognised format, so a
// consumer has to switch on the concrete type to reach format-specific
// tokens.
type SegmentFields interface {
	Core() CoreFields
	Format() SegmentFormat
}

// CompactFields: "1 WB 440 Y 15AUG MON KGLDAR DK1 1155 1625"
type CompactFields struct {
	CoreFields
	Weekday string
	Status  string
	Arrival *ArrivalToken
}

func (f CompactFields) Core() CoreFields      { return f.CoreFields }
func (f CompactFields) Format() SegmentFormat { return FormatCompact }

// FlexibleFields: "2 TK 1980 Y 10MAR LHR T2 IST 0830 1430 +1"
type FlexibleFields struct {
	CoreFields
	Weekday           string
	Status            string
	DepartureTerminal *string
	ArrivalTerminal   *string
	Arrival           *ArrivalToken
}

func (f FlexibleFields) Core() CoreFields      { return f.CoreFields }
func (f FlexibleFields) Format() SegmentFormat { return FormatFlexible }

// ConcatenatedFields: "BA 117 Y 15AUG LHRJFK 1200 1500"
type ConcatenatedFields struct {
	CoreFields
	Weekday string
	Status  string
	Arrival *ArrivalToken
}

func (f ConcatenatedFields) Core() CoreFields      { return f.CoreFields }
func (f ConcatenatedFields) Format() SegmentFormat { return FormatConcatenated }

// Kind tags a classified line
type Kind int

const (
	KindBlank Kind = iota
	KindSegment
	KindPassenger
	KindOperatedBy
	KindNote
)

func (k Kind) String() string {
	switch k {
	case KindSegment:
		return "segment"
	case KindPassenger:
		return "passenger"
	case KindOperatedBy:
		return "operated_by"
	case KindNote:
		return "note"
	default:
		return "blank"
	}
}

// LineKind is the outcome of classifying one raw line. Segment is set only
// for KindSegment; Text carries the passenger text, carrier or note.
type LineKind struct {
	Kind    Kind
	Segment SegmentFields
	Text    string
}

// segmentTokens are the building blocks referenced as {NAME} in the
// segment patterns below.
var segmentTokens = map[string]string{
	"SEQ":      `\d+`,
	"AIRLINE":  `[A-Z0-9]{2}|[A-Z]{3}`,
	"FLIGHT":   `\d{1,4}[A-Z]?`,
	"CLASS":    `[A-Z]`,
	"DATE":     `[0-3]\d[A-Z]{3}`,
	"WEEKDAY":  `[A-Z]{2,3}|[1-7]`,
	"IATA":     `[A-Z]{3}`,
	"TERMINAL": `T?\d{1,2}[A-Z]?|T[A-Z]`,
	"STATUS":   `[A-Z]{2}\d{1,3}`,
	"TIME":     `\d{4}`,
	"ARRTOKEN": `[0-3]\d[A-Z]{3}|\+\d`,
}

const segmentHead = `^\s*(?:(?P<seq>{SEQ})\.?\s+)?(?P<airline>{AIRLINE})\s*(?P<flight>{FLIGHT})\s*(?P<class>{CLASS})\s+(?P<depdate>{DATE})\s+(?:(?P<weekday>{WEEKDAY})\s+)?`

// segmentMatcher tries one format against a line
type segmentMatcher struct {
	format  SegmentFormat
	re      *regexp.Regexp
	extract func(c map[string]string) SegmentFields
}

// segmentMatchers are tried in order; the first match wins.
var segmentMatchers = []segmentMatcher{
	{
		format: FormatCompact,
		re: compileSegmentPattern(`^\s*(?P<seq>{SEQ})\.?\s+(?P<airline>{AIRLINE})\s*(?P<flight>{FLIGHT})\s*(?P<class>{CLASS})\s+(?P<depdate>{DATE})\s+(?:(?P<weekday>{WEEKDAY})\s+)?` +
			`(?P<dep>{IATA})(?P<arr>{IATA})\s+(?P<status>{STATUS})\s+(?P<deptime>{TIME})\s+(?P<arrtime>{TIME})(?:\s*(?P<arrtoken>{ARRTOKEN}))?`),
		extract: func(c map[string]string) SegmentFields {
			return CompactFields{
				CoreFields: coreFromCaptures(c),
				Weekday:    c["weekday"],
				Status:     c["status"],
				Arrival:    arrivalFromCapture(c["arrtoken"]),
			}
		},
	},
	{
		format: FormatFlexible,
		re: compileSegmentPattern(segmentHead +
			`(?P<dep>{IATA})(?:\s+(?P<depterm>{TERMINAL}))?\s+(?P<arr>{IATA})(?:\s+(?P<arrterm>{TERMINAL}))?\s+(?:(?P<status>{STATUS})\s+)?(?P<deptime>{TIME})\s+(?P<arrtime>{TIME})(?:\s*(?P<arrtoken>{ARRTOKEN}))?`),
		extract: func(c map[string]string) SegmentFields {
			return FlexibleFields{
				CoreFields:        coreFromCaptures(c),
				Weekday:           c["weekday"],
				Status:            c["status"],
				DepartureTerminal: optionalCapture(c, "depterm"),
				ArrivalTerminal:   optionalCapture(c, "arrterm"),
				Arrival:           arrivalFromCapture(c["arrtoken"]),
			}
		},
	},
	{
		format: FormatConcatenated,
		re: compileSegmentPattern(segmentHead +
			`(?P<dep>{IATA})(?P<arr>{IATA})\s+(?:(?P<status>{STATUS})\s+)?(?P<deptime>{TIME})\s+(?P<arrtime>{TIME})(?:\s*(?P<arrtoken>{ARRTOKEN}))?`),
		extract: func(c map[string]string) SegmentFields {
			return ConcatenatedFields{
				CoreFields: coreFromCaptures(c),
				Weekday:    c["weekday"],
				Status:     c["status"],
				Arrival:    arrivalFromCapture(c["arrtoken"]),
			}
		},
	},
}

var (
	passengerLineRe = regexp.MustCompile(`^\s*\d+\.\s*[A-Z/]`)
	operatedByRe    = regexp.MustCompile(`(?i)OPERATED BY\s+(.+)`)
)

// compileSegmentPattern expands {NAME} placeholders and compiles the result.
// Every alternation is wrapped so it stays inside its capture group.
func compileSegmentPattern(pattern string) *regexp.Regexp {
	expanded := pattern
	for name, token := range segmentTokens {
		expanded = strings.ReplaceAll(expanded, "{"+name+"}", "(?:"+token+")")
	}
	return regexp.MustCompile(expanded)
}

// Classify determines the category of one raw line and, for segment lines,
// extracts the raw token fields.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineKind{Kind: KindBlank}
	}
	// codeshare marker
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "*"))
	if trimmed == "" {
		return LineKind{Kind: KindBlank}
	}
	upper := strings.ToUpper(trimmed)

	if fields, ok := matchSegment(upper); ok {
		return LineKind{Kind: KindSegment, Segment: fields}
	}
	if passengerLineRe.MatchString(upper) {
		return LineKind{Kind: KindPassenger, Text: upper}
	}
	if m := operatedByRe.FindStringSubmatch(upper); m != nil {
		return LineKind{Kind: KindOperatedBy, Text: strings.TrimSpace(m[1])}
	}
	return LineKind{Kind: KindNote, Text: trimmed}
}

// matchSegment runs the ordered matcher list against an upper-cased line
func matchSegment(line string) (SegmentFields, bool) {
	for _, m := range segmentMatchers {
		loc := m.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		captures := make(map[string]string)
		for i, name := range m.re.SubexpNames() {
			if i == 0 || name == "" || loc[2*i] < 0 {
				continue
			}
			captures[name] = line[loc[2*i]:loc[2*i+1]]
		}
		captures["trailing"] = strings.TrimSpace(line[loc[1]:])
		return m.extract(captures), true
	}
	return nil, false
}

func coreFromCaptures(c map[string]string) CoreFields {
	return CoreFields{
		Sequence:         c["seq"],
		Airline:          c["airline"],
		FlightNumber:     c["flight"],
		Class:            c["class"],
		DepartureDate:    c["depdate"],
		DepartureAirport: c["dep"],
		ArrivalAirport:   c["arr"],
		DepartureTime:    c["deptime"],
		ArrivalTime:      c["arrtime"],
		Trailing:         c["trailing"],
	}
}

// optionalCapture distinguishes a group that did not participate (nil) from
// one that matched.
func optionalCapture(c map[string]string, name string) *string {
	v, ok := c[name]
	if !ok {
		return nil
	}
	return &v
}

func arrivalFromCapture(token string) *ArrivalToken {
	if token == "" {
		return nil
	}
	if strings.HasPrefix(token, "+") {
		n, err := strconv.Atoi(token[1:])
		if err != nil {
			return nil
		}
		return &ArrivalToken{Offset: n}
	}
	return &ArrivalToken{Date: token}
}
