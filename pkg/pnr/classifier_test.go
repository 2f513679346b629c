package pnr

import "testing"

func TestClassifyKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Kind
		text string
	}{
		{name: "blank", line: "   ", want: KindBlank},
		{name: "asterisk only", line: " * ", want: KindBlank},
		{name: "passenger", line: "1.SMITH/JOHN MR 2.SMITH/JANE MRS", want: KindPassenger, text: "1.SMITH/JOHN MR 2.SMITH/JANE MRS"},
		{name: "passenger lower case", line: " 1. doe/jane ms", want: KindPassenger, text: "1. DOE/JANE MS"},
		{name: "operated by", line: "OPERATED BY KENYA AIRWAYS ", want: KindOperatedBy, text: "KENYA AIRWAYS"},
		{name: "operated by mixed case", line: "  Operated By RwandAir", want: KindOperatedBy, text: "RWANDAIR"},
		{name: "note", line: "  SEE RTSVC  ", want: KindNote, text: "SEE RTSVC"},
		{name: "segment", line: "1 WB 440 Y 15AUG MON KGLDAR DK1 1155 1625", want: KindSegment},
		{name: "codeshare segment", line: "*1 WB 440 Y 15AUG MON KGLDAR DK1 1155 1625", want: KindSegment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.line)
			if got.Kind != tt.want {
				t.Fatalf("Classify(%q).Kind = %v, want %v", tt.line, got.Kind, tt.want)
			}
			if got.Text != tt.text {
				t.Errorf("Classify(%q).Text = %q, want %q", tt.line, got.Text, tt.text)
			}
			if (got.Segment != nil) != (tt.want == KindSegment) {
				t.Errorf("Classify(%q).Segment = %v, want set only for segments", tt.line, got.Segment)
			}
		})
	}
}

func TestClassifyCompact(t *testing.T) {
	got := Classify("1 WB 440 Y 15AUG MON KGLDAR DK1 1155 1625")
	fields, ok := got.Segment.(CompactFields)
	if !ok {
		t.Fatalf("Segment = %T, want CompactFields", got.Segment)
	}

	want := CoreFields{
		Sequence:         "1",
		Airline:          "WB",
		FlightNumber:     "440",
		Class:            "Y",
		DepartureDate:    "15AUG",
		DepartureAirport: "KGL",
		ArrivalAirport:   "DAR",
		DepartureTime:    "1155",
		ArrivalTime:      "1625",
	}
	if fields.Core() != want {
		t.Errorf("Core() = %+v, want %+v", fields.Core(), want)
	}
	if fields.Weekday != "MON" {
		t.Errorf("Weekday = %q, want %q", fields.Weekday, "MON")
	}
	if fields.Status != "DK1" {
		t.Errorf("Status = %q, want %q", fields.Status, "DK1")
	}
	if fields.Arrival != nil {
		t.Errorf("Arrival = %+v, want nil", fields.Arrival)
	}
	if fields.Format() != FormatCompact {
		t.Errorf("Format() = %q, want %q", fields.Format(), FormatCompact)
	}
}

func TestClassifyCompactVariants(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		seq      string
		flight   string
		class    string
		trailing string
		arrival  *ArrivalToken
	}{
		{
			name:   "galileo attached class",
			line:   "1. BA 117Y 15AUG LHRJFK HK1 1200 1500",
			seq:    "1",
			flight: "117",
			class:  "Y",
		},
		{
			name:   "airline glued to flight",
			line:   "2 WB440 Y 15AUG KGLDAR HK1 1155 1625",
			seq:    "2",
			flight: "440",
			class:  "Y",
		},
		{
			name:    "day offset",
			line:    "3 BA 117 Y 15AUG LHRJFK HK1 2200 0100 +1",
			seq:     "3",
			flight:  "117",
			class:   "Y",
			arrival: &ArrivalToken{Offset: 1},
		},
		{
			name:     "arrival date and extras",
			line:     "4 QR 1 J 31DEC DOHLHR HK1 2330 0500 01JAN E0/77W M",
			seq:      "4",
			flight:   "1",
			class:    "J",
			arrival:  &ArrivalToken{Date: "01JAN"},
			trailing: "E0/77W M",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ok := Classify(tt.line).Segment.(CompactFields)
			if !ok {
				t.Fatalf("Classify(%q) did not yield CompactFields", tt.line)
			}
			core := fields.Core()
			if core.Sequence != tt.seq || core.FlightNumber != tt.flight || core.Class != tt.class {
				t.Errorf("seq/flight/class = %q/%q/%q, want %q/%q/%q",
					core.Sequence, core.FlightNumber, core.Class, tt.seq, tt.flight, tt.class)
			}
			if core.Trailing != tt.trailing {
				t.Errorf("Trailing = %q, want %q", core.Trailing, tt.trailing)
			}
			switch {
			case tt.arrival == nil && fields.Arrival != nil:
				t.Errorf("Arrival = %+v, want nil", fields.Arrival)
			case tt.arrival != nil && (fields.Arrival == nil || *fields.Arrival != *tt.arrival):
				t.Errorf("Arrival = %+v, want %+v", fields.Arrival, tt.arrival)
			}
		})
	}
}

func TestClassifyFlexible(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		depTerm *string
		arrTerm *string
		status  string
		arrival *ArrivalToken
	}{
		{
			name:    "departure terminal and offset",
			line:    "2 TK 1980 Y 10MAR LHR T2 IST 0830 1430 +1",
			depTerm: strPtr("T2"),
			arrival: &ArrivalToken{Offset: 1},
		},
		{
			name:    "both terminals and status",
			line:    "3 EK 202 Y 12SEP DXB T3 JFK T4 HK2 0830 1430",
			depTerm: strPtr("T3"),
			arrTerm: strPtr("T4"),
			status:  "HK2",
		},
		{
			name: "spaced airports without terminals",
			line: "KQ 100 Y 15AUG NBO   KGL 0800 0930",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ok := Classify(tt.line).Segment.(FlexibleFields)
			if !ok {
				t.Fatalf("Classify(%q) did not yield FlexibleFields", tt.line)
			}
			if !equalStrPtr(fields.DepartureTerminal, tt.depTerm) {
				t.Errorf("DepartureTerminal = %v, want %v", deref(fields.DepartureTerminal), deref(tt.depTerm))
			}
			if !equalStrPtr(fields.ArrivalTerminal, tt.arrTerm) {
				t.Errorf("ArrivalTerminal = %v, want %v", deref(fields.ArrivalTerminal), deref(tt.arrTerm))
			}
			if fields.Status != tt.status {
				t.Errorf("Status = %q, want %q", fields.Status, tt.status)
			}
			if (fields.Arrival == nil) != (tt.arrival == nil) ||
				(fields.Arrival != nil && *fields.Arrival != *tt.arrival) {
				t.Errorf("Arrival = %+v, want %+v", fields.Arrival, tt.arrival)
			}
		})
	}
}

func TestClassifyConcatenated(t *testing.T) {
	fields, ok := Classify("BA 117 Y 15AUG LHRJFK 1200 1500").Segment.(ConcatenatedFields)
	if !ok {
		t.Fatal("expected ConcatenatedFields for a line without sequence number")
	}
	core := fields.Core()
	if core.Sequence != "" {
		t.Errorf("Sequence = %q, want empty", core.Sequence)
	}
	if core.DepartureAirport != "LHR" || core.ArrivalAirport != "JFK" {
		t.Errorf("airports = %s-%s, want LHR-JFK", core.DepartureAirport, core.ArrivalAirport)
	}
	if fields.Format() != FormatConcatenated {
		t.Errorf("Format() = %q, want %q", fields.Format(), FormatConcatenated)
	}
}

func TestClassifyThreeLetterAirline(t *testing.T) {
	fields, ok := Classify("KQA 100 Y 15AUG NBOKGL HK1 0800 0930").Segment.(ConcatenatedFields)
	if !ok {
		t.Fatal("expected ConcatenatedFields")
	}
	if fields.Airline != "KQA" {
		t.Errorf("Airline = %q, want %q", fields.Airline, "KQA")
	}
}

func TestClassifyRejectsNearMisses(t *testing.T) {
	lines := []string{
		"WB 440 Y 15AUG KGL 1155 1625",     // one airport
		"WB 440 Y 15AUG KGLDAR 1155",       // one time
		"WB 440 Y AUG15 KGLDAR 1155 1625",  // date order
		"TICKET 1234567890 ISSUED 15AUG",   // free text
		"WB 440 Y 15AUG KGLDAR 11:55 1625", // clock with colon
	}
	for _, line := range lines {
		if got := Classify(line); got.Kind != KindNote {
			t.Errorf("Classify(%q).Kind = %v, want %v", line, got.Kind, KindNote)
		}
	}
}

func strPtr(s string) *string { return &s }

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
