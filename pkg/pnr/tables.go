package pnr

import (
	"fmt"
	"strings"
)

// ReferenceTables is the lookup capability the engine depends on. Unknown
// codes return false; the engine supplies its own placeholder text.
type ReferenceTables interface {
	LookupAirport(code string) (AirportRecord, bool)
	LookupAirline(code string) (string, bool)
	LookupAircraft(code string) (string, bool)
}

// MapTables is a map-backed ReferenceTables. It must not be mutated once
// handed to a Parser.
type MapTables struct {
	Airports map[string]AirportRecord
	Airlines map[string]string
	Aircraft map[string]string
}

// NewMapTables creates empty tables ready to be filled
func NewMapTables() *MapTables {
	return &MapTables{
		Airports: make(map[string]AirportRecord),
		Airlines: make(map[string]string),
		Aircraft: make(map[string]string),
	}
}

// LookupAirport returns the airport record for a 3-letter code
func (t *MapTables) LookupAirport(code string) (AirportRecord, bool) {
	rec, ok := t.Airports[code]
	return rec, ok
}

// LookupAirline returns the display name for a carrier code
func (t *MapTables) LookupAirline(code string) (string, bool) {
	name, ok := t.Airlines[code]
	return name, ok
}

// LookupAircraft returns the display name for an aircraft type code
func (t *MapTables) LookupAircraft(code string) (string, bool) {
	name, ok := t.Aircraft[code]
	return name, ok
}

// placeholderAirport is used for codes missing from the airport table
func placeholderAirport(code string) AirportRecord {
	return AirportRecord{
		Code:     code,
		City:     "Unknown",
		Name:     fmt.Sprintf("Airport (%s)", code),
		Timezone: "UTC",
	}
}

func unknownAirlineName(code string) string {
	return fmt.Sprintf("Unknown Airline (%s)", code)
}

// IsPlaceholderAirport reports whether rec was made up for a code missing
// from the airport table.
func IsPlaceholderAirport(rec AirportRecord) bool {
	return rec == placeholderAirport(rec.Code)
}

// IsUnknownAirline reports whether the carrier name is the placeholder
func IsUnknownAirline(a Airline) bool {
	return a.Name == unknownAirlineName(a.Code)
}

var cabinByClass = map[string]string{
	"F": "First", "A": "First",
	"J": "Business", "C": "Business", "D": "Business", "I": "Business", "Z": "Business", "P": "Business",
	"Y": "Economy", "B": "Economy", "H": "Economy", "K": "Economy", "L": "Economy", "M": "Economy",
	"N": "Economy", "O": "Economy", "Q": "Economy", "S": "Economy", "U": "Economy", "V": "Economy",
	"X": "Economy", "G": "Economy", "W": "Economy", "E": "Economy", "T": "Economy", "R": "Economy",
}

// TravelClassName maps a booking class letter to its cabin
func TravelClassName(code string) string {
	if code == "" {
		return "Unknown"
	}
	code = strings.ToUpper(code)
	if cabin, ok := cabinByClass[code]; ok {
		return cabin
	}
	return "Class " + code
}

var mealByCode = map[rune]string{
	'B': "Breakfast",
	'L': "Lunch",
	'D': "Dinner",
	'S': "Snack or Refreshments",
	'M': "Meal (Non-Specific)",
	'F': "Food for Purchase",
	'H': "Hot Meal",
	'C': "Complimentary Alcoholic Beverages",
	'V': "Vegetarian Meal",
	'K': "Kosher Meal",
	'O': "Cold Meal",
	'P': "Alcoholic Beverages for Purchase",
	'R': "Refreshment",
	'W': "Continental Breakfast",
	'Y': "Duty-Free Sales Available",
	'N': "No Meal Service",
	'G': "Food and Beverages for Purchase",
}

// MealDescription expands a meal code letter by letter. Unknown letters are
// dropped; a code with no known letter comes back verbatim.
func MealDescription(code string) string {
	if code == "" {
		return ""
	}
	var descriptions []string
	for _, r := range strings.ToUpper(code) {
		if d, ok := mealByCode[r]; ok {
			descriptions = append(descriptions, d)
		}
	}
	if len(descriptions) == 0 {
		return code
	}
	return strings.Join(descriptions, " & ")
}
