package pnr

import (
	"regexp"
	"strings"
)

var passengerTitles = map[string]bool{
	"MR": true, "MRS": true, "MS": true, "MSTR": true, "MISS": true, "CHD": true, "INF": true,
}

var (
	passengerLeadRe  = regexp.MustCompile(`^\s*\d+\.\s*`)
	passengerSplitRe = regexp.MustCompile(`\s+\d+\.\s*`)
)

// ParsePassengers extracts normalized "LASTNAME/GIVEN NAMES[ TITLE]" entries
// from a numbered traveller line such as "1.SMITH/JOHN MR 2.SMITH/JANE MRS".
// Blocks without a last name and a given name are skipped.
func ParsePassengers(line string) []string {
	cleaned := passengerLeadRe.ReplaceAllString(strings.ToUpper(line), "")

	var names []string
	for _, block := range passengerSplitRe.Split(cleaned, -1) {
		if name, ok := normalizePassenger(block); ok {
			names = append(names, name)
		}
	}
	return names
}

func normalizePassenger(block string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(block), "/")
	if len(parts) < 2 {
		return "", false
	}
	lastName := strings.TrimSpace(parts[0])
	words := strings.Fields(parts[1])
	if lastName == "" || len(words) == 0 {
		return "", false
	}

	title := ""
	if passengerTitles[words[len(words)-1]] {
		title = words[len(words)-1]
		words = words[:len(words)-1]
	}
	if len(words) == 0 {
		return "", false
	}

	name := lastName + "/" + strings.Join(words, " ")
	if title != "" {
		name += " " + title
	}
	return name, true
}

// addPassengers appends names not seen earlier in this parse
func (st ParseState) addPassengers(names []string) ParseState {
	for _, name := range names {
		if _, seen := st.seenPassenger[name]; seen {
			continue
		}
		st.seenPassenger[name] = struct{}{}
		st.passengers = append(st.passengers, name)
	}
	return st
}
