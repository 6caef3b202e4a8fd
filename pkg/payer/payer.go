// Package payer holds the rules for recognizing payer families from free-text
// payer names.
package payer

import (
	"strings"
)

var (
	// stateMarkers select the payers whose plans are administered per state.
	// When the payer text mentions one of them the state sub-filter applies.
	stateMarkers = []string{"bcbs", "blue", "anthem"}

	// queryMarkers select the state-aware payer query on the service side.
	// Anthem is matched by the query itself but does not trigger it.
	queryMarkers = []string{"bcbs", "blue"}

	// FamilyPatterns are the SQL LIKE patterns matching any payer of the
	// blue-cross family.
	FamilyPatterns = []string{"%bcbs%", "%blue%cross%", "%anthem%"}
)

// ShouldShowState reports whether the state sub-filter applies to the payer
// text. Matching is a case-insensitive substring match.
func ShouldShowState(payerName string) bool {
	return containsAny(payerName, stateMarkers)
}

// UsesStateQuery reports whether a payer search term together with a state
// selects the blue-cross family query instead of a plain substring match.
// An empty payer with a state always uses the family query.
func UsesStateQuery(payerName, state string) bool {
	if state == "" {
		return false
	}
	if payerName == "" {
		return true
	}
	return containsAny(payerName, queryMarkers)
}

// StatePatterns returns the SQL LIKE patterns matching a payer name that
// mentions the state, either bare or as "OF <state>".
func StatePatterns(state string) []string {
	return []string{"%" + state + "%", "%OF " + state + "%"}
}

func containsAny(s string, markers []string) bool {
	s = strings.ToLower(s)
	for _, marker := range markers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
