package portaldb

import (
	"strings"

	"storj.io/vob-portal/pkg/payer"
)

// where accumulates the conditions of a filtered query. Conditions are
// joined with AND.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, "("+clause+")")
	w.args = append(w.args, args...)
}

// contains matches a case-insensitive substring of column.
func (w *where) contains(column, value string) {
	if value == "" {
		return
	}
	w.add(column+" LIKE ? COLLATE NOCASE", "%"+value+"%")
}

// payer matches the payer column. A state together with a blue-cross payer
// term (or with no payer term at all) selects every payer of the family that
// mentions the state; otherwise the payer term is a plain substring match and
// the state is ignored.
func (w *where) payer(column, payerName, state string) {
	if !payer.UsesStateQuery(payerName, state) {
		w.contains(column, payerName)
		return
	}

	like := column + " LIKE ? COLLATE NOCASE"
	var family, states []string
	var args []any
	for _, pattern := range payer.FamilyPatterns {
		family = append(family, like)
		args = append(args, pattern)
	}
	for _, pattern := range payer.StatePatterns(state) {
		states = append(states, like)
		args = append(args, pattern)
	}
	w.add("("+strings.Join(family, " OR ")+") AND ("+strings.Join(states, " OR ")+")", args...)
}

func (w *where) empty() bool {
	return len(w.clauses) == 0
}

func (w *where) String() string {
	return strings.Join(w.clauses, " AND ")
}

// clampLimit bounds a requested row count to [1, upper]. Zero selects def.
func clampLimit(limit, def, upper int) int {
	if limit == 0 {
		limit = def
	}
	switch {
	case limit < 1:
		return 1
	case limit > upper:
		return upper
	}
	return limit
}
