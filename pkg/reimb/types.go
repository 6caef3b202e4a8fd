// Package reimb groups reimbursement rate rows into per-person summaries.
package reimb

import (
	"regexp"
	"strings"

	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/format"
)

// Location is a service location code (level of care).
type Location string

const (
	Detox                  Location = "DTX"
	Residential            Location = "RTC"
	PartialHospitalization Location = "PHP"
	IntensiveOutpatient    Location = "IOP"
)

// Locations lists the known service locations in canonical display order.
var Locations = []Location{Detox, Residential, PartialHospitalization, IntensiveOutpatient}

// LocationFromString parses a location code, ignoring case and surrounding
// whitespace.
func LocationFromString(s string) (Location, error) {
	loc := Location(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Locations {
		if loc == known {
			return loc, nil
		}
	}
	return "", errs.New("invalid location %q", s)
}

func (l Location) String() string {
	return string(l)
}

// Row is one pre-aggregated reimbursement bucket as returned by the
// summary endpoint: the average allowed amount and row count for a single
// (person, location) pair.
type Row struct {
	MemberID   string        `json:"member_id"`
	PayerName  string        `json:"payer_name"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Location   Location      `json:"loc"`
	AvgAllowed format.Amount `json:"avg_allowed"`
	NumRows    int64         `json:"n_rows"`
}

// Identity returns the grouping key of the row.
func (r Row) Identity() Identity {
	return Identity{
		MemberID:  r.MemberID,
		PayerName: r.PayerName,
		LastName:  r.LastName,
		FirstName: r.FirstName,
	}
}

// RawRow is a single billed service-date range for a member at a location.
type RawRow struct {
	ServiceDateFrom string        `json:"service_date_from"`
	ServiceDateTo   string        `json:"service_date_to"`
	PayerName       string        `json:"payer_name"`
	AllowedAmount   format.Amount `json:"allowed_amount"`
}

// Identity identifies a grouped person. It is compared by value, so fields
// containing any text never collide with each other.
type Identity struct {
	MemberID  string
	PayerName string
	LastName  string
	FirstName string
}

// NoName is displayed when a person has neither a first nor a last name.
const NoName = "(No name)"

var leadingComma = regexp.MustCompile(`^,\s*`)

// DisplayName renders "Last, First", dropping the separator when the last
// name is missing.
func (id Identity) DisplayName() string {
	name := leadingComma.ReplaceAllString(id.LastName+", "+id.FirstName, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return NoName
	}
	return name
}

// Stats are the per-location facts of a person.
type Stats struct {
	Avg     format.Amount
	NumRows int64
}

// Person is the aggregate of all summary rows sharing one Identity.
type Person struct {
	Identity
	Locations map[Location]Stats
}

// Stats returns the facts for loc, if any row carried them.
func (p *Person) Stats(loc Location) (Stats, bool) {
	stats, ok := p.Locations[loc]
	return stats, ok
}
