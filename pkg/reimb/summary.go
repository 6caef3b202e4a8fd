package reimb

import (
	"fmt"
	"strings"

	"storj.io/vob-portal/pkg/format"
)

const summaryTitle = "Reimbursement Summary"

// LocationLine holds the facts shown for one location of a person.
type LocationLine struct {
	Location Location
	Stats    Stats
	Known    bool
}

// Detail renders the facts without the location label, or "" when no row
// carried data for the location.
func (l LocationLine) Detail() string {
	if !l.Known {
		return ""
	}
	return fmt.Sprintf("avg %s (%d rows)", format.Money(l.Stats.Avg), l.Stats.NumRows)
}

func (l LocationLine) String() string {
	if !l.Known {
		return l.Location.String() + ":"
	}
	return l.Location.String() + ": " + l.Detail()
}

// Fragment is a location line prepared for inline rendering. Detail is
// already escaped.
type Fragment struct {
	Location Location
	Detail   string
}

// HTML renders the fragment as an inline HTML span.
func (f Fragment) HTML() string {
	return fmt.Sprintf("<span><b>%s</b>: %s</span>", format.Escape(f.Location.String()), f.Detail)
}

// Summary is the canonical presentation of a person. The text block and the
// fragments are both derived from Lines.
type Summary struct {
	Name      string
	MemberID  string
	PayerName string
	Lines     []LocationLine
}

// BuildSummary collects the facts of p for every known location in canonical
// order.
func BuildSummary(p *Person) Summary {
	lines := make([]LocationLine, 0, len(Locations))
	for _, loc := range Locations {
		stats, ok := p.Stats(loc)
		lines = append(lines, LocationLine{
			Location: loc,
			Stats:    stats,
			Known:    ok,
		})
	}
	return Summary{
		Name:      p.DisplayName(),
		MemberID:  p.MemberID,
		PayerName: p.PayerName,
		Lines:     lines,
	}
}

// Text renders the multi-line summary used both on screen and for copying.
func (s Summary) Text() string {
	var b strings.Builder
	b.WriteString(summaryTitle + "\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Member ID: %s\n", s.MemberID)
	if s.PayerName != "" {
		fmt.Fprintf(&b, "Payer: %s\n", s.PayerName)
	}
	b.WriteString("\n")
	for i, line := range s.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line.String())
	}
	return b.String()
}

// Fragments renders each location line for inline display.
func (s Summary) Fragments() []Fragment {
	fragments := make([]Fragment, 0, len(s.Lines))
	for _, line := range s.Lines {
		fragments = append(fragments, Fragment{
			Location: line.Location,
			Detail:   format.Escape(line.Detail()),
		})
	}
	return fragments
}

// Subtitle renders the one-line identity header of the summary.
func (s Summary) Subtitle() string {
	return strings.TrimSpace(fmt.Sprintf("%s • %s • %s", s.Name, s.MemberID, s.PayerName))
}
