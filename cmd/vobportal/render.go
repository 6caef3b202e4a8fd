package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"storj.io/vob-portal/pkg/fancy"
	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/view"
	"storj.io/vob-portal/pkg/vob"
)

var rowsColumns = []string{"From", "To", "Payer", "Allowed"}

// terminalRenderer prints view transitions as they happen.
type terminalRenderer struct {
	w io.Writer
}

var _ view.Renderer = terminalRenderer{}

func (r terminalRenderer) Summary(p *reimb.Person, summary reimb.Summary) {
	_, _ = fmt.Fprintln(r.w)
	fancy.Finfoln(r.w, summary.Text())
	_, _ = fmt.Fprintln(r.w)
}

func (r terminalRenderer) Loading(title, subtitle string) {
	r.header(title, subtitle)
	fancy.Fmutedln(r.w, "Loading...")
}

func (r terminalRenderer) Rows(title, subtitle string, rows []reimb.RawRow) {
	renderRows(r.w, rows)
}

func (r terminalRenderer) Failed(title, subtitle, message string) {
	fancy.Ferrorln(r.w, message)
}

func (r terminalRenderer) Closed() {}

func (r terminalRenderer) header(title, subtitle string) {
	_, _ = fmt.Fprintln(r.w)
	fancy.Finfoln(r.w, title)
	if subtitle != "" {
		fancy.Fmutedln(r.w, subtitle)
	}
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func renderRows(w io.Writer, rows []reimb.RawRow) {
	table := newTable(w, rowsColumns)
	for _, row := range rows {
		table.Append([]string{
			row.ServiceDateFrom,
			row.ServiceDateTo,
			row.PayerName,
			format.Money(row.AllowedAmount),
		})
	}
	table.Render()
}

// renderVOB prints the results table. When members is non-nil an extra
// column marks records whose member has reimbursement data.
func renderVOB(w io.Writer, records []vob.Record, members map[string]bool) {
	header := vob.Columns
	if members != nil {
		header = append(append([]string(nil), header...), "Reimb")
	}
	table := newTable(w, header)
	for i := range records {
		cells := records[i].Cells()
		if members != nil {
			marker := ""
			if members[memberID(&records[i])] {
				marker = "yes"
			}
			cells = append(cells, marker)
		}
		table.Append(cells)
	}
	table.Render()
}

func renderDetail(w io.Writer, detail *vob.Detail) {
	_, _ = fmt.Fprintln(w)
	fancy.Finfoln(w, detail.Title)
	if detail.Subtitle != "" {
		fancy.Fmutedln(w, detail.Subtitle)
	}
	_, _ = fmt.Fprintln(w, detail.Body)
}

// memberID is the id a VOB record is matched against reimbursement rows
// with.
func memberID(r *vob.Record) string {
	if id := format.Text(r.InsuranceIDClean); id != "" {
		return id
	}
	return format.Text(r.InsuranceID)
}
