package reimb

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// ExportBuffer accumulates person summaries as CSV, one line per person.
// The location columns carry the same facts as Summary.Lines.
type ExportBuffer struct {
	buf bytes.Buffer
	csv *csv.Writer
}

// Emit appends the summary of p.
func (b *ExportBuffer) Emit(p *Person) {
	b.init()
	summary := BuildSummary(p)
	record := []string{summary.MemberID, summary.PayerName, p.LastName, p.FirstName}
	for _, line := range summary.Lines {
		if !line.Known {
			record = append(record, "", "")
			continue
		}
		record = append(record, string(line.Stats.Avg), strconv.FormatInt(line.Stats.NumRows, 10))
	}
	b.write(record)
}

// Finalize flushes and returns the CSV bytes. The header is always present.
func (b *ExportBuffer) Finalize() []byte {
	b.init()
	b.csv.Flush()
	return b.buf.Bytes()
}

func (b *ExportBuffer) init() {
	if b.csv == nil {
		b.csv = csv.NewWriter(&b.buf)
		header := []string{"member_id", "payer", "last_name", "first_name"}
		for _, loc := range Locations {
			header = append(header, loc.String()+"_avg", loc.String()+"_rows")
		}
		b.write(header)
	}
}

func (b *ExportBuffer) write(record []string) {
	_ = b.csv.Write(record)
}
