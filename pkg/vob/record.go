// Package vob implements the verification-of-benefits search.
package vob

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/errs"
	"golang.org/x/exp/maps"

	"storj.io/vob-portal/pkg/format"
)

// Record is a single VOB search result. Text columns are nullable.
type Record struct {
	ID                     int64   `json:"id"`
	CreatedAt              *string `json:"created_at"`
	FacilityName           *string `json:"facility_name"`
	PayerCanonical         *string `json:"payer_canonical"`
	InsuranceNameRaw       *string `json:"insurance_name_raw"`
	InsuranceID            *string `json:"insurance_id"`
	InsuranceIDClean       *string `json:"insurance_id_clean"`
	GroupNumber            *string `json:"group_number"`
	GroupNumberClean       *string `json:"group_number_clean"`
	InOutNetwork           *string `json:"in_out_network"`
	DeductibleIndividual   *string `json:"deductible_individual"`
	FamilyDeductible       *string `json:"family_deductible"`
	OOPIndividual          *string `json:"oop_individual"`
	OOPFamily              *string `json:"oop_family"`
	SelfOrCommercialFunded *string `json:"self_or_commercial_funded"`
	ExchangeOrEmployer     *string `json:"exchange_or_employer"`
	EmployerName           *string `json:"employer_name"`
	FirstName              *string `json:"first_name"`
	LastName               *string `json:"last_name"`
	DOB                    *string `json:"dob"`
	SourceFile             *string `json:"source_file"`
	ErrorDetails           *string `json:"error_details"`
}

// Columns are the headers of the results table, matching Cells.
var Columns = []string{
	"ID", "Created", "Name", "DOB", "Payer", "Network", "Funding", "Ded (Ind)", "OOP (Ind)", "Facility",
}

// Payer returns the canonical payer name, falling back to the raw insurance
// name when no canonical name is known.
func (r *Record) Payer() string {
	if payer := format.Text(r.PayerCanonical); payer != "" {
		return payer
	}
	return format.Text(r.InsuranceNameRaw)
}

// Cells renders the row of the results table.
func (r *Record) Cells() []string {
	return []string{
		format.Text(r.ID),
		format.Text(r.CreatedAt),
		format.Text(r.FirstName) + " " + format.Text(r.LastName),
		format.Text(r.DOB),
		r.Payer(),
		format.Text(r.InOutNetwork),
		format.Text(r.SelfOrCommercialFunded),
		format.Text(r.DeductibleIndividual),
		format.Text(r.OOPIndividual),
		format.Text(r.FacilityName),
	}
}

// Field is a single raw column of a record.
type Field struct {
	Name  string
	Value string
}

// Detail is the on-demand projection of a record: a header plus the full raw
// field set.
type Detail struct {
	Title    string
	Subtitle string
	Body     string
	Fields   []Field
}

// DefaultDetailTitle is the title of a record without any name.
const DefaultDetailTitle = "Client Details"

// NewDetail projects r for the detail view.
func NewDetail(r *Record) (*Detail, error) {
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, errs.Wrap(err)
	}

	var raw map[string]any
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	if err := d.Decode(&raw); err != nil {
		return nil, errs.Wrap(err)
	}
	names := maps.Keys(raw)
	slices.Sort(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		value := ""
		if v := raw[name]; v != nil {
			value = fmt.Sprint(v)
		}
		fields = append(fields, Field{Name: name, Value: value})
	}

	title := strings.TrimSpace(format.Text(r.FirstName) + " " + format.Text(r.LastName))
	if title == "" {
		title = DefaultDetailTitle
	}

	return &Detail{
		Title:    title,
		Subtitle: strings.TrimSpace(r.Payer() + "  " + format.Text(r.FacilityName)),
		Body:     string(body),
		Fields:   fields,
	}, nil
}
