package reimb

import (
	"context"
	"net/url"
	"strings"

	"github.com/zeebo/errs"
)

// ErrValidation is the class of errors for searches that are rejected
// before any request is issued.
var ErrValidation = errs.Class("validation")

// Filters are the reimbursement search fields.
type Filters struct {
	FirstName string
	LastName  string
	Prefix    string
	Payer     string
	State     string
	Employer  string
}

// Trim returns a copy of f with surrounding whitespace removed from every
// field.
func (f Filters) Trim() Filters {
	return Filters{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Prefix:    strings.TrimSpace(f.Prefix),
		Payer:     strings.TrimSpace(f.Payer),
		State:     strings.TrimSpace(f.State),
		Employer:  strings.TrimSpace(f.Employer),
	}
}

// Empty reports whether no filter field is set.
func (f Filters) Empty() bool {
	return f == Filters{}
}

// Validate requires at least one filter.
func (f Filters) Validate() error {
	if f.Empty() {
		return ErrValidation.New("Provide at least one filter.")
	}
	return nil
}

// Query encodes the non-empty fields as service query parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("firstName", f.FirstName)
	set("lastName", f.LastName)
	set("prefix", f.Prefix)
	set("payer", f.Payer)
	set("bcbsState", f.State)
	set("employer", f.Employer)
	return q
}

// FiltersFromQuery decodes service query parameters.
func FiltersFromQuery(q url.Values) Filters {
	return Filters{
		FirstName: q.Get("firstName"),
		LastName:  q.Get("lastName"),
		Prefix:    q.Get("prefix"),
		Payer:     q.Get("payer"),
		State:     q.Get("bcbsState"),
		Employer:  q.Get("employer"),
	}.Trim()
}

// Querier resolves reimbursement searches into rows.
type Querier interface {
	ReimbursementSummary(ctx context.Context, filters Filters) ([]Row, error)
}

// RowsQuerier fetches the raw rows of a member at one location.
type RowsQuerier interface {
	ReimbursementRows(ctx context.Context, memberID string, loc Location, limit int) ([]RawRow, error)
}

// Search validates the filters, queries the summary rows and groups them.
func Search(ctx context.Context, q Querier, filters Filters) ([]*Person, error) {
	filters = filters.Trim()
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	rows, err := q.ReimbursementSummary(ctx, filters)
	if err != nil {
		return nil, err
	}
	return Group(rows), nil
}
