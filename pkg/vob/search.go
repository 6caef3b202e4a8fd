package vob

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/payer"
)

const (
	// DefaultLimit is the result-count limit used when none is given.
	DefaultLimit = 50
)

// ErrValidation is the class of errors for searches that are rejected
// before any request is issued.
var ErrValidation = errs.Class("validation")

// Filters are the VOB search fields.
type Filters struct {
	MemberID  string
	DOB       string
	Payer     string
	State     string
	Facility  string
	Employer  string
	FirstName string
	LastName  string

	// Limit bounds the number of results. It is not a filter.
	Limit int
}

// Trim returns a copy of f with surrounding whitespace removed from every
// filter field.
func (f Filters) Trim() Filters {
	return Filters{
		MemberID:  strings.TrimSpace(f.MemberID),
		DOB:       strings.TrimSpace(f.DOB),
		Payer:     strings.TrimSpace(f.Payer),
		State:     strings.TrimSpace(f.State),
		Facility:  strings.TrimSpace(f.Facility),
		Employer:  strings.TrimSpace(f.Employer),
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Limit:     f.Limit,
	}
}

// ApplyStateToggle clears the state sub-filter when the payer text does not
// select a state-administered payer family, mirroring the hidden field.
func (f Filters) ApplyStateToggle() Filters {
	if !payer.ShouldShowState(f.Payer) {
		f.State = ""
	}
	return f
}

// Empty reports whether every filter field is empty. The limit is ignored.
func (f Filters) Empty() bool {
	f.Limit = 0
	return f == Filters{}
}

// Validate requires at least one filter.
func (f Filters) Validate() error {
	if f.Empty() {
		return ErrValidation.New("Enter at least one filter.")
	}
	return nil
}

// Query encodes the non-empty fields and the limit as service query
// parameters.
func (f Filters) Query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("memberId", f.MemberID)
	set("dob", f.DOB)
	set("payer", f.Payer)
	set("bcbsState", f.State)
	set("facility", f.Facility)
	set("employer", f.Employer)
	set("firstName", f.FirstName)
	set("lastName", f.LastName)

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// FiltersFromQuery decodes service query parameters. A missing limit
// decodes as DefaultLimit.
func FiltersFromQuery(q url.Values) (Filters, error) {
	f := Filters{
		MemberID:  q.Get("memberId"),
		DOB:       q.Get("dob"),
		Payer:     q.Get("payer"),
		State:     q.Get("bcbsState"),
		Facility:  q.Get("facility"),
		Employer:  q.Get("employer"),
		FirstName: q.Get("firstName"),
		LastName:  q.Get("lastName"),
		Limit:     DefaultLimit,
	}.Trim()

	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return Filters{}, errs.New("invalid limit %q", s)
		}
		f.Limit = limit
	}
	return f, nil
}

// Querier resolves VOB searches into records.
type Querier interface {
	SearchVOB(ctx context.Context, filters Filters) ([]Record, error)
}
