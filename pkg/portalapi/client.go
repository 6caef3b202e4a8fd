// Package portalapi provides client code for the VOB and reimbursement
// query service.
package portalapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/vob"
)

const (
	healthPath       = "/api/health"
	vobSearchPath    = "/api/vob/search"
	reimbSummaryPath = "/api/reimb/summary"
	reimbRowsPath    = "/api/reimb/rows"
	reimbMembersPath = "/api/reimb/members"

	// DefaultAPIURL is where the service listens by default.
	DefaultAPIURL = "http://127.0.0.1:8000"
)

// Messages reported when a failed response carries no message of its own.
const (
	SearchFailed       = "Search failed"
	SummaryFailed      = "Failed to load summary"
	RowsFailed         = "Failed to load rows"
	HealthFailed       = "Health check failed"
	MembersFailed      = "Failed to load members"
	missingRowsMessage = "Provide memberId and loc."
)

// Error is a failure reported by the service. Message is shown to the user
// as is.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Health is the connectivity report of the service.
type Health struct {
	OK     bool   `json:"ok"`
	DBPath string `json:"dbPath"`
}

type rowsResponse[T any] struct {
	Count int `json:"count"`
	Rows  []T `json:"rows"`
}

// Client talks to the query service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

var (
	_ vob.Querier       = (*Client)(nil)
	_ reimb.Querier     = (*Client)(nil)
	_ reimb.RowsQuerier = (*Client)(nil)
)

// NewClient returns a client for the service at apiURL.
func NewClient(apiURL string) (*Client, error) {
	baseURL, err := parseAPIURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: baseURL,
		http:    http.DefaultClient,
	}, nil
}

// Health checks connectivity. Callers must treat a failure as "not
// connected" and nothing more.
func (cli *Client) Health(ctx context.Context) (*Health, error) {
	health := new(Health)
	if err := cli.get(ctx, healthPath, nil, HealthFailed, health); err != nil {
		return nil, err
	}
	return health, nil
}

// SearchVOB runs a VOB search. Only the non-empty filters are sent.
func (cli *Client) SearchVOB(ctx context.Context, filters vob.Filters) ([]vob.Record, error) {
	var r rowsResponse[vob.Record]
	if err := cli.get(ctx, vobSearchPath, filters.Query(), SearchFailed, &r); err != nil {
		return nil, err
	}
	return r.Rows, nil
}

// ReimbursementSummary fetches the per-location summary rows matching
// filters.
func (cli *Client) ReimbursementSummary(ctx context.Context, filters reimb.Filters) ([]reimb.Row, error) {
	var r rowsResponse[reimb.Row]
	if err := cli.get(ctx, reimbSummaryPath, filters.Query(), SummaryFailed, &r); err != nil {
		return nil, err
	}
	return r.Rows, nil
}

// ReimbursementRows fetches at most limit raw rows of a member at loc.
func (cli *Client) ReimbursementRows(ctx context.Context, memberID string, loc reimb.Location, limit int) ([]reimb.RawRow, error) {
	if memberID == "" || loc == "" {
		return nil, &Error{Status: http.StatusBadRequest, Message: missingRowsMessage}
	}

	q := url.Values{}
	q.Set("memberId", memberID)
	q.Set("loc", loc.String())
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var r rowsResponse[reimb.RawRow]
	if err := cli.get(ctx, reimbRowsPath, q, RowsFailed, &r); err != nil {
		return nil, err
	}
	return r.Rows, nil
}

// MembersWithReimbursement returns which of memberIDs have reimbursement
// rows.
func (cli *Client) MembersWithReimbursement(ctx context.Context, memberIDs []string) ([]string, error) {
	if len(memberIDs) == 0 {
		return nil, nil
	}

	q := url.Values{}
	for _, id := range memberIDs {
		q.Add("memberId", id)
	}

	var r rowsResponse[string]
	if err := cli.get(ctx, reimbMembersPath, q, MembersFailed, &r); err != nil {
		return nil, err
	}
	return r.Rows, nil
}

func (cli *Client) get(ctx context.Context, path string, q url.Values, fallback string, out any) error {
	u := *cli.baseURL
	u.Path = path
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return errs.Wrap(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.http.Do(req)
	if err != nil {
		return errs.Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(resp.Body, fallback)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.New("invalid JSON response: %v", err)
	}
	return nil
}

// errorMessage extracts the service message from a failed response body.
func errorMessage(r io.Reader, fallback string) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil || body.Error == "" {
		return fallback
	}
	return body.Error
}

func parseAPIURL(s string) (*url.URL, error) {
	if s == "" {
		return nil, errs.New("API URL is required")
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, errs.New("API URL is malformed: %v", err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return nil, errs.New("API URL scheme must be http or https")
	case u.User != nil:
		return nil, errs.New("API URL must not have user info")
	case u.Host == "":
		return nil, errs.New("API URL must specify the host")
	case u.Path != "" && u.Path != "/":
		return nil, errs.New("API URL must not have a path")
	case u.RawQuery != "":
		return nil, errs.New("API URL must not have query values")
	case u.Fragment != "":
		return nil, errs.New("API URL must not have a fragment")
	}
	return u, nil
}
