// Package view implements the navigation state of the reimbursement tool:
// a person's summary, the raw rows of one of their locations, and back.
package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"storj.io/vob-portal/pkg/reimb"
)

// Kind tags the active view.
type Kind int

const (
	// None means no view is open.
	None Kind = iota
	// ClientSummary shows the aggregate summary of one person.
	ClientSummary
	// LocationDetail shows the raw rows of one person at one location.
	LocationDetail
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case ClientSummary:
		return "client-summary"
	case LocationDetail:
		return "location-detail"
	default:
		return "unknown"
	}
}

// DetailStatus is the progress of a location detail fetch.
type DetailStatus int

const (
	// Pending means the rows are still being fetched.
	Pending DetailStatus = iota
	// Loaded means Rows holds the fetched rows.
	Loaded
	// Failed means Err holds the failure message.
	Failed
)

// DefaultRowsLimit bounds the number of raw rows fetched for a location.
const DefaultRowsLimit = 500

// FailedFallback is shown when a fetch fails without a message.
const FailedFallback = "Failed to load rows"

// State is a snapshot of the controller. Person and Location are only set
// outside of None; Status, Rows and Err only in LocationDetail.
type State struct {
	Kind     Kind
	Person   *reimb.Person
	Summary  reimb.Summary
	Location reimb.Location
	Status   DetailStatus
	Rows     []reimb.RawRow
	Err      string
}

// DetailTitle is the header of a location detail view.
func DetailTitle(loc reimb.Location) string {
	return "Daily rows: " + loc.String()
}

// Renderer displays controller transitions. Methods are called while the
// controller holds its lock and must not call back into it.
type Renderer interface {
	// Summary shows the summary of a person and hides the detail view.
	Summary(p *reimb.Person, summary reimb.Summary)
	// Loading shows the detail view with a loading indicator.
	Loading(title, subtitle string)
	// Rows replaces the loading indicator with the fetched rows.
	Rows(title, subtitle string, rows []reimb.RawRow)
	// Failed replaces the loading indicator with a message.
	Failed(title, subtitle, message string)
	// Closed hides both views and drops all rendered content.
	Closed()
}

// Controller owns the single active view. It is safe for concurrent use;
// a fetch that completes after the view it was issued for has been replaced
// or closed is discarded.
type Controller struct {
	log      *zap.Logger
	rows     reimb.RowsQuerier
	renderer Renderer
	limit    int

	mu         sync.Mutex
	generation uint64
	state      State
}

// NewController returns a controller that fetches location rows through
// rows and reports transitions to renderer. A nil renderer discards them.
func NewController(log *zap.Logger, rows reimb.RowsQuerier, renderer Renderer, limit int) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	if renderer == nil {
		renderer = nopRenderer{}
	}
	if limit <= 0 {
		limit = DefaultRowsLimit
	}
	return &Controller{
		log:      log,
		rows:     rows,
		renderer: renderer,
		limit:    limit,
	}
}

// State returns a snapshot of the current view.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActivePerson returns the person backing the open view, or nil.
func (c *Controller) ActivePerson() *reimb.Person {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Person
}

// OpenClientSummary shows the summary of p, replacing any open view.
func (c *Controller) OpenClientSummary(p *reimb.Person) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.enterSummary(p)
	return c.state
}

func (c *Controller) enterSummary(p *reimb.Person) {
	summary := reimb.BuildSummary(p)
	c.state = State{
		Kind:    ClientSummary,
		Person:  p,
		Summary: summary,
	}
	c.renderer.Summary(p, summary)
}

// OpenLocationDetail shows the raw rows of p at loc. The view enters the
// pending state immediately, then blocks on the fetch. The returned state is
// the one the fetch produced; when the view was replaced or closed in the
// meantime, the result is dropped and the current state is returned.
func (c *Controller) OpenLocationDetail(ctx context.Context, p *reimb.Person, loc reimb.Location) State {
	c.mu.Lock()
	c.generation++
	token := c.generation
	c.state = State{
		Kind:     LocationDetail,
		Person:   p,
		Summary:  reimb.BuildSummary(p),
		Location: loc,
		Status:   Pending,
	}
	title, subtitle := DetailTitle(loc), p.MemberID
	c.renderer.Loading(title, subtitle)
	c.mu.Unlock()

	rows, err := c.rows.ReimbursementRows(ctx, p.MemberID, loc, c.limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.generation {
		c.log.Debug("dropping stale location rows",
			zap.String("member", p.MemberID),
			zap.Stringer("loc", loc),
			zap.Uint64("token", token),
			zap.Uint64("generation", c.generation))
		return c.state
	}

	if err != nil {
		message := err.Error()
		if message == "" {
			message = FailedFallback
		}
		c.state.Status = Failed
		c.state.Err = message
		c.renderer.Failed(title, subtitle, message)
		return c.state
	}

	c.state.Status = Loaded
	c.state.Rows = rows
	c.renderer.Rows(title, subtitle, rows)
	return c.state
}

// Back returns from a location detail to the summary of the person the
// detail was opened for. In any other state it does nothing.
func (c *Controller) Back() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Kind != LocationDetail {
		return c.state
	}
	c.generation++
	c.enterSummary(c.state.Person)
	return c.state
}

// Close hides every view and forgets the active person.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = State{}
	c.renderer.Closed()
}

type nopRenderer struct{}

func (nopRenderer) Summary(*reimb.Person, reimb.Summary) {}
func (nopRenderer) Loading(string, string)               {}
func (nopRenderer) Rows(string, string, []reimb.RawRow)  {}
func (nopRenderer) Failed(string, string, string)        {}
func (nopRenderer) Closed()                              {}
