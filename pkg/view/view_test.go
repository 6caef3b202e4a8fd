package view_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/view"
)

// recorder keeps a log of rendered transitions.
type recorder struct {
	events []string
}

func (r *recorder) Summary(p *reimb.Person, summary reimb.Summary) {
	r.events = append(r.events, "summary "+p.MemberID)
}

func (r *recorder) Loading(title, subtitle string) {
	r.events = append(r.events, fmt.Sprintf("loading %s %s", title, subtitle))
}

func (r *recorder) Rows(title, subtitle string, rows []reimb.RawRow) {
	r.events = append(r.events, fmt.Sprintf("rows %s %d", title, len(rows)))
}

func (r *recorder) Failed(title, subtitle, message string) {
	r.events = append(r.events, fmt.Sprintf("failed %s %s", title, message))
}

func (r *recorder) Closed() {
	r.events = append(r.events, "closed")
}

type rowsResult struct {
	rows []reimb.RawRow
	err  error
}

type fakeRows struct {
	calls   []string
	results map[reimb.Location]rowsResult
	// gate, when set, is received from before returning.
	gate chan struct{}
}

func (f *fakeRows) ReimbursementRows(ctx context.Context, memberID string, loc reimb.Location, limit int) ([]reimb.RawRow, error) {
	f.calls = append(f.calls, fmt.Sprintf("%s/%s/%d", memberID, loc, limit))
	if f.gate != nil {
		<-f.gate
	}
	result := f.results[loc]
	return result.rows, result.err
}

func person(member string) *reimb.Person {
	return &reimb.Person{
		Identity: reimb.Identity{MemberID: member, PayerName: "Aetna", LastName: "Doe", FirstName: "Jane"},
		Locations: map[reimb.Location]reimb.Stats{
			reimb.Detox: {Avg: format.Amount("150"), NumRows: 3},
		},
	}
}

func TestOpenClientSummary(t *testing.T) {
	r := &recorder{}
	c := view.NewController(zaptest.NewLogger(t), &fakeRows{}, r, 0)

	assert.Equal(t, view.None, c.State().Kind)
	assert.Nil(t, c.ActivePerson())

	p := person("M1")
	state := c.OpenClientSummary(p)
	assert.Equal(t, view.ClientSummary, state.Kind)
	assert.Same(t, p, state.Person)
	assert.Same(t, p, c.ActivePerson())
	assert.Contains(t, state.Summary.Text(), "DTX: avg $150.00 (3 rows)")

	q := person("M2")
	c.OpenClientSummary(q)
	assert.Same(t, q, c.ActivePerson())

	assert.Equal(t, []string{"summary M1", "summary M2"}, r.events)
}

func TestOpenLocationDetail(t *testing.T) {
	rows := &fakeRows{results: map[reimb.Location]rowsResult{
		reimb.Detox: {rows: []reimb.RawRow{
			{ServiceDateFrom: "2024-01-02", ServiceDateTo: "2024-01-03", PayerName: "Aetna", AllowedAmount: "100"},
			{ServiceDateFrom: "2024-01-01", ServiceDateTo: "2024-01-02", PayerName: "Aetna", AllowedAmount: "200"},
		}},
	}}
	r := &recorder{}
	c := view.NewController(zaptest.NewLogger(t), rows, r, 25)

	p := person("M1")
	c.OpenClientSummary(p)
	state := c.OpenLocationDetail(context.Background(), p, reimb.Detox)

	assert.Equal(t, view.LocationDetail, state.Kind)
	assert.Equal(t, view.Loaded, state.Status)
	assert.Equal(t, reimb.Detox, state.Location)
	assert.Len(t, state.Rows, 2)
	assert.Same(t, p, state.Person)

	assert.Equal(t, []string{"M1/DTX/25"}, rows.calls)
	assert.Equal(t, []string{
		"summary M1",
		"loading Daily rows: DTX M1",
		"rows Daily rows: DTX 2",
	}, r.events)
}

func TestLocationDetailFailureShowsMessage(t *testing.T) {
	rows := &fakeRows{results: map[reimb.Location]rowsResult{
		reimb.Residential: {err: errors.New("timeout")},
		reimb.Detox:       {err: errors.New("")},
	}}
	r := &recorder{}
	c := view.NewController(zaptest.NewLogger(t), rows, r, 0)

	p := person("M1")
	state := c.OpenLocationDetail(context.Background(), p, reimb.Residential)
	assert.Equal(t, view.Failed, state.Status)
	assert.Equal(t, "timeout", state.Err)
	assert.Nil(t, state.Rows)
	assert.Equal(t, "failed Daily rows: RTC timeout", r.events[len(r.events)-1])

	state = c.OpenLocationDetail(context.Background(), p, reimb.Detox)
	assert.Equal(t, view.FailedFallback, state.Err)
}

func TestBackReturnsToCapturedPerson(t *testing.T) {
	rows := &fakeRows{results: map[reimb.Location]rowsResult{}}
	c := view.NewController(zaptest.NewLogger(t), rows, &recorder{}, 0)

	p := person("M1")
	want := c.OpenClientSummary(p)

	c.OpenLocationDetail(context.Background(), p, reimb.PartialHospitalization)

	// back uses the person captured with the detail view, even when it was
	// never selected from the current list
	got := c.Back()
	assert.Equal(t, want, got)
	assert.Equal(t, view.ClientSummary, got.Kind)
	assert.Same(t, p, got.Person)

	// back from the summary is a no-op
	assert.Equal(t, want, c.Back())

	c.Close()
	assert.Equal(t, view.State{}, c.Back())
}

func TestClose(t *testing.T) {
	rows := &fakeRows{results: map[reimb.Location]rowsResult{
		reimb.Detox: {rows: []reimb.RawRow{{ServiceDateFrom: "2024-01-01"}}},
	}}
	r := &recorder{}
	c := view.NewController(zaptest.NewLogger(t), rows, r, 0)

	p := person("M1")
	c.OpenLocationDetail(context.Background(), p, reimb.Detox)
	c.Close()

	assert.Equal(t, view.State{}, c.State())
	assert.Nil(t, c.ActivePerson())
	assert.Equal(t, "closed", r.events[len(r.events)-1])
}

func TestStaleRowsAreDropped(t *testing.T) {
	gate := make(chan struct{})
	rows := &fakeRows{
		gate: gate,
		results: map[reimb.Location]rowsResult{
			reimb.Detox: {rows: []reimb.RawRow{{ServiceDateFrom: "2024-01-01"}}},
		},
	}
	r := &recorder{}
	c := view.NewController(zaptest.NewLogger(t), rows, r, 0)

	p := person("M1")
	done := make(chan view.State)
	go func() {
		done <- c.OpenLocationDetail(context.Background(), p, reimb.Detox)
	}()

	require.Eventually(t, func() bool {
		return c.State().Kind == view.LocationDetail
	}, testTimeout, testTick)
	c.Close()

	close(gate)
	state := <-done

	assert.Equal(t, view.None, state.Kind)
	assert.Equal(t, view.State{}, c.State())
	for _, event := range r.events {
		assert.False(t, strings.HasPrefix(event, "rows"), event)
	}
}

func TestStaleRowsDoNotReplaceNewerView(t *testing.T) {
	gate := make(chan struct{})
	rows := &fakeRows{
		gate: gate,
		results: map[reimb.Location]rowsResult{
			reimb.Detox: {err: errors.New("late failure")},
		},
	}
	c := view.NewController(zaptest.NewLogger(t), rows, nil, 0)

	first := person("M1")
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.OpenLocationDetail(context.Background(), first, reimb.Detox)
	}()
	require.Eventually(t, func() bool {
		return c.State().Kind == view.LocationDetail
	}, testTimeout, testTick)

	second := person("M2")
	c.OpenClientSummary(second)

	close(gate)
	<-done

	state := c.State()
	assert.Equal(t, view.ClientSummary, state.Kind)
	assert.Same(t, second, state.Person)
	assert.Empty(t, state.Err)
}
