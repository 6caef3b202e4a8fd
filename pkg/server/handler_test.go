package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/vob"
)

type fakeStore struct {
	vobFilters   vob.Filters
	reimbFilters reimb.Filters
	rowsArgs     []any
	memberIDs    []string

	records []vob.Record
	rows    []reimb.Row
	raw     []reimb.RawRow
	err     error
}

func (s *fakeStore) SearchVOB(ctx context.Context, filters vob.Filters) ([]vob.Record, error) {
	s.vobFilters = filters
	return s.records, s.err
}

func (s *fakeStore) ReimbursementSummary(ctx context.Context, filters reimb.Filters) ([]reimb.Row, error) {
	s.reimbFilters = filters
	return s.rows, s.err
}

func (s *fakeStore) ReimbursementRows(ctx context.Context, memberID string, loc reimb.Location, limit int) ([]reimb.RawRow, error) {
	s.rowsArgs = []any{memberID, loc, limit}
	return s.raw, s.err
}

func (s *fakeStore) MembersWithReimbursement(ctx context.Context, memberIDs []string) ([]string, error) {
	s.memberIDs = memberIDs
	return memberIDs, s.err
}

func (s *fakeStore) Healthy(ctx context.Context) bool { return s.err == nil }
func (s *fakeStore) Path() string                     { return "/data/vob.db" }

func serve(t *testing.T, handler echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec
}

func TestHandlerHealth(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store)

	rec := serve(t, h.Health, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": true, "dbPath": "/data/vob.db"}`, rec.Body.String())

	store.err = errors.New("gone")
	rec = serve(t, h.Health, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok": false, "dbPath": "/data/vob.db"}`, rec.Body.String())
}

func TestHandlerSearchVOB(t *testing.T) {
	name := "Jane"
	store := &fakeStore{records: []vob.Record{{ID: 3, FirstName: &name}}}
	h := NewHandler(store)

	rec := serve(t, h.SearchVOB, "/api/vob/search?firstName=+Jane+&bcbsState=CA&limit=20")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, vob.Filters{FirstName: "Jane", State: "CA", Limit: 20}, store.vobFilters)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"first_name":"Jane"`)
	assert.Contains(t, rec.Body.String(), `"dob":null`)

	rec = serve(t, h.SearchVOB, "/api/vob/search?firstName=Jane&limit=many")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "invalid limit \"many\""}`, rec.Body.String())

	store.err = portaldb.ErrValidation.New("Provide at least one filter.")
	rec = serve(t, h.SearchVOB, "/api/vob/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": "Provide at least one filter."}`, rec.Body.String())

	store.err = errors.New("database is locked")
	rec = serve(t, h.SearchVOB, "/api/vob/search?dob=1990-01-01")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error": "database is locked"}`, rec.Body.String())

	store.err = portaldb.Error.Wrap(context.DeadlineExceeded)
	rec = serve(t, h.SearchVOB, "/api/vob/search?dob=1990-01-01")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandlerReimbursementSummary(t *testing.T) {
	store := &fakeStore{rows: []reimb.Row{{
		MemberID:   "M1",
		Location:   reimb.Detox,
		AvgAllowed: format.Amount("150"),
		NumRows:    3,
	}}}
	h := NewHandler(store)

	rec := serve(t, h.ReimbursementSummary, "/api/reimb/summary?prefix=M&payer=blue&bcbsState=TX&employer=Acme")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, reimb.Filters{Prefix: "M", Payer: "blue", State: "TX", Employer: "Acme"}, store.reimbFilters)
	assert.JSONEq(t, `{"count": 1, "rows": [{
		"member_id": "M1", "payer_name": "", "first_name": "", "last_name": "",
		"loc": "DTX", "avg_allowed": 150, "n_rows": 3
	}]}`, rec.Body.String())
}

func TestHandlerReimbursementRows(t *testing.T) {
	store := &fakeStore{raw: []reimb.RawRow{{ServiceDateFrom: "2024-01-01", AllowedAmount: format.Amount("")}}}
	h := NewHandler(store)

	rec := serve(t, h.ReimbursementRows, "/api/reimb/rows?memberId=M1&loc=dtx&limit=25")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"M1", reimb.Location("dtx"), 25}, store.rowsArgs)
	assert.Contains(t, rec.Body.String(), `"allowed_amount":null`)

	rec = serve(t, h.ReimbursementRows, "/api/reimb/rows?memberId=M1&loc=DTX")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"M1", reimb.Detox, 0}, store.rowsArgs)

	rec = serve(t, h.ReimbursementRows, "/api/reimb/rows?memberId=M1&loc=DTX&limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMembersWithReimbursement(t *testing.T) {
	store := &fakeStore{}
	h := NewHandler(store)

	rec := serve(t, h.MembersWithReimbursement, "/api/reimb/members?memberId=M1,+M2&memberId=M3&memberId=")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"M1", "M2", "M3"}, store.memberIDs)
	assert.JSONEq(t, `{"count": 3, "rows": ["M1", "M2", "M3"]}`, rec.Body.String())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Enter at least one filter.", Message(vob.ErrValidation.New("Enter at least one filter.")))
	assert.Equal(t, "Provide memberId and loc.", Message(portaldb.ErrValidation.New("Provide memberId and loc.")))
	assert.Equal(t, "portaldb: disk I/O error", Message(portaldb.Error.New("disk I/O error")))
}
