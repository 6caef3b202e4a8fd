// Package server exposes the portal database over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/vob"
)

// Store answers the queries served by the handler.
type Store interface {
	vob.Querier
	reimb.Querier
	reimb.RowsQuerier
	MembersWithReimbursement(ctx context.Context, memberIDs []string) ([]string, error)
	Healthy(ctx context.Context) bool
	Path() string
}

var _ Store = (*portaldb.DB)(nil)

// HealthResponse is the body of /api/health.
type HealthResponse struct {
	OK     bool   `json:"ok"`
	DBPath string `json:"dbPath"`
}

// RowsResponse is the body of every listing endpoint.
type RowsResponse[T any] struct {
	Count int `json:"count"`
	Rows  []T `json:"rows"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the query endpoints.
type Handler struct {
	store Store
}

// NewHandler returns a handler backed by store.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers the endpoints on g.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/vob/search", h.SearchVOB)
	g.GET("/reimb/summary", h.ReimbursementSummary)
	g.GET("/reimb/rows", h.ReimbursementRows)
	g.GET("/reimb/members", h.MembersWithReimbursement)
}

// Health reports whether the database is reachable. It always answers 200.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		OK:     h.store.Healthy(c.Request().Context()),
		DBPath: h.store.Path(),
	})
}

// SearchVOB handles GET /api/vob/search.
func (h *Handler) SearchVOB(c echo.Context) error {
	filters, err := vob.FiltersFromQuery(c.QueryParams())
	if err != nil {
		return fail(c, http.StatusBadRequest, err)
	}
	records, err := h.store.SearchVOB(c.Request().Context(), filters)
	if err != nil {
		return failQuery(c, err)
	}
	return c.JSON(http.StatusOK, RowsResponse[vob.Record]{Count: len(records), Rows: records})
}

// ReimbursementSummary handles GET /api/reimb/summary.
func (h *Handler) ReimbursementSummary(c echo.Context) error {
	rows, err := h.store.ReimbursementSummary(c.Request().Context(), reimb.FiltersFromQuery(c.QueryParams()))
	if err != nil {
		return failQuery(c, err)
	}
	return c.JSON(http.StatusOK, RowsResponse[reimb.Row]{Count: len(rows), Rows: rows})
}

// ReimbursementRows handles GET /api/reimb/rows.
func (h *Handler) ReimbursementRows(c echo.Context) error {
	limit := 0
	if s := strings.TrimSpace(c.QueryParam("limit")); s != "" {
		var err error
		if limit, err = strconv.Atoi(s); err != nil {
			return fail(c, http.StatusBadRequest, errs.New("invalid limit %q", s))
		}
	}

	rows, err := h.store.ReimbursementRows(c.Request().Context(),
		c.QueryParam("memberId"),
		reimb.Location(c.QueryParam("loc")),
		limit)
	if err != nil {
		return failQuery(c, err)
	}
	return c.JSON(http.StatusOK, RowsResponse[reimb.RawRow]{Count: len(rows), Rows: rows})
}

// MembersWithReimbursement handles GET /api/reimb/members. Member ids are
// passed as repeated or comma-separated memberId parameters.
func (h *Handler) MembersWithReimbursement(c echo.Context) error {
	var ids []string
	for _, value := range c.QueryParams()["memberId"] {
		for _, id := range strings.Split(value, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	members, err := h.store.MembersWithReimbursement(c.Request().Context(), ids)
	if err != nil {
		return failQuery(c, err)
	}
	return c.JSON(http.StatusOK, RowsResponse[string]{Count: len(members), Rows: members})
}

// failQuery answers 400 for rejected queries, 504 for queries cut off by the
// request timeout and 500 for everything else.
func failQuery(c echo.Context, err error) error {
	switch {
	case portaldb.ErrValidation.Has(err):
		return fail(c, http.StatusBadRequest, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fail(c, http.StatusGatewayTimeout, err)
	}
	return fail(c, http.StatusInternalServerError, err)
}

func fail(c echo.Context, status int, err error) error {
	return c.JSON(status, ErrorResponse{Error: Message(err)})
}

// Message renders err for the client. Class prefixes of rejected queries are
// dropped so the message reads as written.
func Message(err error) string {
	if portaldb.ErrValidation.Has(err) || vob.ErrValidation.Has(err) || reimb.ErrValidation.Has(err) {
		return errs.Unwrap(err).Error()
	}
	return err.Error()
}
