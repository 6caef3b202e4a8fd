package vob

import (
	"context"
	"sync"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/vob-portal/pkg/format"
)

// Controller runs VOB searches and owns the current result set.
//
// Only the most recently issued search may replace the results. A failed
// search leaves the previous results in place.
type Controller struct {
	log     *zap.Logger
	querier Querier

	mu         sync.Mutex
	generation uint64
	results    []Record
}

// NewController returns a controller that searches through querier.
func NewController(log *zap.Logger, querier Querier) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		log:     log,
		querier: querier,
	}
}

// Search trims and validates filters and queries the service. Validation
// errors are returned without issuing a request. On success the result set is
// replaced wholesale and returned.
func (c *Controller) Search(ctx context.Context, filters Filters) ([]Record, error) {
	filters = filters.Trim().ApplyStateToggle()
	if err := filters.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.generation++
	token := c.generation
	c.mu.Unlock()

	records, err := c.querier.SearchVOB(ctx, filters)
	if err != nil {
		c.log.Debug("vob search failed", zap.Error(err))
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.generation {
		c.log.Debug("dropping stale vob results", zap.Uint64("token", token), zap.Uint64("generation", c.generation))
		return records, nil
	}
	c.results = records
	return records, nil
}

// Results returns the current result set.
func (c *Controller) Results() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// CountText renders the size of the current result set.
func (c *Controller) CountText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return format.Matches(len(c.results))
}

// Detail projects the i-th result for the detail view.
func (c *Controller) Detail(i int) (*Detail, error) {
	c.mu.Lock()
	if i < 0 || i >= len(c.results) {
		n := len(c.results)
		c.mu.Unlock()
		return nil, errs.New("no result %d (have %d)", i, n)
	}
	record := c.results[i]
	c.mu.Unlock()

	return NewDetail(&record)
}

// Clear drops the result set. Any search still in flight is discarded when
// it completes.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.results = nil
}
