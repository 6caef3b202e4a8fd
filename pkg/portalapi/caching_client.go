package portalapi

import (
	"context"
	"sync"
	"time"

	"storj.io/vob-portal/pkg/reimb"
)

type rowsKey struct {
	memberID string
	loc      reimb.Location
	limit    int
}

type rowsCache struct {
	mu      sync.Mutex
	rows    []reimb.RawRow
	updated time.Time
}

// CachingClient caches location rows for a short time so that moving back
// and forth between a summary and its locations does not refetch them.
// Searches are never cached.
type CachingClient struct {
	*Client
	expiry time.Duration

	mu    sync.Mutex
	cache map[rowsKey]*rowsCache

	now func() time.Time
}

var _ reimb.RowsQuerier = (*CachingClient)(nil)

// NewCachingClient returns a client for the service at apiURL that caches
// location rows for expiry.
func NewCachingClient(apiURL string, expiry time.Duration) (*CachingClient, error) {
	client, err := NewClient(apiURL)
	if err != nil {
		return nil, err
	}
	return &CachingClient{
		Client: client,
		expiry: expiry,
		cache:  make(map[rowsKey]*rowsCache),
		now:    time.Now,
	}, nil
}

// ReimbursementRows returns cached rows when they have not expired yet.
// Failures are not cached.
func (cli *CachingClient) ReimbursementRows(ctx context.Context, memberID string, loc reimb.Location, limit int) ([]reimb.RawRow, error) {
	key := rowsKey{memberID: memberID, loc: loc, limit: limit}

	cli.mu.Lock()
	cache, ok := cli.cache[key]
	if !ok {
		cache = new(rowsCache)
		cli.cache[key] = cache
	}
	cli.mu.Unlock()

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if !cache.updated.IsZero() &&
		cli.now().Before(cache.updated.Add(cli.expiry)) {
		return cache.rows, nil
	}

	rows, err := cli.Client.ReimbursementRows(ctx, memberID, loc, limit)
	if err != nil {
		return nil, err
	}
	cache.rows = rows
	cache.updated = cli.now()

	return rows, nil
}

// Forget drops every cached entry.
func (cli *CachingClient) Forget() {
	cli.mu.Lock()
	defer cli.mu.Unlock()
	cli.cache = make(map[rowsKey]*rowsCache)
}
