package config

import (
	"time"

	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/portalapi"
)

type Client struct {
	APIURL string `toml:"api_url"`

	// VOBLimit is the limit sent with every VOB search.
	VOBLimit int `toml:"vob_limit"`

	// RowsLimit is the limit sent when loading daily rows.
	RowsLimit int `toml:"rows_limit"`

	// RowsCacheExpiry is how long loaded daily rows are reused.
	RowsCacheExpiry Duration `toml:"rows_cache_expiry"`
}

func (c Client) NewAPI() (*portalapi.CachingClient, error) {
	client, err := portalapi.NewCachingClient(c.APIURL, time.Duration(c.RowsCacheExpiry))
	if err != nil {
		return nil, errs.New("failed to instantiate portal client: %v", err)
	}
	return client, nil
}
