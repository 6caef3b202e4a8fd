package config

import (
	"context"
	"time"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/server"
)

type Server struct {
	// Listen is the TCP address the query service listens on.
	Listen string `toml:"listen"`

	// DBPath is the SQLite file holding vob_records and
	// reimbursement_rates.
	DBPath Path `toml:"db_path"`

	// VOBMaxLimit and RowsMaxLimit cap the limit a caller may request.
	VOBMaxLimit  int `toml:"vob_max_limit"`
	RowsMaxLimit int `toml:"rows_max_limit"`

	// RequestTimeout bounds every request. Zero disables it.
	RequestTimeout Duration `toml:"request_timeout"`
}

func (s Server) Limits() portaldb.Limits {
	return portaldb.Limits{
		VOBMax:  s.VOBMaxLimit,
		RowsMax: s.RowsMaxLimit,
	}
}

func (s Server) ServerConfig() server.Config {
	return server.Config{
		Listen:         s.Listen,
		RequestTimeout: time.Duration(s.RequestTimeout),
	}
}

func (s Server) OpenDB(ctx context.Context, log *zap.Logger, readOnly bool) (*portaldb.DB, error) {
	db, err := portaldb.Open(ctx, log, string(s.DBPath), readOnly, s.Limits())
	if err != nil {
		return nil, errs.New("failed to open database %q: %v", s.DBPath, err)
	}
	return db, nil
}
