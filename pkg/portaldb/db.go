// Package portaldb is the SQLite store behind the query service.
package portaldb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

const (
	// DefaultVOBMaxLimit caps the number of VOB records per search.
	DefaultVOBMaxLimit = 200
	// DefaultRowsMaxLimit caps the number of raw reimbursement rows per fetch.
	DefaultRowsMaxLimit = 2000

	defaultVOBLimit  = 50
	defaultRowsLimit = 500
)

// Error is the class of store errors.
var Error = errs.Class("portaldb")

// ErrValidation is the class of errors for rejected queries.
var ErrValidation = errs.Class("validation")

// Limits bound the number of rows returned by the queries.
type Limits struct {
	VOBMax  int
	RowsMax int
}

func (l Limits) withDefaults() Limits {
	if l.VOBMax <= 0 {
		l.VOBMax = DefaultVOBMaxLimit
	}
	if l.RowsMax <= 0 {
		l.RowsMax = DefaultRowsMaxLimit
	}
	return l
}

// DB is a handle to the portal database.
type DB struct {
	log    *zap.Logger
	db     *sql.DB
	path   string
	limits Limits

	// hasEmployer records whether reimbursement_rates carries employer_name.
	// Databases created by older extractors do not.
	hasEmployer bool
}

// Open opens the database at path. Unless readOnly is set, missing tables
// are created.
func Open(ctx context.Context, log *zap.Logger, path string, readOnly bool, limits Limits) (_ *DB, err error) {
	if log == nil {
		log = zap.NewNop()
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return nil, Error.Wrap(err)
	}

	if readOnly {
		if _, err := os.Stat(path); err != nil {
			return nil, Error.New("database not found at %q", path)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, Error.Wrap(err)
	}

	dbURI := "file:" + path + "?_busy_timeout=10000&_foreign_keys=true"
	if readOnly {
		dbURI += "&mode=ro"
	}
	sqlDB, err := sql.Open("sqlite3", dbURI)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() {
		if err != nil {
			err = errs.Combine(err, sqlDB.Close())
		}
	}()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, Error.Wrap(err)
	}

	db := &DB{
		log:    log,
		db:     sqlDB,
		path:   path,
		limits: limits.withDefaults(),
	}

	if !readOnly {
		if err := db.migrate(ctx); err != nil {
			return nil, err
		}
	}

	db.hasEmployer, err = db.hasColumn(ctx, "reimbursement_rates", "employer_name")
	if err != nil {
		return nil, err
	}
	if !db.hasEmployer {
		log.Warn("reimbursement_rates has no employer_name column; employer filter is ignored")
	}

	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return Error.Wrap(db.db.Close())
}

// Path returns the absolute path of the database file.
func (db *DB) Path() string {
	return db.path
}

// Healthy reports whether the database file exists and answers.
func (db *DB) Healthy(ctx context.Context) bool {
	if _, err := os.Stat(db.path); err != nil {
		return false
	}
	return db.db.PingContext(ctx) == nil
}

// Tx is a write transaction.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs fn in a transaction that is committed when fn returns nil
// and rolled back otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) (err error) {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() {
		if err == nil {
			err = Error.Wrap(tx.Commit())
		} else {
			err = errs.Combine(err, Error.Wrap(tx.Rollback()))
		}
	}()
	return fn(&Tx{tx: tx})
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return Error.New("unable to apply schema: %v", err)
		}
	}
	return nil
}

func (db *DB) hasColumn(ctx context.Context, table, column string) (_ bool, err error) {
	rows, err := db.db.QueryContext(ctx, "PRAGMA table_info("+table+");")
	if err != nil {
		return false, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	found := false
	for rows.Next() {
		var (
			cid       int
			name      string
			typ       string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return false, Error.Wrap(err)
		}
		if name == column {
			found = true
		}
	}
	return found, Error.Wrap(rows.Err())
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS vob_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT,
		facility_name TEXT,
		payer_canonical TEXT,
		insurance_name_raw TEXT,
		insurance_id TEXT,
		insurance_id_clean TEXT,
		group_number TEXT,
		group_number_clean TEXT,
		in_out_network TEXT,
		deductible_individual TEXT,
		family_deductible TEXT,
		oop_individual TEXT,
		oop_family TEXT,
		self_or_commercial_funded TEXT,
		exchange_or_employer TEXT,
		employer_name TEXT,
		first_name TEXT,
		last_name TEXT,
		dob TEXT,
		source_file TEXT,
		error_details TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS reimbursement_rates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		member_id TEXT,
		payer_name TEXT,
		first_name TEXT,
		last_name TEXT,
		employer_name TEXT,
		loc TEXT,
		service_date_from TEXT,
		service_date_to TEXT,
		allowed_amount REAL
	);`,
	`CREATE INDEX IF NOT EXISTS reimbursement_rates_member_loc ON reimbursement_rates ( member_id, loc );`,
}
