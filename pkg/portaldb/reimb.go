package portaldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/reimb"
)

var (
	_ reimb.Querier     = (*DB)(nil)
	_ reimb.RowsQuerier = (*DB)(nil)
)

// summaryLocations is the SQL list of the known locations.
var summaryLocations = func() string {
	quoted := make([]string, 0, len(reimb.Locations))
	for _, loc := range reimb.Locations {
		quoted = append(quoted, "'"+loc.String()+"'")
	}
	return strings.Join(quoted, ",")
}()

// Rate is one billed service-date range as stored in reimbursement_rates.
type Rate struct {
	MemberID        string
	PayerName       string
	FirstName       string
	LastName        string
	EmployerName    string
	Location        reimb.Location
	ServiceDateFrom string
	ServiceDateTo   string
	AllowedAmount   decimal.NullDecimal
}

// ReimbursementSummary returns one row per (person, location) with the
// number of rows and the average positive allowed amount, for the known
// locations only.
func (db *DB) ReimbursementSummary(ctx context.Context, filters reimb.Filters) (_ []reimb.Row, err error) {
	filters = filters.Trim()
	if filters.Empty() {
		return nil, ErrValidation.New("Provide at least one filter (prefix/memberId, payer, bcbsState, employer, firstName, lastName).")
	}

	var w where
	if filters.Prefix != "" {
		w.add("member_id LIKE ? COLLATE NOCASE", filters.Prefix+"%")
	}
	w.payer("payer_name", filters.Payer, filters.State)
	if db.hasEmployer {
		w.contains("employer_name", filters.Employer)
	}
	w.contains("first_name", filters.FirstName)
	w.contains("last_name", filters.LastName)

	// an employer filter alone matches nothing to filter on when the table
	// has no employers
	if w.empty() {
		return nil, ErrValidation.New("Employer filter is unavailable; provide another filter.")
	}

	query := `SELECT last_name, first_name, member_id, payer_name, loc,
			COUNT(*) AS n_rows, AVG(allowed_amount) AS avg_allowed
		FROM reimbursement_rates
		WHERE ` + w.String() + `
			AND loc IN (` + summaryLocations + `)
			AND allowed_amount > 0
		GROUP BY last_name, first_name, member_id, payer_name, loc
		ORDER BY member_id, loc`

	rows, err := db.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	out := []reimb.Row{}
	for rows.Next() {
		var (
			lastName, firstName, memberID, payerName, loc sql.NullString
			numRows                                       int64
			avg                                           any
		)
		if err := rows.Scan(&lastName, &firstName, &memberID, &payerName, &loc, &numRows, &avg); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, reimb.Row{
			MemberID:   memberID.String,
			PayerName:  payerName.String,
			FirstName:  firstName.String,
			LastName:   lastName.String,
			Location:   reimb.Location(loc.String),
			AvgAllowed: amount(avg),
			NumRows:    numRows,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

// ReimbursementRows returns the newest rows of a member at loc. The location
// is matched upper-cased but otherwise not checked.
func (db *DB) ReimbursementRows(ctx context.Context, memberID string, loc reimb.Location, limit int) (_ []reimb.RawRow, err error) {
	memberID = strings.TrimSpace(memberID)
	loc = reimb.Location(strings.ToUpper(strings.TrimSpace(loc.String())))
	if memberID == "" || loc == "" {
		return nil, ErrValidation.New("Provide memberId and loc.")
	}

	limit = clampLimit(limit, defaultRowsLimit, db.limits.RowsMax)
	query := `SELECT service_date_from, service_date_to, payer_name, allowed_amount
		FROM reimbursement_rates
		WHERE member_id = ? AND loc = ?
		ORDER BY service_date_from DESC
		LIMIT ` + strconv.Itoa(limit)

	rows, err := db.db.QueryContext(ctx, query, memberID, loc.String())
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	out := []reimb.RawRow{}
	for rows.Next() {
		var (
			from, to, payerName sql.NullString
			allowed             any
		)
		if err := rows.Scan(&from, &to, &payerName, &allowed); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, reimb.RawRow{
			ServiceDateFrom: from.String,
			ServiceDateTo:   to.String,
			PayerName:       payerName.String,
			AllowedAmount:   amount(allowed),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, Error.Wrap(err)
	}
	return out, nil
}

// MembersWithReimbursement returns which of memberIDs have reimbursement
// data at a known location.
func (db *DB) MembersWithReimbursement(ctx context.Context, memberIDs []string) (_ []string, err error) {
	if len(memberIDs) == 0 {
		return []string{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(memberIDs)), ",")
	args := make([]any, 0, len(memberIDs))
	for _, id := range memberIDs {
		args = append(args, id)
	}

	rows, err := db.db.QueryContext(ctx, `SELECT DISTINCT member_id
		FROM reimbursement_rates
		WHERE member_id IN (`+placeholders+`)
			AND loc IN (`+summaryLocations+`)
			AND allowed_amount > 0
		ORDER BY member_id`, args...)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, Error.Wrap(err)
		}
		out = append(out, id)
	}
	return out, Error.Wrap(rows.Err())
}

// InsertRates inserts reimbursement rows.
func (tx *Tx) InsertRates(ctx context.Context, rates []Rate) error {
	stmt, err := tx.tx.PrepareContext(ctx, `INSERT INTO reimbursement_rates (
		member_id, payer_name, first_name, last_name, employer_name, loc,
		service_date_from, service_date_to, allowed_amount
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rate := range rates {
		var allowed any
		if rate.AllowedAmount.Valid {
			allowed = rate.AllowedAmount.Decimal.InexactFloat64()
		}
		if _, err := stmt.ExecContext(ctx,
			rate.MemberID, rate.PayerName, rate.FirstName, rate.LastName, rate.EmployerName,
			rate.Location.String(), rate.ServiceDateFrom, rate.ServiceDateTo, allowed,
		); err != nil {
			return Error.New("unable to insert rate %d: %v", i, err)
		}
	}
	return nil
}

// amount converts a scanned numeric column. SQLite hands back REAL, INTEGER
// or TEXT depending on what was stored.
func amount(v any) format.Amount {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return format.AmountFromDecimal(decimal.NewFromFloat(v))
	case int64:
		return format.AmountFromDecimal(decimal.NewFromInt(v))
	case []byte:
		return format.Amount(v)
	case string:
		return format.Amount(v)
	default:
		return ""
	}
}
