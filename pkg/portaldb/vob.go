package portaldb

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/vob"
)

var _ vob.Querier = (*DB)(nil)

const vobColumns = `id, created_at, facility_name, payer_canonical, insurance_name_raw,
	insurance_id, insurance_id_clean, group_number, group_number_clean, in_out_network,
	deductible_individual, family_deductible, oop_individual, oop_family,
	self_or_commercial_funded, exchange_or_employer, employer_name,
	first_name, last_name, dob, source_file, error_details`

// SearchVOB returns the newest VOB records matching every non-empty filter.
func (db *DB) SearchVOB(ctx context.Context, filters vob.Filters) (_ []vob.Record, err error) {
	filters = filters.Trim()

	var w where
	if filters.MemberID != "" {
		like := "%" + filters.MemberID + "%"
		w.add("insurance_id_clean LIKE ? COLLATE NOCASE OR insurance_id LIKE ? COLLATE NOCASE", like, like)
	}
	if filters.DOB != "" {
		w.add("dob = ?", filters.DOB)
	}
	w.payer("insurance_name_raw", filters.Payer, filters.State)
	w.contains("facility_name", filters.Facility)
	w.contains("employer_name", filters.Employer)
	w.contains("first_name", filters.FirstName)
	w.contains("last_name", filters.LastName)

	if w.empty() {
		return nil, ErrValidation.New("Provide at least one filter (memberId, dob, payer, bcbsState, facility, employer, firstName, lastName).")
	}

	limit := clampLimit(filters.Limit, defaultVOBLimit, db.limits.VOBMax)
	query := "SELECT " + vobColumns + " FROM vob_records WHERE " + w.String() +
		" ORDER BY id DESC LIMIT " + strconv.Itoa(limit)

	rows, err := db.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	records := []vob.Record{}
	for rows.Next() {
		var r vobRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, Error.Wrap(err)
		}
		records = append(records, r.record())
	}
	if err := rows.Err(); err != nil {
		return nil, Error.Wrap(err)
	}
	return records, nil
}

// InsertVOBRecords inserts records, ignoring their IDs.
func (tx *Tx) InsertVOBRecords(ctx context.Context, records []vob.Record) error {
	stmt, err := tx.tx.PrepareContext(ctx, `INSERT INTO vob_records (
		created_at, facility_name, payer_canonical, insurance_name_raw,
		insurance_id, insurance_id_clean, group_number, group_number_clean, in_out_network,
		deductible_individual, family_deductible, oop_individual, oop_family,
		self_or_commercial_funded, exchange_or_employer, employer_name,
		first_name, last_name, dob, source_file, error_details
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range records {
		r := &records[i]
		if _, err := stmt.ExecContext(ctx,
			r.CreatedAt, r.FacilityName, r.PayerCanonical, r.InsuranceNameRaw,
			r.InsuranceID, r.InsuranceIDClean, r.GroupNumber, r.GroupNumberClean, r.InOutNetwork,
			r.DeductibleIndividual, r.FamilyDeductible, r.OOPIndividual, r.OOPFamily,
			r.SelfOrCommercialFunded, r.ExchangeOrEmployer, r.EmployerName,
			r.FirstName, r.LastName, r.DOB, r.SourceFile, r.ErrorDetails,
		); err != nil {
			return Error.New("unable to insert VOB record %d: %v", i, err)
		}
	}
	return nil
}

// vobRow scans the nullable columns of a vob_records row.
type vobRow struct {
	id   int64
	text [21]sql.NullString
}

func (r *vobRow) dest() []any {
	dest := []any{&r.id}
	for i := range r.text {
		dest = append(dest, &r.text[i])
	}
	return dest
}

func (r *vobRow) record() vob.Record {
	s := func(i int) *string {
		if !r.text[i].Valid {
			return nil
		}
		v := r.text[i].String
		return &v
	}
	return vob.Record{
		ID:                     r.id,
		CreatedAt:              s(0),
		FacilityName:           s(1),
		PayerCanonical:         s(2),
		InsuranceNameRaw:       s(3),
		InsuranceID:            s(4),
		InsuranceIDClean:       s(5),
		GroupNumber:            s(6),
		GroupNumberClean:       s(7),
		InOutNetwork:           s(8),
		DeductibleIndividual:   s(9),
		FamilyDeductible:       s(10),
		OOPIndividual:          s(11),
		OOPFamily:              s(12),
		SelfOrCommercialFunded: s(13),
		ExchangeOrEmployer:     s(14),
		EmployerName:           s(15),
		FirstName:              s(16),
		LastName:               s(17),
		DOB:                    s(18),
		SourceFile:             s(19),
		ErrorDetails:           s(20),
	}
}
