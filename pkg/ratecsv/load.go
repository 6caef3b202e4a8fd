// Package ratecsv loads the seed CSV files of the portal database:
// reimbursement rates and VOB records. Files ending in .gz are decompressed.
package ratecsv

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"

	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/reimb"
	"storj.io/vob-portal/pkg/vob"
)

const (
	// RatesHeader is the expected header of a reimbursement rates file.
	RatesHeader = "member_id,payer_name,first_name,last_name,employer_name,loc,service_date_from,service_date_to,allowed_amount"

	// VOBHeader is the expected header of a VOB records file.
	VOBHeader = "created_at,facility_name,payer_canonical,insurance_name_raw,insurance_id,insurance_id_clean," +
		"group_number,group_number_clean,in_out_network,deductible_individual,family_deductible," +
		"oop_individual,oop_family,self_or_commercial_funded,exchange_or_employer,employer_name," +
		"first_name,last_name,dob,source_file,error_details"
)

// Open opens path for reading, decompressing it when it ends in .gz.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	zr, err := pgzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errs.New("invalid gzip file %q: %v", path, err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

type gzipFile struct {
	*pgzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	return errs.Combine(g.Reader.Close(), g.file.Close())
}

// LoadRates loads a reimbursement rates file.
func LoadRates(path string) (_ []portaldb.Rate, err error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, r.Close()) }()
	return ParseRates(r)
}

// LoadVOB loads a VOB records file.
func LoadVOB(path string) (_ []vob.Record, err error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { err = errs.Combine(err, r.Close()) }()
	return ParseVOB(r)
}

// ParseRates parses reimbursement rates. Empty allowed amounts are stored as
// NULL.
func ParseRates(r io.Reader) ([]portaldb.Rate, error) {
	var rates []portaldb.Rate
	err := parse(r, RatesHeader, func(line int, record []string) error {
		var (
			memberValue  = strings.TrimSpace(record[0])
			locValue     = strings.ToUpper(strings.TrimSpace(record[5]))
			allowedValue = strings.TrimSpace(record[8])
		)

		if memberValue == "" {
			return errs.New("record on line %d: member_id cannot be empty", line)
		}
		if locValue == "" {
			return errs.New("record on line %d: loc cannot be empty", line)
		}

		var allowed decimal.NullDecimal
		if allowedValue != "" {
			amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimPrefix(allowedValue, "$"), ",", ""))
			if err != nil {
				return errs.New("record on line %d: invalid allowed_amount %q: %v", line, allowedValue, err)
			}
			allowed = decimal.NewNullDecimal(amount)
		}

		rates = append(rates, portaldb.Rate{
			MemberID:        memberValue,
			PayerName:       strings.TrimSpace(record[1]),
			FirstName:       strings.TrimSpace(record[2]),
			LastName:        strings.TrimSpace(record[3]),
			EmployerName:    strings.TrimSpace(record[4]),
			Location:        reimb.Location(locValue),
			ServiceDateFrom: strings.TrimSpace(record[6]),
			ServiceDateTo:   strings.TrimSpace(record[7]),
			AllowedAmount:   allowed,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rates, nil
}

// ParseVOB parses VOB records. Empty fields are stored as NULL.
func ParseVOB(r io.Reader) ([]vob.Record, error) {
	var records []vob.Record
	err := parse(r, VOBHeader, func(line int, record []string) error {
		s := func(i int) *string {
			v := strings.TrimSpace(record[i])
			if v == "" {
				return nil
			}
			return &v
		}
		records = append(records, vob.Record{
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
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// parse reads every record after the header and hands it to fn together
// with its line number.
func parse(r io.Reader, expectHeader string, fn func(line int, record []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	expectFields := len(strings.Split(expectHeader, ","))

	inHeader := true
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errs.Wrap(err)
		}
		line, _ := cr.FieldPos(0)

		// first non-empty, non-comment line must be the header
		if inHeader {
			inHeader = false
			header := strings.ToLower(strings.Join(record, ","))
			header = strings.TrimPrefix(header, "\ufeff")
			if header != expectHeader {
				return errs.New("record on line %d: invalid header %q: expected %q", line, header, expectHeader)
			}
			continue
		}

		if len(record) != expectFields {
			return errs.New("record on line %d: expected %d fields but got %d", line, expectFields, len(record))
		}

		if err := fn(line, record); err != nil {
			return err
		}
	}

	if inHeader {
		return errs.New("missing header: expected %q", expectHeader)
	}
	return nil
}
