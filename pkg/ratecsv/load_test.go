package ratecsv_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"storj.io/vob-portal/pkg/format"
	"storj.io/vob-portal/pkg/portaldb"
	"storj.io/vob-portal/pkg/ratecsv"
	"storj.io/vob-portal/pkg/reimb"
)

var goodRates = ratecsv.RatesHeader + `
# seeded by hand
M1,Aetna,Jane,Doe,Acme,dtx,2024-01-01,2024-01-02,"$1,250.50"
M2,BCBS of Texas,Ann,Roe,,IOP,2024-02-01,2024-02-01,
`

func TestParseRates(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rates, err := ratecsv.ParseRates(strings.NewReader(goodRates))
		require.NoError(t, err)
		require.Equal(t, []portaldb.Rate{
			{
				MemberID:        "M1",
				PayerName:       "Aetna",
				FirstName:       "Jane",
				LastName:        "Doe",
				EmployerName:    "Acme",
				Location:        reimb.Detox,
				ServiceDateFrom: "2024-01-01",
				ServiceDateTo:   "2024-01-02",
				AllowedAmount:   decimal.NewNullDecimal(decimal.RequireFromString("1250.50")),
			},
			{
				MemberID:        "M2",
				PayerName:       "BCBS of Texas",
				FirstName:       "Ann",
				LastName:        "Roe",
				Location:        reimb.IntensiveOutpatient,
				ServiceDateFrom: "2024-02-01",
				ServiceDateTo:   "2024-02-01",
			},
		}, rates)
	})

	testCases := []struct {
		name string
		csv  string
		err  string
	}{
		{
			name: "empty",
			csv:  "",
			err:  `missing header: expected "` + ratecsv.RatesHeader + `"`,
		},
		{
			name: "bad header",
			csv:  "member,payer\n",
			err:  `record on line 1: invalid header "member,payer": expected "` + ratecsv.RatesHeader + `"`,
		},
		{
			name: "wrong field count",
			csv:  ratecsv.RatesHeader + "\nM1,Aetna\n",
			err:  "record on line 2: expected 9 fields but got 2",
		},
		{
			name: "missing member",
			csv:  ratecsv.RatesHeader + "\n,Aetna,Jane,Doe,,DTX,2024-01-01,2024-01-01,100\n",
			err:  "record on line 2: member_id cannot be empty",
		},
		{
			name: "missing loc",
			csv:  ratecsv.RatesHeader + "\nM1,Aetna,Jane,Doe,,,2024-01-01,2024-01-01,100\n",
			err:  "record on line 2: loc cannot be empty",
		},
		{
			name: "bad amount",
			csv:  ratecsv.RatesHeader + "\n\nM1,Aetna,Jane,Doe,,DTX,2024-01-01,2024-01-01,lots\n",
			err:  `record on line 3: invalid allowed_amount "lots"`,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := ratecsv.ParseRates(strings.NewReader(testCase.csv))
			require.ErrorContains(t, err, testCase.err)
		})
	}
}

func TestParseVOB(t *testing.T) {
	row := make([]string, 21)
	row[3] = "Anthem Blue Cross"
	row[16] = "Jane"
	row[17] = "Doe"
	row[18] = "1990-01-01"

	records, err := ratecsv.ParseVOB(strings.NewReader(ratecsv.VOBHeader + "\n" + strings.Join(row, ",") + "\n"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Anthem Blue Cross", format.Text(records[0].InsuranceNameRaw))
	require.Equal(t, "Jane", format.Text(records[0].FirstName))
	require.Equal(t, "1990-01-01", format.Text(records[0].DOB))
	require.Nil(t, records[0].FacilityName)
	require.Nil(t, records[0].PayerCanonical)
}

func TestLoadGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "rates.csv")
	require.NoError(t, os.WriteFile(plain, []byte(goodRates), 0644))

	compressed := filepath.Join(dir, "rates.csv.gz")
	f, err := os.Create(compressed)
	require.NoError(t, err)
	zw := pgzip.NewWriter(f)
	_, err = zw.Write([]byte(goodRates))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	fromPlain, err := ratecsv.LoadRates(plain)
	require.NoError(t, err)
	fromGzip, err := ratecsv.LoadRates(compressed)
	require.NoError(t, err)
	require.Equal(t, fromPlain, fromGzip)
	require.Len(t, fromGzip, 2)

	_, err = ratecsv.LoadRates(plain + ".gz.missing")
	require.Error(t, err)

	// a plain file with a .gz name is rejected
	bogus := filepath.Join(dir, "bogus.csv.gz")
	require.NoError(t, os.WriteFile(bogus, []byte(goodRates), 0644))
	_, err = ratecsv.LoadRates(bogus)
	require.Error(t, err)
}
