package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"storj.io/vob-portal/pkg/ratecsv"
	"storj.io/vob-portal/pkg/reimb"
)

const members = 200

var (
	firstNames = []string{"Jane", "John", "Maria", "Ahmed", "Li", "Priya", "Sam", "Ana"}
	lastNames  = []string{"Doe", "Smith", "Garcia", "Khan", "Chen", "Patel", "Lee", "Silva"}
	payers     = []string{"Aetna", "Cigna", "BCBS of Texas", "Anthem Blue Cross", "Blue Cross Blue Shield of IL", "UnitedHealthcare"}
	employers  = []string{"Acme", "Globex", "Initech", ""}
	facilities = []string{"North Recovery", "Harbor House", "Desert Springs"}
)

func main() {
	rng := rand.New(rand.NewPCG(1, 2))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	rates := newCSV(ratecsv.RatesHeader)
	vobs := newCSV(ratecsv.VOBHeader)

	for i := 0; i < members; i++ {
		memberID := fmt.Sprintf("M%05d", i+1)
		first := pick(rng, firstNames)
		last := pick(rng, lastNames)
		payer := pick(rng, payers)
		employer := pick(rng, employers)

		for _, loc := range reimb.Locations {
			if rng.IntN(3) == 0 {
				continue
			}
			for day := 0; day < 1+rng.IntN(10); day++ {
				date := start.AddDate(0, 0, rng.IntN(365)).Format(time.DateOnly)
				allowed := ""
				if rng.IntN(10) > 0 {
					allowed = fmt.Sprintf("%.2f", 100+rng.Float64()*1900)
				}
				rates.write(memberID, payer, first, last, employer, loc.String(), date, date, allowed)
			}
		}

		dob := time.Date(1950+rng.IntN(50), time.Month(1+rng.IntN(12)), 1+rng.IntN(28), 0, 0, 0, 0, time.UTC)
		vobs.write(
			start.AddDate(0, 0, rng.IntN(365)).Format(time.DateOnly),
			pick(rng, facilities),
			"",
			payer,
			"x-"+strings.ToLower(memberID),
			memberID,
			"", "",
			pick(rng, []string{"In", "Out"}),
			fmt.Sprintf("$%d", 500*(1+rng.IntN(10))),
			"",
			fmt.Sprintf("$%d", 1000*(1+rng.IntN(10))),
			"",
			pick(rng, []string{"Self", "Commercial"}),
			pick(rng, []string{"Exchange", "Employer"}),
			employer,
			first, last,
			dob.Format(time.DateOnly),
			"generated",
			"",
		)
	}

	writeFile("rates.csv", rates.bytes())
	writeFile("vob.csv", vobs.bytes())
}

type csvFile struct {
	buf bytes.Buffer
	w   *csv.Writer
}

func newCSV(header string) *csvFile {
	f := new(csvFile)
	f.w = csv.NewWriter(&f.buf)
	f.write(strings.Split(header, ",")...)
	return f
}

func (f *csvFile) write(record ...string) {
	check(f.w.Write(record))
}

func (f *csvFile) bytes() []byte {
	f.w.Flush()
	check(f.w.Error())
	return f.buf.Bytes()
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

func writeFile(path string, data []byte) {
	check(os.WriteFile(path, data, 0644))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
