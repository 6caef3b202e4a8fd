package format

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/zeebo/errs"
)

// Amount is a money value exactly as the query service sent it. The service
// may send a JSON number, a string or null; all three decode into Amount
// without loss so that Money can decide how to render them.
type Amount string

// AmountFromDecimal returns the Amount for d.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// IsZero reports whether the amount is missing.
func (a Amount) IsZero() bool {
	return a == ""
}

// Decimal parses the amount. ok is false for missing or non-numeric values.
func (a Amount) Decimal() (_ decimal.Decimal, ok bool) {
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if a == "" {
		return []byte("null"), nil
	}
	if d, ok := a.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(string(a))
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*a = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errs.Wrap(err)
		}
		*a = Amount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errs.New("invalid amount %s: %v", b, err)
	}
	*a = Amount(n.String())
	return nil
}
