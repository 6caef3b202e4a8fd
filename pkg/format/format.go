// Package format converts raw field values returned by the query service into
// display strings.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// Placeholder is rendered in place of a missing amount.
	Placeholder = "—"

	currencySymbol = "$"
)

var (
	printer = message.NewPrinter(language.AmericanEnglish)

	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#039;",
	)
)

// Money renders v as a US dollar amount with two decimal places. Missing
// values (nil, empty strings, nil pointers) render as Placeholder. Strings that
// do not parse as a number are returned unchanged.
func Money(v any) string {
	switch v := v.(type) {
	case nil:
		return Placeholder
	case Amount:
		return moneyString(string(v))
	case *Amount:
		if v == nil {
			return Placeholder
		}
		return moneyString(string(*v))
	case string:
		return moneyString(v)
	case *string:
		if v == nil {
			return Placeholder
		}
		return moneyString(*v)
	case decimal.Decimal:
		return usd(v)
	case *decimal.Decimal:
		if v == nil {
			return Placeholder
		}
		return usd(*v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return usd(decimal.NewFromFloat(v))
	case float32:
		return Money(float64(v))
	case int:
		return usd(decimal.NewFromInt(int64(v)))
	case int64:
		return usd(decimal.NewFromInt(v))
	default:
		return moneyString(fmt.Sprint(v))
	}
}

func moneyString(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Placeholder
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return s
	}
	return usd(d)
}

func usd(d decimal.Decimal) string {
	rounded := d.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + currencySymbol + printer.Sprintf("%.2f", rounded.InexactFloat64())
}

// Text renders v for display; nil values and nil pointers render as "".
func Text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case Amount:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Escape escapes s for inclusion in HTML text or attribute values.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Matches renders a result count, e.g. "1 match" or "3 matches".
func Matches(n int) string {
	if n == 1 {
		return "1 match"
	}
	return strconv.Itoa(n) + " matches"
}
