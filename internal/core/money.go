// Package core provides money parsing and display formatting.
//
// Amounts are carried as float64 currency units. Rendering goes through
// shopspring/decimal so that rounding does not depend on binary float
// representation, and uses the dashboard locale: dot as the grouping
// separator, comma as the decimal separator.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered in place of a value that is not applicable.
const Placeholder = "—"

// NotAvailable is rendered in place of a delta that is not applicable.
const NotAvailable = "n/d"

const (
	DeltaUp   Direction = "up"
	DeltaDown Direction = "down"
	DeltaNone Direction = "none"
)

// Direction is the visual indicator for a delta.
type Direction string

// ParseAmount converts a plain decimal string to a currency amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative
// values and anything that is not a plain decimal are rejected. Zero is valid.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	v, _ := d.Float64()
	return v, nil
}

// PlainAmount renders an amount with two decimals and no grouping, e.g. 1234.5 -> "1234.50".
func PlainAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatNumber renders v with dot grouping and comma decimals. Exact halves
// round to even.
// A value that is not applicable renders as Placeholder.
func FormatNumber(v Optional, decimals int) string {
	x, ok := v.Get()
	if !ok {
		return Placeholder
	}
	return group(decimal.NewFromFloat(x).RoundBank(int32(decimals)).StringFixed(int32(decimals)), ".", ",")
}

// FormatCurrency renders v as a dashboard currency string, e.g. "$1.234,50".
func FormatCurrency(v Optional, decimals int) string {
	s := FormatNumber(v, decimals)
	if s == Placeholder {
		return s
	}
	return "$" + s
}

// FormatDelta renders a percentage delta with its arrow, e.g. "▲ 10.0%".
func FormatDelta(pct Optional) string {
	x, ok := pct.Get()
	if !ok {
		return NotAvailable
	}
	arrow := "▲"
	if DirectionOf(pct) == DeltaDown {
		arrow = "▼"
	}
	return arrow + " " + group(decimal.NewFromFloat(x).RoundBank(1).StringFixed(1), ",", ".") + "%"
}

// DirectionOf classifies a delta. Zero counts as up.
func DirectionOf(pct Optional) Direction {
	x, ok := pct.Get()
	switch {
	case !ok:
		return DeltaNone
	case x >= 0:
		return DeltaUp
	default:
		return DeltaDown
	}
}

// group inserts the thousands separator into a plain decimal string and swaps
// in the requested decimal separator.
func group(plain, thousands, dec string) string {
	neg := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")
	intPart, frac, hasFrac := strings.Cut(plain, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(thousands)
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteString(dec)
		b.WriteString(frac)
	}
	if neg && strings.Trim(b.String(), "0.,") != "" {
		return "-" + b.String()
	}
	return b.String()
}
