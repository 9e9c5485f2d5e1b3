package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the ISO-8601 calendar date layout used on every boundary.
const DateLayout = "2006-01-02"

const (
	Electronica Category = "Electrónica"
	Ropa        Category = "Ropa"
	Hogar       Category = "Hogar"
	Alimentos   Category = "Alimentos"
)

const (
	Norte Region = "Norte"
	Sur   Region = "Sur"
	Este  Region = "Este"
	Oeste Region = "Oeste"
)

type (
	// Category is one of the fixed product category labels.
	Category string

	// Region is one of the fixed sales region labels.
	Region string

	// Date is a calendar date. The wrapped time is always midnight UTC.
	Date struct {
		time.Time
	}

	// Record is a single sales transaction. Records are values and are never
	// mutated once a dataset has been built from them.
	Record struct {
		Date     Date
		Category Category
		Region   Region
		Amount   float64
	}

	// DateRange is an inclusive pair of calendar dates.
	DateRange struct {
		Start Date
		End   Date
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownRegion   = errors.New("unknown region")
)

// Categories returns the known categories in generation order.
func Categories() []Category {
	return []Category{Electronica, Ropa, Hogar, Alimentos}
}

// Regions returns the known regions in generation order.
func Regions() []Region {
	return []Region{Norte, Sur, Este, Oeste}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// AddDays shifts the date by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddYears shifts the date by n calendar years. Dates that do not exist in the
// target year (Feb 29) are clamped to the last day of the month.
func (d Date) AddYears(n int) Date {
	y, m, day := d.Date()
	ty := y + n
	if last := daysIn(m, ty); day > last {
		day = last
	}
	return NewDate(ty, int(m), day)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether both dates denote the same day.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NewDateRange builds a range without validating it; see IsValid.
func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: start, End: end}
}

// IsValid reports whether both bounds are set and Start <= End.
func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.Start.After(r.End)
}

// Contains reports whether d falls within the inclusive bounds.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of calendar days covered, or 0 for an invalid range.
func (r DateRange) Days() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.End.Sub(r.Start.Time)/(24*time.Hour)) + 1
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, r.Category)
	}
	if !r.Region.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRegion, r.Region)
	}
	if r.Amount < 0 || math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Electronica, Ropa, Hogar, Alimentos:
		return true
	}
	return false
}

// Valid reports whether r is one of the known regions.
func (r Region) Valid() bool {
	switch r {
	case Norte, Sur, Este, Oeste:
		return true
	}
	return false
}

// ParseCategory maps free text onto a known category. Matching ignores case,
// surrounding blanks and accents, so "electronica" resolves to Electrónica.
func ParseCategory(s string) (Category, error) {
	key := foldLabel(s)
	for _, c := range Categories() {
		if foldLabel(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// ParseRegion maps free text onto a known region.
func ParseRegion(s string) (Region, error) {
	key := foldLabel(s)
	for _, r := range Regions() {
		if foldLabel(string(r)) == key {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegion, s)
}

func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}
