package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	PreviousPeriod    ComparisonMode = "previous"
	SameRangeLastYear ComparisonMode = "last_year"
	NoComparison      ComparisonMode = "none"
)

// ComparisonMode selects how the comparable prior period is derived.
type ComparisonMode string

// ParseComparisonMode accepts the canonical identifiers as well as the labels
// shown in the dashboard sidebar.
func ParseComparisonMode(s string) (ComparisonMode, error) {
	switch foldLabel(s) {
	case "", "previous", "previous_period", "dias", "periodo anterior":
		return PreviousPeriod, nil
	case "last_year", "same_range_last_year", "anio", "mismo periodo ano anterior":
		return SameRangeLastYear, nil
	case "none", "sin comparacion":
		return NoComparison, nil
	}
	return "", fmt.Errorf("unknown comparison mode %q", s)
}

// Label is the human readable sidebar label.
func (m ComparisonMode) Label() string {
	switch m {
	case PreviousPeriod:
		return "Periodo anterior"
	case SameRangeLastYear:
		return "Mismo periodo año anterior"
	default:
		return "Sin comparación"
	}
}

// ComparisonModes lists the modes in sidebar order.
func ComparisonModes() []ComparisonMode {
	return []ComparisonMode{PreviousPeriod, SameRangeLastYear, NoComparison}
}

// Selection is the active filter state. It is rebuilt on every interaction.
type Selection struct {
	Range      DateRange
	Categories map[Category]struct{}
	Regions    map[Region]struct{}
	Mode       ComparisonMode
}

// NewSelection builds a selection from label slices. Duplicates collapse.
func NewSelection(r DateRange, cats []Category, regs []Region, mode ComparisonMode) Selection {
	sel := Selection{
		Range:      r,
		Categories: make(map[Category]struct{}, len(cats)),
		Regions:    make(map[Region]struct{}, len(regs)),
		Mode:       mode,
	}
	for _, c := range cats {
		sel.Categories[c] = struct{}{}
	}
	for _, rg := range regs {
		sel.Regions[rg] = struct{}{}
	}
	return sel
}

// HasCategory reports whether c is selected.
func (s Selection) HasCategory(c Category) bool {
	_, ok := s.Categories[c]
	return ok
}

// HasRegion reports whether r is selected.
func (s Selection) HasRegion(r Region) bool {
	_, ok := s.Regions[r]
	return ok
}

// CategoryList returns the selected categories in enum order.
func (s Selection) CategoryList() []Category {
	out := make([]Category, 0, len(s.Categories))
	for _, c := range Categories() {
		if s.HasCategory(c) {
			out = append(out, c)
		}
	}
	return out
}

// RegionList returns the selected regions in enum order.
func (s Selection) RegionList() []Region {
	out := make([]Region, 0, len(s.Regions))
	for _, r := range Regions() {
		if s.HasRegion(r) {
			out = append(out, r)
		}
	}
	return out
}

// Key is a stable textual form of the selection, used for logging.
func (s Selection) Key() string {
	cats := make([]string, 0, len(s.Categories))
	for _, c := range s.CategoryList() {
		cats = append(cats, string(c))
	}
	regs := make([]string, 0, len(s.Regions))
	for _, r := range s.RegionList() {
		regs = append(regs, string(r))
	}
	return fmt.Sprintf("%s|%s|%s|%s", s.Range, strings.Join(cats, ","), strings.Join(regs, ","), s.Mode)
}

// Optional is a number that may be not applicable (empty mean, undefined delta).
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps v. NaN and infinities are treated as not applicable.
func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// NotApplicable is the empty Optional.
func NotApplicable() Optional {
	return Optional{}
}

// Get returns the value and whether it is applicable.
func (o Optional) Get() (float64, bool) {
	return o.Value, o.Valid
}

// MarshalJSON renders a not-applicable value as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON accepts a number or null.
func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// MarshalYAML mirrors MarshalJSON for YAML encoders.
func (o Optional) MarshalYAML() (any, error) {
	if !o.Valid {
		return nil, nil
	}
	return o.Value, nil
}
