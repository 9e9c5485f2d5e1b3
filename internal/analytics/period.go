package analytics

import (
	"ventas/internal/core"
	"ventas/internal/dataset"
)

// PriorRange derives the comparable prior range for current.
//
// PreviousPeriod yields the block of equal length ending the day before
// current starts. SameRangeLastYear shifts both bounds back one calendar
// year, clamping Feb 29 to Feb 28. NoComparison and invalid ranges report
// false.
func PriorRange(current core.DateRange, mode core.ComparisonMode) (core.DateRange, bool) {
	if !current.IsValid() {
		return core.DateRange{}, false
	}
	switch mode {
	case core.PreviousPeriod:
		n := current.Days()
		end := current.Start.AddDays(-1)
		return core.NewDateRange(end.AddDays(-(n - 1)), end), true
	case core.SameRangeLastYear:
		return core.NewDateRange(current.Start.AddYears(-1), current.End.AddYears(-1)), true
	default:
		return core.DateRange{}, false
	}
}

// ResolvePrior returns the records of the comparable prior period.
//
// Only the date predicate is applied: prior KPIs cover every category and
// region even when the current selection narrows them. A prior range outside
// the dataset span yields an empty, non-nil slice.
func ResolvePrior(ds *dataset.Dataset, current core.DateRange, mode core.ComparisonMode) ([]core.Record, core.DateRange, bool) {
	prior, ok := PriorRange(current, mode)
	if !ok {
		return nil, core.DateRange{}, false
	}
	return FilterByDate(ds, prior), prior, true
}
