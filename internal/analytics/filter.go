// Package analytics turns a dataset and a selection into the numbers the
// dashboard shows: the filtered rows, their KPIs, the comparable prior
// period and the deltas between both.
//
// Every function here is pure. Nothing is cached between calls.
package analytics

import (
	"ventas/internal/core"
	"ventas/internal/dataset"
)

// Filter returns the records of ds inside r whose category and region are
// both selected. Order follows the dataset. The result never aliases dataset
// storage.
func Filter(ds *dataset.Dataset, r core.DateRange, cats map[core.Category]struct{}, regs map[core.Region]struct{}) []core.Record {
	out := []core.Record{}
	if !r.IsValid() || len(cats) == 0 || len(regs) == 0 {
		return out
	}
	ds.Each(func(rec core.Record) bool {
		if match(rec, r, cats, regs) {
			out = append(out, rec)
		}
		return true
	})
	return out
}

// FilterRecords applies the same predicate as Filter to an arbitrary slice.
func FilterRecords(records []core.Record, r core.DateRange, cats map[core.Category]struct{}, regs map[core.Region]struct{}) []core.Record {
	out := []core.Record{}
	if !r.IsValid() || len(cats) == 0 || len(regs) == 0 {
		return out
	}
	for _, rec := range records {
		if match(rec, r, cats, regs) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByDate keeps every record of ds inside r regardless of labels.
func FilterByDate(ds *dataset.Dataset, r core.DateRange) []core.Record {
	out := []core.Record{}
	if !r.IsValid() {
		return out
	}
	ds.Each(func(rec core.Record) bool {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
		return true
	})
	return out
}

// FilterSelection is Filter driven by a Selection.
func FilterSelection(ds *dataset.Dataset, sel core.Selection) []core.Record {
	return Filter(ds, sel.Range, sel.Categories, sel.Regions)
}

func match(rec core.Record, r core.DateRange, cats map[core.Category]struct{}, regs map[core.Region]struct{}) bool {
	if !r.Contains(rec.Date) {
		return false
	}
	if _, ok := cats[rec.Category]; !ok {
		return false
	}
	_, ok := regs[rec.Region]
	return ok
}
