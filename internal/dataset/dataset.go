// Package dataset holds the immutable, process-wide collection of sales
// records and the port through which it is loaded.
package dataset

import (
	"context"
	"fmt"

	"ventas/internal/core"
)

// Source supplies the raw records. Implementations are consulted once per
// process; see Loader.
type Source interface {
	Load(ctx context.Context) ([]core.Record, error)
}

// Dataset is a read-only view over a fixed set of records. It is safe for
// concurrent use because nothing mutates it after New returns.
type Dataset struct {
	records []core.Record
	span    core.DateRange
	cats    []core.Category
	regs    []core.Region
}

// New validates and copies records into a Dataset. Input order is preserved.
func New(records []core.Record) (*Dataset, error) {
	ds := &Dataset{records: make([]core.Record, len(records))}
	copy(ds.records, records)

	seenCat := map[core.Category]bool{}
	seenReg := map[core.Region]bool{}
	for i, r := range ds.records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if i == 0 || r.Date.Before(ds.span.Start) {
			ds.span.Start = r.Date
		}
		if i == 0 || r.Date.After(ds.span.End) {
			ds.span.End = r.Date
		}
		seenCat[r.Category] = true
		seenReg[r.Region] = true
	}
	for _, c := range core.Categories() {
		if seenCat[c] {
			ds.cats = append(ds.cats, c)
		}
	}
	for _, r := range core.Regions() {
		if seenReg[r] {
			ds.regs = append(ds.regs, r)
		}
	}
	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record by value.
func (d *Dataset) At(i int) core.Record { return d.records[i] }

// Each calls fn for every record in order until fn returns false.
func (d *Dataset) Each(fn func(core.Record) bool) {
	for _, r := range d.records {
		if !fn(r) {
			return
		}
	}
}

// Records returns a copy of all records.
func (d *Dataset) Records() []core.Record {
	out := make([]core.Record, len(d.records))
	copy(out, d.records)
	return out
}

// Span is the range between the earliest and latest record date. It is the
// zero range for an empty dataset.
func (d *Dataset) Span() core.DateRange { return d.span }

// Categories lists the categories present, in enum order.
func (d *Dataset) Categories() []core.Category {
	return append([]core.Category(nil), d.cats...)
}

// Regions lists the regions present, in enum order.
func (d *Dataset) Regions() []core.Region {
	return append([]core.Region(nil), d.regs...)
}

// DefaultSelection covers the full span with every label selected, compared
// against the previous period. It matches the sidebar defaults.
func (d *Dataset) DefaultSelection() core.Selection {
	return core.NewSelection(d.span, d.Categories(), d.Regions(), core.PreviousPeriod)
}
