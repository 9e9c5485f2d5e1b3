package analytics

import (
	"ventas/internal/core"
	"ventas/internal/dataset"
)

// Deltas holds the percentage change of each KPI.
type Deltas struct {
	Total core.Optional `json:"total"`
	Mean  core.Optional `json:"mean"`
	Count core.Optional `json:"count"`
}

// Snapshot is everything derived from one selection.
type Snapshot struct {
	Selection  core.Selection
	Rows       []core.Record
	Current    Metrics
	Prior      Metrics
	PriorRange core.DateRange
	HasPrior   bool
	Deltas     Deltas
}

// Compute runs the full pipeline for sel: filter, aggregate, resolve the
// prior period, aggregate it and compute deltas. Without a prior period
// every delta is not applicable.
func Compute(ds *dataset.Dataset, sel core.Selection) Snapshot {
	rows := FilterSelection(ds, sel)
	snap := Snapshot{
		Selection: sel,
		Rows:      rows,
		Current:   Aggregate(rows),
	}

	priorRows, priorRange, ok := ResolvePrior(ds, sel.Range, sel.Mode)
	if !ok {
		return snap
	}
	snap.HasPrior = true
	snap.PriorRange = priorRange
	snap.Prior = Aggregate(priorRows)
	snap.Deltas = Deltas{
		Total: DeltaPct(snap.Current.Total, core.Some(snap.Prior.Total)),
		Mean:  DeltaOf(snap.Current.Mean, snap.Prior.Mean),
		Count: DeltaPct(float64(snap.Current.Count), core.Some(float64(snap.Prior.Count))),
	}
	return snap
}
