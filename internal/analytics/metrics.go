package analytics

import "ventas/internal/core"

// Metrics are the KPIs of a set of records.
type Metrics struct {
	Total float64       `json:"total"`
	Mean  core.Optional `json:"mean"`
	Count int           `json:"count"`
}

// Aggregate sums records in input order. An empty input has a zero total
// and no mean.
func Aggregate(records []core.Record) Metrics {
	var m Metrics
	for _, r := range records {
		m.Total += r.Amount
	}
	m.Count = len(records)
	if m.Count > 0 {
		m.Mean = core.Some(m.Total / float64(m.Count))
	}
	return m
}
