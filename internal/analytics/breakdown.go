package analytics

import (
	"cmp"
	"slices"
	"time"

	"ventas/internal/core"
)

// CategoryTotal is one bar of the category chart.
type CategoryTotal struct {
	Category core.Category `json:"category"`
	Total    float64       `json:"total"`
}

// RegionShare is one slice of the region donut.
type RegionShare struct {
	Region core.Region `json:"region"`
	Total  float64     `json:"total"`
	Share  float64     `json:"share"`
}

// MonthTotal is one point of the monthly trend.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// ByCategory totals rows per category, smallest first. Categories without
// rows are omitted. Ties keep enum order.
func ByCategory(rows []core.Record) []CategoryTotal {
	sums := map[core.Category]float64{}
	for _, r := range rows {
		sums[r.Category] += r.Amount
	}
	out := make([]CategoryTotal, 0, len(sums))
	for _, c := range core.Categories() {
		if v, ok := sums[c]; ok {
			out = append(out, CategoryTotal{Category: c, Total: v})
		}
	}
	slices.SortStableFunc(out, func(a, b CategoryTotal) int {
		return cmp.Compare(a.Total, b.Total)
	})
	return out
}

// ByRegion totals rows per region in enum order. Share is a percentage of
// the overall total and is zero when that total is zero.
func ByRegion(rows []core.Record) []RegionShare {
	sums := map[core.Region]float64{}
	var total float64
	for _, r := range rows {
		sums[r.Region] += r.Amount
		total += r.Amount
	}
	out := make([]RegionShare, 0, len(sums))
	for _, rg := range core.Regions() {
		v, ok := sums[rg]
		if !ok {
			continue
		}
		rs := RegionShare{Region: rg, Total: v}
		if total > 0 {
			rs.Share = v / total * 100
		}
		out = append(out, rs)
	}
	return out
}

// Monthly buckets rows by calendar month, from the first month with data to
// the last, filling gaps with zero.
func Monthly(rows []core.Record) []MonthTotal {
	if len(rows) == 0 {
		return []MonthTotal{}
	}
	sums := map[string]float64{}
	first, last := rows[0].Date, rows[0].Date
	for _, r := range rows {
		sums[monthKey(r.Date)] += r.Amount
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}

	var out []MonthTotal
	cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		k := cur.Format("2006-01")
		out = append(out, MonthTotal{Month: k, Total: sums[k]})
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// DetailRows returns a copy of rows, newest first. Rows sharing a date keep
// their relative order.
func DetailRows(rows []core.Record) []core.Record {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b core.Record) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

func monthKey(d core.Date) string {
	return d.Format("2006-01")
}
