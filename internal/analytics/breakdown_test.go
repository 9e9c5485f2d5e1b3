package analytics

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ventas/internal/core"
)

func TestByCategorySortsAscending(t *testing.T) {
	rows := []core.Record{
		{Category: core.Hogar, Amount: 50},
		{Category: core.Ropa, Amount: 10},
		{Category: core.Hogar, Amount: 5},
		{Category: core.Electronica, Amount: 30},
	}
	want := []CategoryTotal{
		{Category: core.Ropa, Total: 10},
		{Category: core.Electronica, Total: 30},
		{Category: core.Hogar, Total: 55},
	}
	if diff := cmp.Diff(want, ByCategory(rows)); diff != "" {
		t.Fatalf("ByCategory mismatch (-want +got):\n%s", diff)
	}
}

func TestByRegionShares(t *testing.T) {
	rows := []core.Record{
		{Region: core.Oeste, Amount: 25},
		{Region: core.Norte, Amount: 75},
	}
	want := []RegionShare{
		{Region: core.Norte, Total: 75, Share: 75},
		{Region: core.Oeste, Total: 25, Share: 25},
	}
	if diff := cmp.Diff(want, ByRegion(rows)); diff != "" {
		t.Fatalf("ByRegion mismatch (-want +got):\n%s", diff)
	}

	zero := ByRegion([]core.Record{{Region: core.Sur, Amount: 0}})
	if len(zero) != 1 || zero[0].Share != 0 {
		t.Fatalf("zero total must yield zero share, got %+v", zero)
	}
}

func TestMonthlyFillsGaps(t *testing.T) {
	rows := []core.Record{
		{Date: d(2025, 3, 15), Amount: 5},
		{Date: d(2024, 12, 31), Amount: 10},
		{Date: d(2024, 12, 1), Amount: 2.5},
	}
	want := []MonthTotal{
		{Month: "2024-12", Total: 12.5},
		{Month: "2025-01", Total: 0},
		{Month: "2025-02", Total: 0},
		{Month: "2025-03", Total: 5},
	}
	if diff := cmp.Diff(want, Monthly(rows)); diff != "" {
		t.Fatalf("Monthly mismatch (-want +got):\n%s", diff)
	}
	if got := Monthly(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty series, got %v", got)
	}
}

func TestDetailRowsNewestFirst(t *testing.T) {
	rows := []core.Record{
		{Date: d(2025, 1, 1), Amount: 1},
		{Date: d(2025, 1, 3), Amount: 2},
		{Date: d(2025, 1, 1), Amount: 3},
	}
	got := DetailRows(rows)
	want := []core.Record{rows[1], rows[0], rows[2]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("DetailRows mismatch (-want +got):\n%s", diff)
	}
	if rows[0].Amount != 1 || rows[1].Amount != 2 {
		t.Fatalf("DetailRows must not reorder its input")
	}
}
