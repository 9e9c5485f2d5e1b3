package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ventas/internal/analytics"
	"ventas/internal/core"
)

func TestHTMXResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewHTMXResponse().
		Status(http.StatusOK).
		Body([]byte("test")).
		Write(w)

	if w.Code != http.StatusOK {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusOK)
	}
	if w.Body.String() != "test" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "test")
	}
}

func TestHTMXResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()
	sel := core.NewSelection(
		core.NewDateRange(core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 10)),
		[]core.Category{core.Ropa}, nil, core.PreviousPeriod)

	NewHTMXResponse().
		TriggerSelectionChanged(sel).
		TriggerWarningNotification("Filtros ignorados: Centro").
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	var parsed map[string]map[string]any
	if err := json.Unmarshal([]byte(trigger), &parsed); err != nil {
		t.Fatalf("HX-Trigger is not JSON: %v", err)
	}
	query, _ := parsed["selection:changed"]["query"].(string)
	for _, part := range []string{"from=2025-06-01", "to=2025-06-10", "category=Ropa", "region=&"} {
		if !strings.Contains(query, part) {
			t.Errorf("selection query missing %q: %s", part, query)
		}
	}
	if parsed["show-notification"]["type"] != "warning" {
		t.Errorf("notification = %v", parsed["show-notification"])
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name       string
		builder    *HTMXResponseBuilder
		wantStatus int
		wantRetry  string
	}{
		{"bad request", BadRequestError("x"), http.StatusBadRequest, ""},
		{"internal", InternalServerError("x"), http.StatusInternalServerError, ""},
		{"unavailable", ServiceUnavailableError("x"), http.StatusServiceUnavailable, "5"},
		{"too many", TooManyRequestsError("x", 60), http.StatusTooManyRequests, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Errorf("Retry-After = %q, want %q", got, tt.wantRetry)
			}
			if !strings.Contains(w.Header().Get("Content-Type"), "text/html") {
				t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestErrorResponse_EscapesHTML(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequestError("<script>alert(1)</script>").Write(w)
	if strings.Contains(w.Body.String(), "<script>") {
		t.Errorf("message not escaped: %s", w.Body.String())
	}
}

func TestBuildKPIView(t *testing.T) {
	ds := fixtureDataset(t)
	sel := core.NewSelection(
		core.NewDateRange(core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 10)),
		core.Categories(), core.Regions(), core.PreviousPeriod)

	v := BuildKPIView(analytics.Compute(ds, sel))

	// Current 200 + 80 + 120.5 over three orders; prior (05-22..05-31) is
	// the single 100 sale.
	want := []KPICard{
		{Label: "Ventas Totales", Value: "$400", Delta: "▲ 300.5%", Direction: core.DeltaUp},
		{Label: "Promedio por Orden", Value: "$133,50", Delta: "▲ 33.5%", Direction: core.DeltaUp},
		{Label: "Número de Órdenes", Value: "3", Delta: "▲ 200.0%", Direction: core.DeltaUp},
	}
	if len(v.Cards) != len(want) {
		t.Fatalf("cards = %d, want %d", len(v.Cards), len(want))
	}
	for i := range want {
		if v.Cards[i] != want[i] {
			t.Errorf("card %d = %+v, want %+v", i, v.Cards[i], want[i])
		}
	}
	if !v.HasPrior || v.PriorRange != "22/05/2025 – 31/05/2025" {
		t.Errorf("prior = %v %q", v.HasPrior, v.PriorRange)
	}
}

func TestBuildKPIViewWithoutComparison(t *testing.T) {
	ds := fixtureDataset(t)
	sel := core.NewSelection(
		core.NewDateRange(core.NewDate(2030, 1, 1), core.NewDate(2030, 1, 31)),
		core.Categories(), core.Regions(), core.NoComparison)

	v := BuildKPIView(analytics.Compute(ds, sel))
	if !v.Empty || v.HasPrior {
		t.Fatalf("expected empty view without prior, got %+v", v)
	}
	for _, c := range v.Cards {
		if c.Delta != core.NotAvailable || c.Direction != core.DeltaNone {
			t.Errorf("%s delta = %q (%s), want n/d", c.Label, c.Delta, c.Direction)
		}
	}
	if v.Cards[0].Value != "$0" || v.Cards[1].Value != core.Placeholder || v.Cards[2].Value != "0" {
		t.Errorf("values = %q %q %q", v.Cards[0].Value, v.Cards[1].Value, v.Cards[2].Value)
	}
}

func TestBuildSnapshotResponseJSON(t *testing.T) {
	ds := fixtureDataset(t)
	sel := core.NewSelection(
		core.NewDateRange(core.NewDate(2025, 6, 1), core.NewDate(2025, 6, 10)),
		core.Categories(), core.Regions(), core.NoComparison)

	b, err := json.Marshal(BuildSnapshotResponse(analytics.Compute(ds, sel), []string{"Centro"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(b)
	for _, part := range []string{
		`"from":"2025-06-01"`,
		`"count":3`,
		`"deltas":{"total":null,"mean":null,"count":null}`,
		`"delta_total":"n/d"`,
		`"ignored":["Centro"]`,
	} {
		if !strings.Contains(body, part) {
			t.Errorf("snapshot JSON missing %s: %s", part, body)
		}
	}
	if strings.Contains(body, `"prior"`) {
		t.Errorf("prior must be omitted without comparison: %s", body)
	}
}

func TestBuildTableView(t *testing.T) {
	ds := fixtureDataset(t)
	sel := ds.DefaultSelection()
	rows := analytics.FilterSelection(ds, sel)

	v := BuildTableView(sel, rows, 2)
	if !v.Truncated || v.Total != 6 || len(v.Rows) != 2 {
		t.Fatalf("unexpected table %+v", v)
	}
	if v.Rows[0].Date != "2025-06-15" || v.Rows[1].Date != "2025-06-10" {
		t.Errorf("rows must be newest first: %+v", v.Rows)
	}
	if v.Rows[1].Amount != "$120,50" {
		t.Errorf("amount = %q", v.Rows[1].Amount)
	}

	if all := BuildTableView(sel, rows, 0); all.Truncated || len(all.Rows) != 6 {
		t.Errorf("limit 0 must keep every row: %+v", all)
	}
}
