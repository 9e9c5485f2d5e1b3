package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"

	"ventas/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "test-id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "test-id", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file error, got %v", err)
	}
}

func TestClient_LoadWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestClient_LoadFromAPI(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"range": "Ventas!A1:D3",
			"majorDimension": "ROWS",
			"values": [
				["Fecha", "Categoría", "Región", "Ventas"],
				["2025-06-01", "Ropa", "Este", 120.25],
				["2025-06-02", "Hogar", "Oeste", 80]
			]
		}`))
	}))
	defer srv.Close()

	c, err := New(context.Background(),
		Config{SpreadsheetID: "sheet-123"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	records, err := c.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(gotPath, "sheet-123") {
		t.Errorf("request path %q does not reference the spreadsheet", gotPath)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Category != core.Ropa || records[0].Amount != 120.25 || records[1].Region != core.Oeste {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestClient_LoadPropagatesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"denied"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(context.Background(),
		Config{SpreadsheetID: "sheet-123", SheetName: "Otra"},
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Load(context.Background()); err == nil || !strings.Contains(err.Error(), "Otra!A:D") {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}
