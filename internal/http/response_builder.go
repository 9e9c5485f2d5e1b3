// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses
// and the view models the dashboard templates and JSON API are rendered from.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"ventas/internal/analytics"
	"ventas/internal/core"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerSelectionChanged tells the page which selection the partial was
// rendered for, so charts can refetch with the same query.
func (b *HTMXResponseBuilder) TriggerSelectionChanged(sel core.Selection) *HTMXResponseBuilder {
	return b.Trigger("selection:changed", map[string]string{"query": SelectionQuery(sel).Encode()})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerWarningNotification is a convenience method for warnings such as
// ignored filter labels.
func (b *HTMXResponseBuilder) TriggerWarningNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationWarning, message, 4000)
}

// TriggerErrorNotification is a convenience method for error notifications.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the response body as bytes.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error">` + escapedMsg + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// ServiceUnavailableError creates a 503 response, used while the dataset
// cannot be loaded.
func ServiceUnavailableError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message).Header("Retry-After", "5")
}

// TooManyRequestsError creates a 429 response for the export rate limiter.
func TooManyRequestsError(message string, retryAfter int) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message).Header("Retry-After", strconv.Itoa(retryAfter))
}

// KPICard is one metric tile.
type KPICard struct {
	Label     string
	Value     string
	Delta     string
	Direction core.Direction
}

// KPIView is the data of the KPI partial.
type KPIView struct {
	Cards      []KPICard
	Compare    string
	PriorRange string
	HasPrior   bool
	Empty      bool
}

// BuildKPIView formats a snapshot for display. The total renders as whole
// currency, the mean with cents and the count as a grouped integer. Missing
// values show the placeholder and deltas without a prior period show n/d.
func BuildKPIView(snap analytics.Snapshot) KPIView {
	v := KPIView{
		Compare:  snap.Selection.Mode.Label(),
		HasPrior: snap.HasPrior,
		Empty:    snap.Current.Count == 0,
	}
	if snap.HasPrior {
		v.PriorRange = snap.PriorRange.Start.Format("02/01/2006") + " – " + snap.PriorRange.End.Format("02/01/2006")
	}
	v.Cards = []KPICard{
		kpiCard("Ventas Totales", core.FormatCurrency(core.Some(snap.Current.Total), 0), snap.Deltas.Total),
		kpiCard("Promedio por Orden", core.FormatCurrency(snap.Current.Mean, 2), snap.Deltas.Mean),
		kpiCard("Número de Órdenes", core.FormatNumber(core.Some(float64(snap.Current.Count)), 0), snap.Deltas.Count),
	}
	return v
}

func kpiCard(label, value string, delta core.Optional) KPICard {
	return KPICard{
		Label:     label,
		Value:     value,
		Delta:     core.FormatDelta(delta),
		Direction: core.DirectionOf(delta),
	}
}

// SnapshotResponse is the JSON shape of /api/snapshot.
type SnapshotResponse struct {
	From       string            `json:"from" yaml:"from"`
	To         string            `json:"to" yaml:"to"`
	Categories []core.Category   `json:"categories" yaml:"categories"`
	Regions    []core.Region     `json:"regions" yaml:"regions"`
	Compare    string            `json:"compare" yaml:"compare"`
	Current    analytics.Metrics `json:"current" yaml:"current"`
	Prior      *PriorResponse    `json:"prior,omitempty" yaml:"prior,omitempty"`
	Deltas     analytics.Deltas  `json:"deltas" yaml:"deltas"`
	Formatted  map[string]string `json:"formatted" yaml:"formatted"`
	Ignored    []string          `json:"ignored,omitempty" yaml:"ignored,omitempty"`
}

// PriorResponse describes the comparison period.
type PriorResponse struct {
	From    string            `json:"from" yaml:"from"`
	To      string            `json:"to" yaml:"to"`
	Metrics analytics.Metrics `json:"metrics" yaml:"metrics"`
}

// BuildSnapshotResponse converts a snapshot into its API form.
func BuildSnapshotResponse(snap analytics.Snapshot, ignored []string) SnapshotResponse {
	sel := snap.Selection
	resp := SnapshotResponse{
		From:       sel.Range.Start.String(),
		To:         sel.Range.End.String(),
		Categories: sel.CategoryList(),
		Regions:    sel.RegionList(),
		Compare:    string(sel.Mode),
		Current:    snap.Current,
		Deltas:     snap.Deltas,
		Ignored:    ignored,
		Formatted: map[string]string{
			"total":       core.FormatCurrency(core.Some(snap.Current.Total), 0),
			"mean":        core.FormatCurrency(snap.Current.Mean, 2),
			"count":       core.FormatNumber(core.Some(float64(snap.Current.Count)), 0),
			"delta_total": core.FormatDelta(snap.Deltas.Total),
			"delta_mean":  core.FormatDelta(snap.Deltas.Mean),
			"delta_count": core.FormatDelta(snap.Deltas.Count),
		},
	}
	if snap.HasPrior {
		resp.Prior = &PriorResponse{
			From:    snap.PriorRange.Start.String(),
			To:      snap.PriorRange.End.String(),
			Metrics: snap.Prior,
		}
	}
	return resp
}

// ChartsResponse is the JSON shape of /api/charts.
type ChartsResponse struct {
	ByCategory []analytics.CategoryTotal `json:"by_category"`
	ByRegion   []analytics.RegionShare   `json:"by_region"`
	Monthly    []analytics.MonthTotal    `json:"monthly"`
}

// BuildChartsResponse computes the chart series of rows.
func BuildChartsResponse(rows []core.Record) ChartsResponse {
	return ChartsResponse{
		ByCategory: analytics.ByCategory(rows),
		ByRegion:   analytics.ByRegion(rows),
		Monthly:    analytics.Monthly(rows),
	}
}

// TableRow is one line of the detail table.
type TableRow struct {
	Date     string
	Category core.Category
	Region   core.Region
	Amount   string
}

// TableView is the data of the detail table partial.
type TableView struct {
	Rows      []TableRow
	Total     int
	Truncated bool
	Query     string
}

// BuildTableView lists rows newest first, keeping at most limit of them.
// A non-positive limit keeps everything.
func BuildTableView(sel core.Selection, rows []core.Record, limit int) TableView {
	sorted := analytics.DetailRows(rows)
	v := TableView{Total: len(sorted), Query: SelectionQuery(sel).Encode()}
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
		v.Truncated = true
	}
	v.Rows = make([]TableRow, len(sorted))
	for i, r := range sorted {
		v.Rows[i] = TableRow{
			Date:     r.Date.String(),
			Category: r.Category,
			Region:   r.Region,
			Amount:   core.FormatCurrency(core.Some(r.Amount), 2),
		}
	}
	return v
}
