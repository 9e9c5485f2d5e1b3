package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"ventas/internal/analytics"
	"ventas/internal/core"
	"ventas/internal/dataset"
	"ventas/internal/export"
	"ventas/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}
	_ = writeJSON(w, http.StatusOK, health)
}

// handleReady reports ready once templates are parsed and the dataset has
// been loaded. It triggers the load if nobody has yet.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	ds, err := s.data.Get(ctx)
	if err != nil {
		checks["dataset"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]interface{}{
			"status":  "ok",
			"records": ds.Len(),
			"span":    ds.Span().String(),
		}
	}

	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.exportLimiter.ActiveClients(),
		"status":         "ok",
	}
	if s.notifier == nil {
		checks["notifier"] = "not_configured"
	} else {
		checks["notifier"] = "configured"
	}

	_ = writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.exportLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()
	m := s.appMetrics

	loaded := 0
	if s.data.Loaded() {
		loaded = 1
	}

	w.WriteHeader(http.StatusOK)

	counter(w, "http_requests_total", "Total number of HTTP requests", traceMetrics.TotalRequests)
	counter(w, "http_server_errors_total", "Total number of HTTP 5xx responses", traceMetrics.ServerErrors)
	counter(w, "snapshots_total", "Total dashboard snapshots computed", atomic.LoadInt64(&m.snapshots))
	counter(w, "exports_total", "Total exports served", atomic.LoadInt64(&m.exports))
	counter(w, "export_errors_total", "Total exports that failed to render", atomic.LoadInt64(&m.exportErrors))
	counter(w, "export_notifications_total", "Total export notifications published", atomic.LoadInt64(&m.notifications))
	counter(w, "export_notification_failures_total", "Total export notifications that failed", atomic.LoadInt64(&m.notifyFailures))
	counter(w, "ignored_labels_total", "Total unknown category or region labels dropped", atomic.LoadInt64(&m.ignoredLabels))
	counter(w, "bad_selections_total", "Total requests rejected for an invalid selection", atomic.LoadInt64(&m.badSelections))
	counter(w, "dataset_failures_total", "Total requests that could not load the dataset", atomic.LoadInt64(&m.datasetFailures))
	counter(w, "rate_limit_hits_total", "Total rate limit hits", rateLimitMetrics.TotalHits)
	counter(w, "suspicious_requests_total", "Total suspicious requests detected", securityMetrics.SuspiciousRequests)
	gauge(w, "active_rate_limit_clients", "Currently tracked rate limit clients", float64(rateLimitMetrics.ClientCount))
	gauge(w, "dataset_loaded", "Whether the dataset has been loaded", float64(loaded))
	gauge(w, "uptime_seconds", "Application uptime in seconds", time.Since(m.uptime).Seconds())
}

func counter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n\n", name, help, name, name, v)
}

func gauge(w http.ResponseWriter, name, help string, v float64) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %.0f\n\n", name, help, name, name, v)
}

// pageData feeds index.html.
type pageData struct {
	Selection  core.Selection
	Query      string
	CSVURL     template.URL
	XLSXURL    template.URL
	From       string
	To         string
	Min        string
	Max        string
	Categories []labelOption
	Regions    []labelOption
	Modes      []modeOption
	KPIs       KPIView
	Table      TableView
}

type labelOption struct {
	Value    string
	Selected bool
}

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	snap := s.compute(r.Context(), ds, req)
	sel := req.Selection
	span := ds.Span()

	data := pageData{
		Selection: sel,
		Query:     SelectionQuery(sel).Encode(),
		CSVURL:    exportURL(export.FormatCSV, sel),
		XLSXURL:   exportURL(export.FormatXLSX, sel),
		From:      sel.Range.Start.String(),
		To:        sel.Range.End.String(),
		Min:       span.Start.String(),
		Max:       span.End.String(),
		KPIs:      BuildKPIView(snap),
		Table:     BuildTableView(sel, snap.Rows, s.opts.TableLimit),
	}
	for _, c := range ds.Categories() {
		data.Categories = append(data.Categories, labelOption{Value: string(c), Selected: sel.HasCategory(c)})
	}
	for _, rg := range ds.Regions() {
		data.Regions = append(data.Regions, labelOption{Value: string(rg), Selected: sel.HasRegion(rg)})
	}
	for _, m := range core.ComparisonModes() {
		data.Modes = append(data.Modes, modeOption{Value: string(m), Label: m.Label(), Selected: m == sel.Mode})
	}

	s.render(w, r, "index.html", data, nil, false)
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	snap := s.compute(r.Context(), ds, req)
	s.render(w, r, "kpis.html", BuildKPIView(snap), &req, true)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	rows := analytics.FilterSelection(ds, req.Selection)
	s.render(w, r, "table.html", BuildTableView(req.Selection, rows, s.opts.TableLimit), &req, false)
}

// selection loads the dataset and parses the query. On failure it has
// already written the error response.
func (s *Server) selection(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, SelectionRequest, bool) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	ds, err := s.data.Get(ctx)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.datasetFailures, 1)
		logger.ErrorContext(ctx, "Dataset unavailable",
			log.FieldOperation, log.OpLoad,
			log.FieldError, err)
		ServiceUnavailableError("Datos no disponibles").Write(w)
		return nil, SelectionRequest{}, false
	}

	req, err := ParseSelection(r.URL.Query(), ds)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.badSelections, 1)
		logger.WarnContext(ctx, "Invalid selection",
			log.FieldOperation, log.OpParse,
			log.FieldError, err)
		if wantsJSON(r) {
			_ = writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		} else {
			BadRequestError(err.Error()).Write(w)
		}
		return nil, SelectionRequest{}, false
	}

	if len(req.Ignored) > 0 {
		atomic.AddInt64(&s.appMetrics.ignoredLabels, int64(len(req.Ignored)))
		logger.WarnContext(ctx, "Ignoring unknown labels",
			log.FieldOperation, log.OpParse,
			"labels", strings.Join(req.Ignored, ","))
	}
	return ds, req, true
}

func (s *Server) compute(ctx context.Context, ds *dataset.Dataset, req SelectionRequest) analytics.Snapshot {
	start := time.Now()
	snap := analytics.Compute(ds, req.Selection)
	atomic.AddInt64(&s.appMetrics.snapshots, 1)

	fields := log.NewFields().
		WithOperation(log.OpSnapshot).
		WithSelection(req.Selection)
	fields[log.FieldRows] = snap.Current.Count
	fields[log.FieldDuration] = time.Since(start).Milliseconds()
	log.FromContext(ctx).DebugContext(ctx, "Snapshot computed", fields.ToSlice()...)
	return snap
}

// render executes a template into memory first so that a failing template
// never leaves a half-written page. Partials (req non-nil) warn about ignored
// labels; announce also fires selection:changed, which refreshes the table,
// charts and download links.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any, req *SelectionRequest, announce bool) {
	var buf strings.Builder
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		InternalServerError("Error al renderizar la vista").Write(w)
		return
	}

	resp := NewHTMXResponse().BodyHTML(buf.String())
	if req != nil {
		if announce {
			resp.TriggerSelectionChanged(req.Selection)
		}
		if len(req.Ignored) > 0 {
			resp.TriggerWarningNotification("Filtros ignorados: " + strings.Join(req.Ignored, ", "))
		}
	}
	resp.Write(w)
}

func exportURL(f export.Format, sel core.Selection) template.URL {
	return template.URL("/export/" + string(f) + "?" + SelectionQuery(sel).Encode())
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/") || strings.Contains(r.Header.Get("Accept"), "application/json")
}
