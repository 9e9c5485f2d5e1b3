package http

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"sync/atomic"

	"ventas/internal/amqp"
	"ventas/internal/analytics"
	"ventas/internal/core"
	"ventas/internal/export"
	"ventas/internal/log"
	"ventas/internal/middleware/trace"
)

// handleExport serves the filtered rows as a CSV or XLSX download and, when
// a notifier is configured, announces the download in the background.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx).WithComponent(log.ComponentExport)

	format, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	rows := analytics.FilterSelection(ds, req.Selection)

	body, err := export.Render(format, rows)
	if err != nil {
		atomic.AddInt64(&s.appMetrics.exportErrors, 1)
		logger.ErrorContext(ctx, "Export failed",
			log.FieldOperation, log.OpExport,
			log.FieldFormat, string(format),
			log.FieldError, err)
		InternalServerError("No se pudo generar el archivo").Write(w)
		return
	}
	atomic.AddInt64(&s.appMetrics.exports, 1)

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": format.FileName()}))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.WarnContext(ctx, "Export download interrupted", log.FieldError, err)
		return
	}

	fields := log.NewFields().
		WithOperation(log.OpExport).
		WithSelection(req.Selection).
		WithExport(string(format), len(rows), len(body))
	logger.InfoContext(ctx, "Export served", fields.ToSlice()...)

	s.notifyExport(ctx, format, req.Selection, len(rows), len(body))
}

// notifyExport publishes the export event without holding up the response.
// Failures are logged and counted, never surfaced to the client.
func (s *Server) notifyExport(ctx context.Context, format export.Format, sel core.Selection, rows, size int) {
	if s.notifier == nil {
		return
	}

	event := amqp.NewExportEvent(string(format), rows, size)
	event.From = sel.Range.Start.String()
	event.To = sel.Range.End.String()
	event.Compare = string(sel.Mode)
	event.RequestID = trace.GetRequestID(ctx)
	for _, c := range sel.CategoryList() {
		event.Categories = append(event.Categories, string(c))
	}
	for _, r := range sel.RegionList() {
		event.Regions = append(event.Regions, string(r))
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentAMQP)
	// The request context ends with the response; keep its values only.
	bg := context.WithoutCancel(ctx)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		pubCtx, cancel := context.WithTimeout(bg, s.opts.NotifyTimeout)
		defer cancel()

		if err := s.notifier.PublishExport(pubCtx, event); err != nil {
			atomic.AddInt64(&s.appMetrics.notifyFailures, 1)
			level := logger.WarnContext
			if errors.Is(err, amqp.ErrCircuitOpen) {
				level = logger.DebugContext
			}
			level(pubCtx, "Export notification not published",
				log.FieldOperation, log.OpNotify,
				"event_id", event.ID,
				log.FieldError, err)
			return
		}
		atomic.AddInt64(&s.appMetrics.notifications, 1)
		logger.DebugContext(pubCtx, "Export notification published",
			log.FieldOperation, log.OpNotify,
			"event_id", event.ID)
	}()
}
