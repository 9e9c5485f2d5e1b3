package http

import (
	"net/http"

	"ventas/internal/analytics"
	"ventas/internal/log"
)

// handleSnapshot returns the KPIs, prior period and deltas as JSON.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	snap := s.compute(r.Context(), ds, req)
	if err := writeJSON(w, http.StatusOK, BuildSnapshotResponse(snap, req.Ignored)); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode snapshot",
			log.FieldOperation, log.OpSnapshot,
			log.FieldError, err)
	}
}

// handleCharts returns the category, region and monthly series as JSON.
func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	ds, req, ok := s.selection(w, r)
	if !ok {
		return
	}
	rows := analytics.FilterSelection(ds, req.Selection)
	if err := writeJSON(w, http.StatusOK, BuildChartsResponse(rows)); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode charts",
			log.FieldOperation, log.OpCharts,
			log.FieldError, err)
	}
}
