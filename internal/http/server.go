package http

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"ventas/internal/amqp"
	"ventas/internal/dataset"
	"ventas/internal/export"
	"ventas/internal/log"
	"ventas/internal/middleware/ratelimit"
	"ventas/internal/middleware/security"
	"ventas/internal/middleware/trace"
	"ventas/web"
)

// DatasetProvider hands out the shared dataset. *dataset.Loader satisfies it.
type DatasetProvider interface {
	Get(ctx context.Context) (*dataset.Dataset, error)
	Loaded() bool
}

// ExportNotifier announces generated exports. *amqp.Client satisfies it.
type ExportNotifier interface {
	PublishExport(ctx context.Context, msg *amqp.ExportEvent) error
}

// Options tune the server. Zero values fall back to defaults.
type Options struct {
	// ExportRateLimit is the number of exports a client may download per minute.
	ExportRateLimit int
	// ExportFormatLimits overrides ExportRateLimit per format, e.g. {"xlsx": 10}.
	ExportFormatLimits map[string]int
	// TableLimit caps the rows rendered in the detail table partial.
	TableLimit int
	// NotifyTimeout bounds a single export notification.
	NotifyTimeout time.Duration
	Logger        *log.Logger
}

const (
	defaultExportRateLimit = 30
	defaultTableLimit      = 500
	defaultNotifyTimeout   = 5 * time.Second
)

// Server wraps http.Server with the dashboard's dependencies.
type Server struct {
	http.Server
	templates *template.Template

	data     DatasetProvider
	notifier ExportNotifier
	opts     Options

	exportLimiter    *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	logger           *log.Logger
	appMetrics       *appMetrics

	// notifications in flight, drained on Shutdown
	pending sync.WaitGroup
}

type appMetrics struct {
	uptime          time.Time
	snapshots       int64
	exports         int64
	exportErrors    int64
	notifications   int64
	notifyFailures  int64
	ignoredLabels   int64
	badSelections   int64
	datasetFailures int64
}

// NewServer builds the dashboard server. notifier may be nil, in which case
// exports are not announced.
func NewServer(addr string, data DatasetProvider, notifier ExportNotifier, opts Options) (*Server, error) {
	if opts.ExportRateLimit <= 0 {
		opts.ExportRateLimit = defaultExportRateLimit
	}
	if opts.TableLimit <= 0 {
		opts.TableLimit = defaultTableLimit
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = defaultNotifyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	tmpl, err := web.Templates(templateFuncs())
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates:        tmpl,
		data:             data,
		notifier:         notifier,
		opts:             opts,
		securityDetector: security.NewDetector(),
		logger:           opts.Logger.WithComponent(log.ComponentHTTP),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.exportLimiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerWindow: opts.ExportRateLimit,
		BucketLimits:      opts.ExportFormatLimits,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	})
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/kpis", s.handleKPIs)
	mux.HandleFunc("GET /ui/table", s.handleTable)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/charts", s.handleCharts)

	exports := s.exportLimiter.Middleware(s.securityDetector.ExtractClientIP, exportBucket, s.onExportLimit)
	mux.Handle("GET /export/{format}", exports(security.DownloadMiddleware(http.HandlerFunc(s.handleExport))))

	mux.Handle("GET /static/", security.StaticAssetMiddleware(86400)(http.FileServerFS(web.StaticFS)))

	var handler http.Handler = mux
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(s.logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown stops accepting requests, waits for in-flight export
// notifications and stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", log.FieldOperation, log.OpShutdown)

	err := s.Server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Export notifications still pending at shutdown")
	}

	s.exportLimiter.Stop()
	return err
}

// exportBucket limits each export format separately. Unknown formats share
// one bucket so that arbitrary paths cannot grow the limiter.
func exportBucket(r *http.Request) string {
	f, err := export.ParseFormat(r.PathValue("format"))
	if err != nil {
		return "other"
	}
	return string(f)
}

// ExportLimitResponse is the JSON body of a rejected export.
type ExportLimitResponse struct {
	Error      string `json:"error"`
	Format     string `json:"format"`
	Limit      int    `json:"limit"`
	Window     string `json:"window"`
	RetryAfter int    `json:"retry_after"`
}

func (s *Server) onExportLimit(w http.ResponseWriter, r *http.Request, d ratelimit.Decision) {
	retry := int(d.RetryAfter(time.Now()) / time.Second)
	log.FromContext(r.Context()).WarnContext(r.Context(), "Export rate limit exceeded",
		log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
		log.FieldFormat, d.Bucket,
		"limit", d.Limit,
		"retry_after", retry)

	if wantsJSON(r) {
		_ = writeJSON(w, http.StatusTooManyRequests, ExportLimitResponse{
			Error:      "export rate limit exceeded",
			Format:     d.Bucket,
			Limit:      d.Limit,
			Window:     "1m",
			RetryAfter: retry,
		})
		return
	}
	msg := fmt.Sprintf("Límite de %d descargas %s por minuto alcanzado. Intenta de nuevo en %d s.",
		d.Limit, strings.ToUpper(d.Bucket), retry)
	TooManyRequestsError(msg, retry).Write(w)
}
