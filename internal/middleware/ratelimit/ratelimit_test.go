package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *fakeClock) {
	t.Helper()
	cfg.CleanupInterval = time.Hour
	rl := NewLimiter(cfg)
	t.Cleanup(rl.Stop)

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	rl.mu.Lock()
	rl.now = clock.now
	rl.mu.Unlock()
	return rl, clock
}

func TestLimiterAllow(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{RequestsPerWindow: 2})

	if d := rl.Allow("a", "csv"); !d.Allowed || d.Remaining != 1 || d.Limit != 2 {
		t.Fatalf("first request = %+v", d)
	}
	if d := rl.Allow("a", "csv"); !d.Allowed || d.Remaining != 0 {
		t.Fatalf("second request = %+v", d)
	}
	if d := rl.Allow("a", "csv"); d.Allowed {
		t.Fatal("third request within the window must be limited")
	}
	if !rl.Allow("b", "csv").Allowed {
		t.Fatal("other clients are tracked separately")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("metrics = %+v, want 1 hit and 2 clients", m)
	}
}

func TestLimiterBuckets(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{
		RequestsPerWindow: 3,
		BucketLimits:      map[string]int{"xlsx": 1, "csv": 0},
	})

	if rl.LimitFor("xlsx") != 1 || rl.LimitFor("csv") != 3 {
		t.Fatalf("limits xlsx=%d csv=%d", rl.LimitFor("xlsx"), rl.LimitFor("csv"))
	}
	if !rl.Allow("a", "xlsx").Allowed {
		t.Fatal("first xlsx must pass")
	}
	if rl.Allow("a", "xlsx").Allowed {
		t.Fatal("second xlsx must be limited")
	}
	// The spent xlsx budget does not touch csv.
	for i := 0; i < 3; i++ {
		if !rl.Allow("a", "csv").Allowed {
			t.Fatalf("csv request %d limited", i+1)
		}
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiterWindowResets(t *testing.T) {
	rl, clock := newTestLimiter(t, Config{RequestsPerWindow: 1, Window: time.Minute})

	first := rl.Allow("a", "csv")
	if !first.Allowed || !first.ResetAt.Equal(clock.t.Add(time.Minute)) {
		t.Fatalf("first = %+v", first)
	}

	// Steady traffic does not extend the window.
	clock.t = clock.t.Add(40 * time.Second)
	limited := rl.Allow("a", "csv")
	if limited.Allowed {
		t.Fatal("second request within the window must be limited")
	}
	if got := limited.RetryAfter(clock.t); got != 20*time.Second {
		t.Errorf("RetryAfter = %v, want 20s", got)
	}

	clock.t = clock.t.Add(20 * time.Second)
	if !rl.Allow("a", "csv").Allowed {
		t.Fatal("request after the window reset must pass")
	}
}

func TestLimiterCleanup(t *testing.T) {
	rl, clock := newTestLimiter(t, Config{RequestsPerWindow: 1})

	rl.Allow("a", "csv")
	clock.t = clock.t.Add(30 * time.Second)
	rl.Allow("b", "csv")
	clock.t = clock.t.Add(45 * time.Second)

	if n := rl.cleanupExpired(); n != 1 {
		t.Fatalf("removed %d windows, want 1", n)
	}
	if rl.ActiveClients() != 1 {
		t.Errorf("ActiveClients() = %d, want 1", rl.ActiveClients())
	}
}

func TestLimiterMiddleware(t *testing.T) {
	rl, clock := newTestLimiter(t, Config{RequestsPerWindow: 1})

	var rejected Decision
	h := rl.Middleware(
		func(*http.Request) string { return "c" },
		func(r *http.Request) string { return r.URL.Query().Get("f") },
		func(w http.ResponseWriter, r *http.Request, d Decision) {
			rejected = d
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export?f=csv", nil))
	if rr.Code != http.StatusNoContent || rr.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("first request status = %d remaining = %q", rr.Code, rr.Header().Get("X-RateLimit-Remaining"))
	}

	clock.t = clock.t.Add(15 * time.Second)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export?f=csv", nil))
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "45" {
		t.Fatalf("second request status = %d, Retry-After = %q", rr.Code, rr.Header().Get("Retry-After"))
	}
	if rejected.Bucket != "csv" || rejected.Limit != 1 {
		t.Errorf("onLimit got %+v", rejected)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/export?f=xlsx", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("other bucket status = %d", rr.Code)
	}
}

func TestLimiterMiddlewareDefaultResponse(t *testing.T) {
	rl, _ := newTestLimiter(t, Config{RequestsPerWindow: 1})
	h := rl.Middleware(func(*http.Request) string { return "c" }, nil, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests || rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("status = %d, Retry-After = %q", rr.Code, rr.Header().Get("Retry-After"))
	}
}

func TestLimiterStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}
