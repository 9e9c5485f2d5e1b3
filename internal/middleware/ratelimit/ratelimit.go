// Package ratelimit throttles downloads per client and export format.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Limiter counts requests per client in fixed windows. Each client has one
// counter per bucket (an export format), and a bucket may carry its own limit.
type Limiter struct {
	mu           sync.Mutex
	clients      map[key]*window
	stopCleanup  chan struct{}
	shutdownOnce sync.Once

	hits int64

	limit        int
	bucketLimits map[string]int
	window       time.Duration
	now          func() time.Time
}

type key struct {
	client string
	bucket string
}

type window struct {
	start    time.Time
	requests int
}

// Config holds rate limiter configuration.
type Config struct {
	// RequestsPerWindow applies to every bucket without an entry in
	// BucketLimits.
	RequestsPerWindow int
	BucketLimits      map[string]int
	Window            time.Duration
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerWindow: 60,
		Window:            time.Minute,
		CleanupInterval:   5 * time.Minute,
	}
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed   bool
	Bucket    string
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is the wait until the window resets, rounded up to a second.
func (d Decision) RetryAfter(now time.Time) time.Duration {
	wait := d.ResetAt.Sub(now)
	if wait <= 0 {
		return time.Second
	}
	return (wait + time.Second - 1).Truncate(time.Second)
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerWindow <= 0 {
		config.RequestsPerWindow = def.RequestsPerWindow
	}
	if config.Window <= 0 {
		config.Window = def.Window
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = def.CleanupInterval
	}
	limits := make(map[string]int, len(config.BucketLimits))
	for b, n := range config.BucketLimits {
		if n > 0 {
			limits[b] = n
		}
	}

	rl := &Limiter{
		clients:      make(map[key]*window),
		stopCleanup:  make(chan struct{}),
		limit:        config.RequestsPerWindow,
		bucketLimits: limits,
		window:       config.Window,
		now:          time.Now,
	}
	go rl.startCleanup(config.CleanupInterval)
	return rl
}

// LimitFor returns the limit that applies to bucket.
func (rl *Limiter) LimitFor(bucket string) int {
	if n, ok := rl.bucketLimits[bucket]; ok {
		return n
	}
	return rl.limit
}

// Allow records a request from client in bucket and reports whether it fits
// in the current window.
func (rl *Limiter) Allow(client, bucket string) Decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	limit := rl.LimitFor(bucket)
	k := key{client: client, bucket: bucket}

	w, ok := rl.clients[k]
	if !ok || !now.Before(w.start.Add(rl.window)) {
		w = &window{start: now}
		rl.clients[k] = w
	}

	d := Decision{Bucket: bucket, Limit: limit, ResetAt: w.start.Add(rl.window)}
	if w.requests >= limit {
		atomic.AddInt64(&rl.hits, 1)
		return d
	}
	w.requests++
	d.Allowed = true
	d.Remaining = limit - w.requests
	return d
}

func (rl *Limiter) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupExpired drops windows that have already reset.
func (rl *Limiter) cleanupExpired() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for k, w := range rl.clients {
		if !now.Before(w.start.Add(rl.window)) {
			delete(rl.clients, k)
			removed++
		}
	}
	return removed
}

// ActiveClients returns the number of distinct clients being tracked.
func (rl *Limiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	seen := make(map[string]struct{}, len(rl.clients))
	for k := range rl.clients {
		seen[k.client] = struct{}{}
	}
	return len(seen)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		if rl.stopCleanup != nil {
			close(rl.stopCleanup)
		}
	})
}

// GetMetrics returns current rate limiting metrics
func (rl *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   atomic.LoadInt64(&rl.hits),
		ClientCount: int64(rl.ActiveClients()),
	}
}

// Metrics for monitoring rate limit performance
type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

// Middleware limits requests by client and bucket. Every response carries
// X-RateLimit-Limit and X-RateLimit-Remaining; a rejected one also carries
// Retry-After and is handed to onLimit when set.
func (rl *Limiter) Middleware(
	client func(*http.Request) string,
	bucket func(*http.Request) string,
	onLimit func(http.ResponseWriter, *http.Request, Decision),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b := ""
			if bucket != nil {
				b = bucket(r)
			}
			d := rl.Allow(client(r), b)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				secs := int(d.RetryAfter(rl.now()) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if onLimit != nil {
					onLimit(w, r, d)
					return
				}
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
