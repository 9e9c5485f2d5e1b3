package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Loader builds the Dataset from its Source on first use and hands out the
// same instance for the rest of the process lifetime. Concurrent first calls
// share a single load.
type Loader struct {
	src   Source
	group singleflight.Group

	mu sync.RWMutex
	ds *Dataset
}

// NewLoader wraps src. Nothing is loaded until Get is called.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Get returns the cached dataset, loading it if needed. A failed load is not
// cached, so the next call retries.
func (l *Loader) Get(ctx context.Context) (*Dataset, error) {
	l.mu.RLock()
	ds := l.ds
	l.mu.RUnlock()
	if ds != nil {
		return ds, nil
	}

	v, err, _ := l.group.Do("dataset", func() (any, error) {
		l.mu.RLock()
		cached := l.ds
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		start := time.Now()
		records, err := l.src.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load records: %w", err)
		}
		built, err := New(records)
		if err != nil {
			return nil, fmt.Errorf("build dataset: %w", err)
		}

		l.mu.Lock()
		l.ds = built
		l.mu.Unlock()

		slog.InfoContext(ctx, "Dataset loaded",
			"records", built.Len(),
			"span", built.Span().String(),
			"duration_ms", time.Since(start).Milliseconds())
		return built, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dataset), nil
}

// Loaded reports whether the dataset has been built.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ds != nil
}
