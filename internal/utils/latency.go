package utils

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// LatencyTracker keeps a fixed window of recent durations per operation.
type LatencyTracker struct {
	mu      sync.Mutex
	window  int
	samples map[string]*ring
}

type ring struct {
	values []time.Duration
	next   int
	full   bool
}

// NewLatencyTracker creates a tracker keeping up to window samples per operation.
func NewLatencyTracker(window int) *LatencyTracker {
	if window <= 0 {
		window = 512
	}
	return &LatencyTracker{window: window, samples: make(map[string]*ring)}
}

// Observe records d for operation, overwriting the oldest sample once the window is full.
func (l *LatencyTracker) Observe(operation string, d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.samples[operation]
	if !ok {
		r = &ring{values: make([]time.Duration, l.window)}
		l.samples[operation] = r
	}
	r.values[r.next] = d
	r.next = (r.next + 1) % l.window
	if r.next == 0 {
		r.full = true
	}
}

// Count returns the number of samples held for operation.
func (l *LatencyTracker) Count(operation string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sizeLocked(operation)
}

func (l *LatencyTracker) sizeLocked(operation string) int {
	r, ok := l.samples[operation]
	switch {
	case !ok:
		return 0
	case r.full:
		return l.window
	default:
		return r.next
	}
}

// Percentile returns the p-th percentile (0-100) for operation, or zero without samples.
func (l *LatencyTracker) Percentile(operation string, p float64) time.Duration {
	l.mu.Lock()
	n := l.sizeLocked(operation)
	if n == 0 {
		l.mu.Unlock()
		return 0
	}
	sorted := append([]time.Duration(nil), l.samples[operation].values[:n]...)
	l.mu.Unlock()

	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	switch {
	case p <= 0:
		return sorted[0]
	case p >= 100:
		return sorted[n-1]
	}
	return sorted[int(p/100*float64(n-1))]
}

// Operations returns the tracked operation names in sorted order.
func (l *LatencyTracker) Operations() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ops := make([]string, 0, len(l.samples))
	for op := range l.samples {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Report logs the p50 and p95 of every operation each interval until ctx is done.
func (l *LatencyTracker) Report(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, op := range l.Operations() {
				logger.Info("request latency",
					slog.String("operation", op),
					slog.Int("samples", l.Count(op)),
					slog.Duration("p50", l.Percentile(op, 50)),
					slog.Duration("p95", l.Percentile(op, 95)),
				)
			}
		}
	}
}
