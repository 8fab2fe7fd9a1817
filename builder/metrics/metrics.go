// Package metrics provides build performance tracking.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Phase names used by the build pipeline.
const (
	PhaseLoad       = "load"
	PhaseGraph      = "graph"
	PhasePermalinks = "permalinks"
	PhaseTaxonomy   = "taxonomy"
	PhaseRender     = "render"
)

// BuildMetrics tracks performance data during the build process.
// Counters may be bumped from render workers concurrently.
type BuildMetrics struct {
	StartTime time.Time
	EndTime   time.Time

	SectionsLoaded atomic.Int64
	PagesLoaded    atomic.Int64
	Rendered       atomic.Int64
	CacheHits      atomic.Int64
	CacheMisses    atomic.Int64
	BrokenLinks    atomic.Int64
	Failures       atomic.Int64

	mu     sync.Mutex
	phases map[string]time.Duration
	order  []string
}

// NewBuildMetrics creates a new metrics instance.
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		StartTime: time.Now(),
		phases:    make(map[string]time.Duration),
	}
}

// RecordStart marks the start of a build.
func (m *BuildMetrics) RecordStart() {
	m.StartTime = time.Now()
}

// RecordEnd marks the end of the build.
func (m *BuildMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns the total build duration.
func (m *BuildMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// Track starts timing phase; call the returned func when it finishes.
// Repeated phases accumulate.
func (m *BuildMetrics) Track(phase string) func() {
	start := time.Now()
	return func() {
		m.AddPhase(phase, time.Since(start))
	}
}

// AddPhase adds d to the time spent in phase.
func (m *BuildMetrics) AddPhase(phase string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.phases[phase]; !ok {
		m.order = append(m.order, phase)
	}
	m.phases[phase] += d
}

// Phase returns the time spent in phase.
func (m *BuildMetrics) Phase(phase string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phases[phase]
}

// Phases returns the recorded phases in first-seen order.
func (m *BuildMetrics) Phases() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// CacheHitRate returns the cache hit percentage.
func (m *BuildMetrics) CacheHitRate() float64 {
	hits := m.CacheHits.Load()
	total := hits + m.CacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// IncrementCacheHit increments the cache hit counter.
func (m *BuildMetrics) IncrementCacheHit() {
	m.CacheHits.Add(1)
}

// IncrementCacheMiss increments the cache miss counter.
func (m *BuildMetrics) IncrementCacheMiss() {
	m.CacheMisses.Add(1)
}

// String returns a formatted summary of the build metrics (minimal single-line format).
func (m *BuildMetrics) String() string {
	hits := m.CacheHits.Load()
	total := hits + m.CacheMisses.Load()

	return fmt.Sprintf("📊 Built %d sections and %d pages in %v (rendered: %d, cache: %d/%d hits, %.0f%%)\n",
		m.SectionsLoaded.Load(),
		m.PagesLoaded.Load(),
		m.TotalDuration().Round(time.Millisecond),
		m.Rendered.Load(),
		hits,
		total,
		m.CacheHitRate(),
	)
}

// Print outputs the metrics to stdout.
func (m *BuildMetrics) Print() {
	fmt.Println(m.String())
}
