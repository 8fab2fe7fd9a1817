package site

import (
	"log/slog"

	"github.com/Kush-Singh-26/koshgraph/builder/cache"
	"github.com/Kush-Singh-26/koshgraph/builder/metrics"
)

// Option configures a Site.
type Option func(*Site)

// WithLogger sets the logger used by every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Site) {
		s.logger = logger
	}
}

// WithCache enables the render cache. The caller keeps ownership and closes it.
func WithCache(m *cache.Manager) Option {
	return func(s *Site) {
		s.cache = m
	}
}

// WithMetrics records build counters into m instead of a private instance.
func WithMetrics(m *metrics.BuildMetrics) Option {
	return func(s *Site) {
		s.metrics = m
	}
}
