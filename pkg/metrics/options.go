package metrics

import (
	"context"
	"time"

	"go.opencensus.io/stats/view"
)

// Option alters the package settings applied by Init
type Option func(*settings)

// WithBasePath roots all registered metric locations under the given path
// (e.g. "refscope/cli" yields measures like refscope/cli/cmd/...).
func WithBasePath(pth string) Option {
	return func(s *settings) {
		s.basePath = pth
	}
}

// WithContexter sets the context factory used when recording measurements.
// Recording never receives a caller context, so the default factory is
// context.Background.
func WithContexter(factory func() context.Context) Option {
	return func(s *settings) {
		if factory != nil {
			s.contexter = factory
		}
	}
}

// WithExporter registers the view exporter shipping metrics to a collector.
// The exporter is wrapped so Flush can reach it when it supports flushing.
func WithExporter(e view.Exporter) Option {
	return func(s *settings) {
		if e != nil {
			s.exporter = flusher(e)
		}
	}
}

// WithReportingPeriod sets how often views are uploaded. Periods under
// one second are ignored and the opencensus default (10s) applies.
func WithReportingPeriod(period time.Duration) Option {
	return func(s *settings) {
		s.d = period
	}
}
