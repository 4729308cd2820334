package sizeof

import (
	"go.uber.org/zap"
)

// Option to configure a Scanner
type Option func(*Scanner)

// Logger sets a logger for this scanner
func Logger(l *zap.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.l = l
		}
	}
}

// MaxDepth bounds the traversal depth. Blocks beyond the limit are not
// accounted and the report is flagged as truncated. The default (0) does
// not bound the traversal.
func MaxDepth(depth int) Option {
	return func(s *Scanner) {
		s.maxDepth = depth
	}
}

// CountShared accounts shared blocks once per reference instead of once
// overall, mimicking a naive size sum. Traversal below a shared block
// still happens only once, so cyclic structures remain safe to scan.
func CountShared(enabled bool) Option {
	return func(s *Scanner) {
		s.countShared = enabled
	}
}

// WithMetrics enables telemetry collection on this scanner
func WithMetrics(enabled bool) Option {
	return func(s *Scanner) {
		s.EnableMetrics(enabled)
	}
}
