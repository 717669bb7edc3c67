package observability

import (
	"sync"

	"go.uber.org/zap"
)

// Breadcrumbs records structured telemetry events keyed by category and
// level. Recording can never fail and never blocks the request that
// triggered it; counts are kept in memory for the readiness surface and
// tests.
type Breadcrumbs struct {
	logger *zap.Logger

	mu     sync.Mutex
	counts map[string]int64
}

// NewBreadcrumbs initializes the recorder.
func NewBreadcrumbs(logger *zap.Logger) *Breadcrumbs {
	return &Breadcrumbs{
		logger: logger,
		counts: make(map[string]int64),
	}
}

// Record emits one breadcrumb.
func (b *Breadcrumbs) Record(category, level, message string, data map[string]any) {
	if b == nil {
		return
	}

	fields := []zap.Field{
		zap.String("category", category),
		zap.String("breadcrumb_level", level),
	}
	if len(data) > 0 {
		fields = append(fields, zap.Any("data", data))
	}

	switch level {
	case "error":
		b.logger.Error(message, fields...)
	case "warning":
		b.logger.Warn(message, fields...)
	default:
		b.logger.Info(message, fields...)
	}

	b.mu.Lock()
	b.counts[category+"|"+level]++
	b.mu.Unlock()
}

// Count returns how many breadcrumbs were recorded for a category and level.
func (b *Breadcrumbs) Count(category, level string) int64 {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[category+"|"+level]
}
