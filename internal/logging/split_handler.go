package logging

import (
	"context"
	"log/slog"
)

// splitHandler routes records at or above threshold to high and everything
// else to low.
type splitHandler struct {
	low       slog.Handler
	high      slog.Handler
	threshold slog.Level
}

func newSplitHandler(low, high slog.Handler, threshold slog.Level) slog.Handler {
	switch {
	case low == nil && high == nil:
		return NoopHandler{}
	case low == nil:
		return high
	case high == nil:
		return low
	}
	return &splitHandler{low: low, high: high, threshold: threshold}
}

func (h *splitHandler) target(level slog.Level) slog.Handler {
	if level >= h.threshold {
		return h.high
	}
	return h.low
}

func (h *splitHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.target(level).Enabled(ctx, level)
}

func (h *splitHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.target(record.Level).Handle(ctx, record)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{low: h.low.WithAttrs(attrs), high: h.high.WithAttrs(attrs), threshold: h.threshold}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{low: h.low.WithGroup(name), high: h.high.WithGroup(name), threshold: h.threshold}
}
