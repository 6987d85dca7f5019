package logger

import (
	"context"
	"errors"
	log "log/slog"
)

// TeeHandler 将日志分发到多个 Handler
type TeeHandler struct {
	handlers []log.Handler
}

func NewTeeHandler(handlers ...log.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

func (s *TeeHandler) Enabled(ctx context.Context, level log.Level) bool {
	for _, h := range s.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (s *TeeHandler) Handle(ctx context.Context, r log.Record) error {
	var errs []error
	for _, h := range s.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *TeeHandler) WithAttrs(attrs []log.Attr) log.Handler {
	next := make([]log.Handler, len(s.handlers))
	for i, h := range s.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

func (s *TeeHandler) WithGroup(name string) log.Handler {
	next := make([]log.Handler, len(s.handlers))
	for i, h := range s.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}

// TracedOnlyHandler 只放行带 trace_id 的记录，启动期日志不上报远端
type TracedOnlyHandler struct {
	next log.Handler
}

func (s *TracedOnlyHandler) Enabled(ctx context.Context, level log.Level) bool {
	return s.next.Enabled(ctx, level)
}

func (s *TracedOnlyHandler) Handle(ctx context.Context, r log.Record) error {
	traced := false
	r.Attrs(func(a log.Attr) bool {
		if a.Key == TraceIDKey && a.Value.String() != "" {
			traced = true
			return false
		}
		return true
	})
	if !traced {
		return nil
	}
	return s.next.Handle(ctx, r)
}

func (s *TracedOnlyHandler) WithAttrs(attrs []log.Attr) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithAttrs(attrs)}
}

func (s *TracedOnlyHandler) WithGroup(name string) log.Handler {
	return &TracedOnlyHandler{next: s.next.WithGroup(name)}
}
