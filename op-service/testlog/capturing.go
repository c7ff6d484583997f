package testlog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/log"
)

// CapturedRecord is a log record together with the attributes its logger inherited
// (e.g. via logger.New), without mutating or reordering the record itself.
type CapturedRecord struct {
	*slog.Record
	inherited []slog.Attr
}

// Attrs calls f on the record attributes, then on the inherited ones, innermost first.
// Iteration stops if f returns false.
func (r *CapturedRecord) Attrs(f func(slog.Attr) bool) {
	more := true
	r.Record.Attrs(func(a slog.Attr) bool {
		more = f(a)
		return more
	})
	for i := len(r.inherited) - 1; more && i >= 0; i-- {
		more = f(r.inherited[i])
	}
}

// AttrValue returns the value of the first attribute with the given key, or nil.
func (r *CapturedRecord) AttrValue(name string) (v any) {
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == name {
			v = a.Value.Any()
			return false
		}
		return true
	})
	return
}

// hasAttr reports whether any attribute with the key satisfies match.
func (r *CapturedRecord) hasAttr(key string, match func(slog.Value) bool) (found bool) {
	r.Attrs(func(a slog.Attr) bool {
		found = a.Key == key && match(a.Value)
		return !found
	})
	return
}

type capturedLogs struct {
	mu      sync.Mutex
	records []*CapturedRecord
}

// CapturingHandler records every log record before forwarding it to the wrapped handler.
// Handlers derived with WithAttrs share the captured records, so one handler sees the logs
// of all sub-loggers. Safe for concurrent use.
type CapturingHandler struct {
	handler   slog.Handler
	logs      *capturedLogs
	inherited []slog.Attr
}

var _ slog.Handler = (*CapturingHandler)(nil)

// CaptureLogger returns a test logger together with the handler that captures its records.
func CaptureLogger(t Testing, level slog.Level) (log.Logger, *CapturingHandler) {
	var out *CapturingHandler
	logger := LoggerWithHandlerMod(t, level, func(h slog.Handler) slog.Handler {
		out = &CapturingHandler{handler: h, logs: new(capturedLogs)}
		return out
	})
	return logger, out
}

func (c *CapturingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return c.handler.Enabled(ctx, level)
}

func (c *CapturingHandler) Handle(ctx context.Context, r slog.Record) error {
	c.logs.mu.Lock()
	c.logs.records = append(c.logs.records, &CapturedRecord{Record: &r, inherited: c.inherited})
	c.logs.mu.Unlock()
	return c.handler.Handle(ctx, r)
}

func (c *CapturingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CapturingHandler{
		handler:   c.handler.WithAttrs(attrs),
		logs:      c.logs,
		inherited: slices.Concat(c.inherited, attrs),
	}
}

// WithGroup keeps capturing, but the records of the group do not report inherited attributes.
func (c *CapturingHandler) WithGroup(name string) slog.Handler {
	return &CapturingHandler{
		handler: c.handler.WithGroup(name),
		logs:    c.logs,
	}
}

func (c *CapturingHandler) Clear() {
	c.logs.mu.Lock()
	defer c.logs.mu.Unlock()
	c.logs.records = nil
}

// FindLog returns the first captured record matching all filters, or nil.
func (c *CapturingHandler) FindLog(filters ...LogFilter) *CapturedRecord {
	c.logs.mu.Lock()
	defer c.logs.mu.Unlock()
	i := slices.IndexFunc(c.logs.records, matchAll(filters))
	if i < 0 {
		return nil
	}
	return c.logs.records[i]
}

// FindLogs returns all captured records matching all filters, in logging order.
func (c *CapturingHandler) FindLogs(filters ...LogFilter) []*CapturedRecord {
	c.logs.mu.Lock()
	defer c.logs.mu.Unlock()
	var out []*CapturedRecord
	match := matchAll(filters)
	for _, r := range c.logs.records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

type LogFilter func(record *CapturedRecord) bool

func matchAll(filters []LogFilter) func(*CapturedRecord) bool {
	return func(r *CapturedRecord) bool {
		for _, f := range filters {
			if !f(r) {
				return false
			}
		}
		return true
	}
}

func NewLevelFilter(level slog.Level) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Level == level
	}
}

func NewMessageFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.Message == message
	}
}

func NewMessageContainsFilter(message string) LogFilter {
	return func(r *CapturedRecord) bool {
		return strings.Contains(r.Message, message)
	}
}

// NewAttributesFilter matches records with an attribute of the key whose value prints as value.
func NewAttributesFilter(key, value string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.hasAttr(key, func(v slog.Value) bool {
			return v.String() == value
		})
	}
}

// NewErrContainsFilter matches records with an "err" attribute holding an error that contains errMessage.
func NewErrContainsFilter(errMessage string) LogFilter {
	return func(r *CapturedRecord) bool {
		return r.hasAttr("err", func(v slog.Value) bool {
			err, ok := v.Any().(error)
			return ok && strings.Contains(err.Error(), errMessage)
		})
	}
}
