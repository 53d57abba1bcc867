package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

const (
	colorRed   = "\x1b[31m"
	colorReset = "\x1b[0m"
)

// New picks JSON output for production and Kubernetes, colored text otherwise.
func New(env string) *slog.Logger {
	_, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST")
	useJSON := inK8s || env == "production" || env == "prod"
	return slog.New(newHandler(os.Stdout, useJSON))
}

func NewWithServiceContext(serviceName, version, env string) *slog.Logger {
	return New(env).With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", env),
	)
}

func newHandler(w io.Writer, useJSON bool) slog.Handler {
	if useJSON {
		return &traceContextHandler{handler: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: true,
		})}
	}
	return &traceContextHandler{handler: newColorTextHandler(w, slog.LevelDebug)}
}

// lineWriter receives exactly one Write per record from the text handler.
// When colored is set the whole line is wrapped in red, outside of any quoting.
type lineWriter struct {
	out     io.Writer
	colored bool
}

func (lw *lineWriter) Write(p []byte) (int, error) {
	if !lw.colored {
		return lw.out.Write(p)
	}

	line := bytes.TrimSuffix(p, []byte("\n"))
	buf := make([]byte, 0, len(line)+len(colorRed)+len(colorReset)+1)
	buf = append(buf, colorRed...)
	buf = append(buf, line...)
	buf = append(buf, colorReset...)
	buf = append(buf, '\n')
	if _, err := lw.out.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}

// colorTextHandler prints ERROR and above in red. Handlers derived through
// WithAttrs/WithGroup share the writer and its lock.
type colorTextHandler struct {
	handler slog.Handler
	writer  *lineWriter
	mu      *sync.Mutex
}

func newColorTextHandler(w io.Writer, level slog.Level) *colorTextHandler {
	lw := &lineWriter{out: w}
	return &colorTextHandler{
		handler: slog.NewTextHandler(lw, &slog.HandlerOptions{Level: level}),
		writer:  lw,
		mu:      &sync.Mutex{},
	}
}

func (h *colorTextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *colorTextHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.writer.colored = r.Level >= slog.LevelError
	defer func() { h.writer.colored = false }()

	return h.handler.Handle(ctx, r)
}

func (h *colorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithAttrs(attrs), writer: h.writer, mu: h.mu}
}

func (h *colorTextHandler) WithGroup(name string) slog.Handler {
	return &colorTextHandler{handler: h.handler.WithGroup(name), writer: h.writer, mu: h.mu}
}

// traceContextHandler adds trace_id and span_id when ctx carries a valid span.
type traceContextHandler struct {
	handler slog.Handler
}

func (h *traceContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *traceContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, r)
}

func (h *traceContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *traceContextHandler) WithGroup(name string) slog.Handler {
	return &traceContextHandler{handler: h.handler.WithGroup(name)}
}

func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
