package logger

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation times one unit of work with an OpenTelemetry span.
type Operation struct {
	ctx    context.Context
	span   trace.Span
	logger *slog.Logger
	name   string
	start  time.Time
	fields []any
}

// StartOperation opens a span named name. fields are slog-style key/value
// pairs; scalar values are also recorded as span attributes.
func StartOperation(ctx context.Context, l *slog.Logger, name string, fields ...any) *Operation {
	ctx, span := otel.Tracer(ServiceName).Start(ctx, name)
	span.SetAttributes(toAttributes(fields)...)

	l = OrDiscard(l)
	l.DebugContext(ctx, "Operation started", append([]any{"operation", name}, fields...)...)

	return &Operation{
		ctx:    ctx,
		span:   span,
		logger: l,
		name:   name,
		start:  time.Now(),
		fields: fields,
	}
}

// Context returns the context carrying the operation's span.
func (op *Operation) Context() context.Context {
	return op.ctx
}

// End completes the operation.
func (op *Operation) End(fields ...any) {
	d := time.Since(op.start)
	op.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	op.span.SetAttributes(toAttributes(fields)...)
	op.span.SetStatus(codes.Ok, "completed")
	op.span.End()

	all := append([]any{"operation", op.name, "duration_ms", d.Milliseconds()}, op.fields...)
	op.logger.DebugContext(op.ctx, "Operation completed", append(all, fields...)...)
}

// EndWithError completes the operation as failed and logs err.
func (op *Operation) EndWithError(err error, fields ...any) {
	d := time.Since(op.start)
	op.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	op.span.RecordError(err)
	op.span.SetStatus(codes.Error, err.Error())
	op.span.End()

	all := append([]any{"operation", op.name, "duration_ms", d.Milliseconds(), "error", err}, op.fields...)
	op.logger.ErrorContext(op.ctx, "Operation failed", append(all, fields...)...)
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
