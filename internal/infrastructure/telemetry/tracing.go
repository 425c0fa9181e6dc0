package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer used for application spans
const TracerName = "storefront-backend"

// Span attribute keys
const (
	SpanAttrSessionID     = "session.id"
	SpanAttrShopID        = "shop.id"
	SpanAttrCustomerID    = "customer.id"
	SpanAttrPaymentID     = "payment.id"
	SpanAttrPaymentSource = "payment.source"
	SpanAttrDispatchID    = "dispatch.id"
	SpanAttrBatchSize     = "batch.size"
	SpanAttrProductID     = "product.id"
)

// StartServiceSpan starts an internal span named {service}.{method} on the
// global tracer. keyValues are alternating attribute keys and values.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "cart_context", "resolve")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	opts := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if attrs := attributes(keyValues); len(attrs) > 0 {
		opts = append(opts, trace.WithAttributes(attrs...))
	}
	return otel.Tracer(TracerName).Start(ctx, service+"."+method, opts...)
}

// SetAttributes adds alternating key/value pairs to span. Non-string keys are skipped.
func SetAttributes(span trace.Span, keyValues ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(attributes(keyValues)...)
}

// AddEvent adds a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attributes(keyValues)...))
}

// RecordError records err on span and marks the span failed
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace id of the span in ctx, or ""
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

func attributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	return attrs
}

// toAttribute maps the id and name types of the storefront to attributes.
// A nil *int, an unset selection, becomes the empty string.
func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []int:
		return attribute.IntSlice(key, v)
	case *int:
		if v == nil {
			return attribute.String(key, "")
		}
		return attribute.Int(key, *v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
