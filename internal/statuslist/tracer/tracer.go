// Package tracer provides a lightweight tracing abstraction for status list
// operations. NoopTracer serves tests; OTelTracer adapts OpenTelemetry.
package tracer

import (
	"context"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Span names.
const (
	SpanCreate = "statuslist.create"
	SpanToggle = "statuslist.toggle"
	SpanRead   = "statuslist.read"
	SpanFind   = "statuslist.find"
)

// Attribute keys.
const (
	AttrOwnerID  = "owner_id"
	AttrPurpose  = "purpose"
	AttrSize     = "size"
	AttrLocation = "location"
	AttrValue    = "value"
)

// Event names.
const (
	EventAuditEmitted = "audit.emitted"
)
