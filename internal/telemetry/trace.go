package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow OpenTelemetry semantic conventions;
// domain keys use gatewatch vocabulary.
const (
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
	AttrClientIP   = "client.address"
	AttrRequestID  = "request.id"

	AttrUsername = "user.name"
	AttrRole     = "user.role"

	AttrPlate         = "passage.plate"
	AttrVehicleType   = "passage.vehicle_type"
	AttrSource        = "passage.source" // app or sms
	AttrCheckpostID   = "checkpost.id"
	AttrSegmentID     = "segment.id"
	AttrViolationKind = "violation.kind"

	AttrScanOpenPassages = "scan.open_passages"
	AttrScanAlerts       = "scan.alerts_created"
)

func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

func HTTPStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, status)
}

func ClientIP(addr string) attribute.KeyValue {
	return attribute.String(AttrClientIP, addr)
}

func RequestID(id string) attribute.KeyValue {
	return attribute.String(AttrRequestID, id)
}

func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

func Role(role string) attribute.KeyValue {
	return attribute.String(AttrRole, role)
}

func Plate(plate string) attribute.KeyValue {
	return attribute.String(AttrPlate, plate)
}

func VehicleType(vt string) attribute.KeyValue {
	return attribute.String(AttrVehicleType, vt)
}

func Source(source string) attribute.KeyValue {
	return attribute.String(AttrSource, source)
}

func CheckpostID(id string) attribute.KeyValue {
	return attribute.String(AttrCheckpostID, id)
}

func SegmentID(id string) attribute.KeyValue {
	return attribute.String(AttrSegmentID, id)
}

func ViolationKind(kind string) attribute.KeyValue {
	return attribute.String(AttrViolationKind, kind)
}

func ScanOpenPassages(n int) attribute.KeyValue {
	return attribute.Int(AttrScanOpenPassages, n)
}

func ScanAlerts(n int) attribute.KeyValue {
	return attribute.Int(AttrScanAlerts, n)
}

// StartRequestSpan opens the root span for an API request. The route is
// not known until chi has matched it, so callers rename the span after
// serving.
func StartRequestSpan(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{HTTPMethod(method)}, attrs...)
	return StartSpan(ctx, "http "+method, trace.WithAttributes(all...))
}

// StartScanSpan opens the root span for one overstay scanner pass. The
// pass covers every segment, so there is no segment attribute; counts
// are attached once the pass finishes.
func StartScanSpan(ctx context.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "scan.overstays", trace.WithAttributes(attrs...))
}
