package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so passage, matching
// and sync events can be correlated in log aggregation.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Request & Caller
	// ========================================================================
	KeyRequestID = "request_id" // HTTP request ID
	KeyClientIP  = "client_ip"  // Client IP address
	KeyUsername  = "username"   // Authenticated caller
	KeyRole      = "role"       // Caller role: ranger, admin
	KeyOperation = "operation"  // Operation name: ingest, pull, match, scan, sync

	// ========================================================================
	// Domain Entities
	// ========================================================================
	KeySegment     = "segment"      // Segment ID or name
	KeyCheckpost   = "checkpost"    // Checkpost ID or code
	KeyPlate       = "plate"        // Normalized plate number
	KeyVehicleType = "vehicle_type" // Vehicle type enum value
	KeyPassage     = "passage"      // Passage ID
	KeyClientID    = "client_id"    // Passage idempotency key
	KeySource      = "source"       // Intake channel: app, sms
	KeyViolation   = "violation"    // Violation ID
	KeyAlert       = "alert"        // Overstay alert ID
	KeyKind        = "kind"         // Violation kind: speeding, overstay

	// ========================================================================
	// Matching & Scanning
	// ========================================================================
	KeyMatchedWith      = "matched_with"      // Paired passage ID
	KeyTravelMinutes    = "travel_minutes"    // Observed travel time
	KeyThresholdMinutes = "threshold_minutes" // Threshold the pair was judged against
	KeySpeedKmh         = "speed_kmh"         // Calculated speed
	KeyScanned          = "scanned"           // Entries examined by a scanner run
	KeyCreated          = "created"           // Entries created by a scanner run

	// ========================================================================
	// Sync Engine
	// ========================================================================
	KeyQueueDepth  = "queue_depth"  // Outbound queue entries awaiting sync
	KeyAttempt     = "attempt"      // Sync attempt number
	KeyMaxAttempts = "max_attempts" // Attempt limit before an entry fails
	KeyStatus      = "status"       // Queue entry status or HTTP status
	KeyDuplicate   = "duplicate"    // Server reported the passage as already known
	KeyPulled      = "pulled"       // Passages fetched by an inbound pull

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyCount      = "count"       // Generic item count
	KeyLimit      = "limit"       // Requested result limit
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Username returns a slog.Attr for the authenticated caller
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Operation returns a slog.Attr for the operation name
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Segment returns a slog.Attr for a segment identifier
func Segment(id string) slog.Attr {
	return slog.String(KeySegment, id)
}

// Checkpost returns a slog.Attr for a checkpost identifier
func Checkpost(id string) slog.Attr {
	return slog.String(KeyCheckpost, id)
}

// Plate returns a slog.Attr for a normalized plate number
func Plate(p string) slog.Attr {
	return slog.String(KeyPlate, p)
}

// VehicleType returns a slog.Attr for a vehicle type
func VehicleType(vt string) slog.Attr {
	return slog.String(KeyVehicleType, vt)
}

// Passage returns a slog.Attr for a passage ID
func Passage(id string) slog.Attr {
	return slog.String(KeyPassage, id)
}

// ClientID returns a slog.Attr for a passage idempotency key
func ClientID(id string) slog.Attr {
	return slog.String(KeyClientID, id)
}

// Source returns a slog.Attr for the intake channel
func Source(src string) slog.Attr {
	return slog.String(KeySource, src)
}

// Violation returns a slog.Attr for a violation ID
func Violation(id string) slog.Attr {
	return slog.String(KeyViolation, id)
}

// Alert returns a slog.Attr for an overstay alert ID
func Alert(id string) slog.Attr {
	return slog.String(KeyAlert, id)
}

// Kind returns a slog.Attr for a violation kind
func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

// TravelMinutes returns a slog.Attr for observed travel time
func TravelMinutes(m float64) slog.Attr {
	return slog.Float64(KeyTravelMinutes, m)
}

// ThresholdMinutes returns a slog.Attr for the judged threshold
func ThresholdMinutes(m float64) slog.Attr {
	return slog.Float64(KeyThresholdMinutes, m)
}

// QueueDepth returns a slog.Attr for outbound queue depth
func QueueDepth(n int) slog.Attr {
	return slog.Int(KeyQueueDepth, n)
}

// Attempt returns a slog.Attr for a sync attempt number
func Attempt(n int) slog.Attr {
	return slog.Int(KeyAttempt, n)
}

// MaxAttempts returns a slog.Attr for the sync attempt limit
func MaxAttempts(n int) slog.Attr {
	return slog.Int(KeyMaxAttempts, n)
}

// Status returns a slog.Attr for a status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Duplicate returns a slog.Attr marking an idempotent replay
func Duplicate(d bool) slog.Attr {
	return slog.Bool(KeyDuplicate, d)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Count returns a slog.Attr for a generic item count
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Limit returns a slog.Attr for a requested result limit
func Limit(n int) slog.Attr {
	return slog.Int(KeyLimit, n)
}
