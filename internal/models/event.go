package models

import (
	"time"
)

// RequestEvent is the normalized inbound request the server layer hands to
// the pipeline. It is created once per request and never mutated afterwards;
// stages receive it read-only.
type RequestEvent struct {
	// CorrelationID is assigned at pipeline entry and ties the event to
	// audit records, assessments, and alert groups.
	CorrelationID string
	// Identity is the opaque client key supplied by a trusted upstream
	// layer. The pipeline never derives it from request fields itself.
	Identity string
	Method   string
	URL      string
	Headers  map[string]string
	Body     []byte
	// ReceivedAt carries both wall-clock and monotonic readings when taken
	// from time.Now; window arithmetic uses the monotonic part.
	ReceivedAt time.Time
}

// HasBody reports whether the method conventionally carries a payload.
func (e *RequestEvent) HasBody() bool {
	switch e.Method {
	case "POST", "PUT", "PATCH":
		return len(e.Body) > 0
	}
	return false
}
