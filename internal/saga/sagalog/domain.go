// Package sagalog defines the domain types for the saga audit log.
//
// Each row records one state transition of a checkout saga. The log exists
// for observability (joining a saga's history with its distributed trace via
// trace_id) and as a durable record of which persistence steps ran before a
// failure triggered compensation.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the saga_logs table, a point-in-time snapshot of
// a saga execution.
type Entry struct {
	// SagaID is the order id, so the log can be joined with the orders table.
	SagaID string

	Status Status

	// CurrentStep is the name of the step that was just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised submission that started the saga,
	// stored once on the STARTED row.
	Payload string

	// ErrorMessages is a JSON array of failure details, one per failed step
	// or failed compensation.
	ErrorMessages string

	// TraceID and SpanID come from the OpenTelemetry span active when the
	// entry was written, linking the row to the full distributed trace.
	TraceID string
	SpanID  string

	UpdatedAt time.Time
}
