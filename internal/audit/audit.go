// Package audit records tool-related events for security review. Two streams
// exist: the structured audit trail (append-only entries describing call
// attempts, results and rejections) and a security event log carrying a
// severity level for operational alerting. Sinks are injected so tests can
// capture entries without touching real logging infrastructure.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
)

// Event identifies the kind of audit entry.
type Event string

const (
	EventToolCall     Event = "tool_call"
	EventToolResult   Event = "tool_result"
	EventToolRejected Event = "tool_rejected"
)

// Severity classifies a security event for alerting purposes.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Entry is a single, immutable record in the audit trail. For tool_result
// entries the payload itself is never recorded, only ResultType, a coarse
// descriptor of its shape.
type Entry struct {
	ID              string         `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	Event           Event          `json:"event"`
	Tool            string         `json:"tool"`
	Args            map[string]any `json:"args,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	Success         *bool          `json:"success,omitempty"`
	Error           string         `json:"error,omitempty"`
	ResultType      string         `json:"result_type,omitempty"`
	ExecutionTimeMS float64        `json:"execution_time_ms,omitempty"`
}

// Sink receives finished audit entries. Write must not block the caller on
// failure; a sink that cannot deliver should drop the entry and complain on
// its own log line.
type Sink interface {
	Write(Entry)
}

// Trail is the audit recorder handed to the tool registry. Call and result
// entries honor the enabled toggle from configuration; rejections are
// security-relevant and are always recorded.
type Trail struct {
	enabled  bool
	sinks    []Sink
	security *log.Logger

	now   func() time.Time
	newID func() string
}

// NewTrail builds a Trail writing to the given sinks. The enabled flag
// controls call/result entries only.
func NewTrail(enabled bool, sinks ...Sink) *Trail {
	return &Trail{
		enabled:  enabled,
		sinks:    sinks,
		security: log.New(os.Stderr, "security: ", log.LstdFlags),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetSecurityOutput redirects the security event stream, primarily for tests.
func (t *Trail) SetSecurityOutput(w io.Writer) {
	t.security = log.New(w, "security: ", 0)
}

// RecordCall logs a tool call attempt before execution.
func (t *Trail) RecordCall(tool string, args map[string]any) {
	if !t.enabled {
		return
	}
	t.write(Entry{
		Event: EventToolCall,
		Tool:  tool,
		Args:  args,
	})
}

// RecordResult logs the outcome of an execution attempt. resultType is a
// shape descriptor such as "map[string]interface {}", never the payload.
func (t *Trail) RecordResult(tool string, success bool, resultType, errMsg string, elapsed time.Duration) {
	if !t.enabled {
		return
	}
	t.write(Entry{
		Event:           EventToolResult,
		Tool:            tool,
		Success:         &success,
		Error:           errMsg,
		ResultType:      resultType,
		ExecutionTimeMS: float64(elapsed.Microseconds()) / 1000,
	})
}

// RecordRejection logs a validation failure. Rejections bypass the enabled
// toggle so they cannot be silenced by turning auditing off.
func (t *Trail) RecordRejection(tool, reason string, args map[string]any) {
	t.write(Entry{
		Event:  EventToolRejected,
		Tool:   tool,
		Reason: reason,
		Args:   args,
	})
}

// SecurityEvent emits a severity-tagged event on the security stream. This is
// a separate sink from the structured audit entries.
func (t *Trail) SecurityEvent(eventType, description string, severity Severity) {
	payload, err := json.Marshal(map[string]any{
		"timestamp":   t.now().UTC().Format(time.RFC3339Nano),
		"event_type":  eventType,
		"description": description,
		"severity":    severity,
	})
	if err != nil {
		t.security.Printf("[%s] %s: %s", severity, eventType, description)
		return
	}
	t.security.Print(string(payload))
}

func (t *Trail) write(e Entry) {
	e.ID = t.newID()
	e.Timestamp = t.now().UTC()
	for _, s := range t.sinks {
		s.Write(e)
	}
}

// TypeOf returns the coarse shape descriptor recorded for result payloads.
func TypeOf(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}
