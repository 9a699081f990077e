package nats

import "time"

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents carries audit events emitted by the command engine.
const StreamEvents = "DJFORGE_EVENTS"

// SubjectAuditEvent is the subject audit events are published on.
const SubjectAuditEvent = "djforge.events.audit"

// Audit event types emitted by the engine.
const (
	EventCommandProcessed     = "command_processed"
	EventCommandRejected      = "command_rejected"
	EventConfirmationRequired = "confirmation_required"
	EventOutcomeRecorded      = "outcome_recorded"
	EventHistoryCleared       = "history_cleared"
)

// AuditEvent is published for compliance/audit logging of command handling.
type AuditEvent struct {
	UserID    string    `json:"user_id"`
	EventType string    `json:"event_type"`
	Severity  string    `json:"severity"` // info, warn, error
	Intent    string    `json:"intent,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
