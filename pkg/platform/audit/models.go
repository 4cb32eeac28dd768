package audit

import (
	"context"
	"time"

	id "poagate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Validation verdicts on legal documents fall here; these require
	// long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational
	// visibility (quota decisions, tier changes). These can be sampled or
	// aggregated with shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Category   EventCategory `json:"category"`
	Timestamp  time.Time     `json:"timestamp"`
	UserID     id.UserID     `json:"user_id"`
	DocumentID string        `json:"document_id,omitempty"`
	Action     string        `json:"action"`
	// Decision records the outcome where the action is a judgment
	// (overall validation status, quota admitted/rejected).
	Decision string `json:"decision,omitempty"`
	Reason   string `json:"reason,omitempty"`
	// RequestID is the correlation ID from the caller's context.
	RequestID string `json:"request_id,omitempty"`
}

// AuditEvent names the actions this module emits.
type AuditEvent string

const (
	// Validation events
	EventValidationCompleted AuditEvent = "validation_completed"
	EventValidationFailed    AuditEvent = "validation_failed"

	// Quota events
	EventQuotaAdmitted    AuditEvent = "quota_admitted"
	EventQuotaExceeded    AuditEvent = "quota_exceeded"
	EventQuotaReset       AuditEvent = "quota_reset"
	EventQuotaTierUpdated AuditEvent = "quota_tier_updated"
)

// Sink receives audit events. Implementations must be safe for concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
