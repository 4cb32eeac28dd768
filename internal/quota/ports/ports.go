// Package ports defines shared interfaces for the quota module.
package ports

import (
	"context"
	"log/slog"

	"poagate/internal/quota/models"
	id "poagate/pkg/domain"
	audit "poagate/pkg/platform/audit"
	"poagate/pkg/requestcontext"
)

// Store persists per-user quota state with optimistic concurrency.
//
// Implementations translate their backend's absence and lost-write
// conditions into sentinel.ErrNotFound and sentinel.ErrConflict so the gate
// can retry uniformly.
type Store interface {
	// Get returns the state for a user, or sentinel.ErrNotFound when the
	// user has no record yet.
	Get(ctx context.Context, userID id.UserID) (*models.State, error)

	// Create inserts a fresh state. Returns sentinel.ErrConflict when a
	// record already exists (another request seeded it first).
	Create(ctx context.Context, state *models.State) error

	// Update commits next iff the stored version equals next.Version-1.
	// Returns sentinel.ErrConflict when the conditional write loses.
	Update(ctx context.Context, next *models.State) error
}

// AuditPublisher emits audit events for quota decisions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit is a shared helper for logging audit events across quota
// operations. It logs to the structured logger and emits to the audit
// publisher if available.
func LogAudit(ctx context.Context, logger *slog.Logger, publisher AuditPublisher, event audit.Event, attrs ...any) {
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	args := append(attrs, "event", event.Action, "log_type", "audit")
	if event.RequestID != "" {
		args = append(args, "request_id", event.RequestID)
	}

	if logger != nil {
		logger.InfoContext(ctx, event.Action, args...)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}
