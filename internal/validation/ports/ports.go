// Package ports defines shared interfaces for the validation module.
// Interfaces live here when consumed by multiple services to avoid
// duplication; implementations belong to the collaborators.
package ports

import (
	"context"
	"log/slog"

	"poagate/internal/validation/models"
	audit "poagate/pkg/platform/audit"
	"poagate/pkg/requestcontext"
)

// TextExtractor produces normalized extracted text from raw document bytes.
// Backends are PDF-text extraction or OCR; calls may take seconds.
type TextExtractor interface {
	// Extract returns text plus a 0-100 confidence, or the conservative
	// default 0 when the backend cannot report one.
	Extract(ctx context.Context, data []byte) (models.ExtractedText, error)
}

// ImageQualityAnalyzer scores scanned-image input.
type ImageQualityAnalyzer interface {
	Analyze(ctx context.Context, data []byte) (*models.ImageQuality, error)
}

// AuditPublisher emits audit events for compliance-relevant operations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// LogAudit is a shared helper for audit events across module services.
// It logs to the structured logger and emits to the publisher if available.
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
