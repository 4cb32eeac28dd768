package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"poagate/internal/validation/aggregate"
	"poagate/internal/validation/metrics"
	"poagate/internal/validation/models"
	"poagate/internal/validation/ports"
	"poagate/internal/validation/rules"
	id "poagate/pkg/domain"
	dErrors "poagate/pkg/domain-errors"
	audit "poagate/pkg/platform/audit"
	"poagate/pkg/requestcontext"
)

// Service orchestrates one validation run: extraction, the four rule
// validators in parallel, then aggregation. Given identical extracted text
// the produced result is identical except for id, timestamps and
// processing time.
type Service struct {
	extractor      ports.TextExtractor
	imageQuality   ports.ImageQualityAnalyzer
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithImageQualityAnalyzer(analyzer ports.ImageQualityAnalyzer) Option {
	return func(s *Service) {
		s.imageQuality = analyzer
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(extractor ports.TextExtractor, opts ...Option) (*Service, error) {
	if extractor == nil {
		return nil, fmt.Errorf("text extractor is required")
	}

	svc := &Service{
		extractor: extractor,
		tracer:    otel.Tracer("poagate/validation"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// UploadOutcome carries everything one upload produced. ImageQuality is nil
// for PDF input and for failed analyses; AnalysisWarning marks the latter so
// the boundary layer can flag the document.
type UploadOutcome struct {
	Result          *models.ValidationResult
	ImageQuality    *models.ImageQuality
	AnalysisWarning bool
}

// ValidateUpload runs the full pipeline on raw document bytes: extraction
// (fatal on failure), image quality analysis for scans (non-fatal), then
// the rule checks.
func (s *Service) ValidateUpload(ctx context.Context, data []byte, kind models.DocumentKind) (*UploadOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "validation.validate_upload",
		trace.WithAttributes(attribute.String("document.kind", string(kind))))
	defer span.End()

	if !kind.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown document kind %q", kind)
	}
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document data is empty")
	}

	extracted, err := s.extractor.Extract(ctx, data)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncExtractionFailure()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnprocessable, "text extraction failed")
	}

	outcome := &UploadOutcome{}

	if kind == models.KindScannedImage && s.imageQuality != nil {
		quality, err := s.imageQuality.Analyze(ctx, data)
		if err != nil {
			// Analysis failure is non-fatal: validation proceeds without
			// an image quality record.
			outcome.AnalysisWarning = true
			if s.metrics != nil {
				s.metrics.IncAnalysisFailure()
			}
			if s.logger != nil {
				s.logger.WarnContext(ctx, "image quality analysis failed", "error", err)
			}
		} else {
			outcome.ImageQuality = quality
		}
	}

	result, err := s.ValidateDocument(ctx, extracted)
	if err != nil {
		return nil, err
	}
	outcome.Result = result
	return outcome, nil
}

// ValidateDocument runs the four rule validators against already-extracted
// text and aggregates their statuses. Validators are pure functions of the
// text; they run concurrently and the aggregator waits for all of them.
func (s *Service) ValidateDocument(ctx context.Context, extracted models.ExtractedText) (*models.ValidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "validation.validate_document")
	defer span.End()

	// The logical clock drives rule semantics (expiry, future dates) and
	// CreatedAt; processing time is wall clock.
	now := requestcontext.Now(ctx)
	started := time.Now()

	result := &models.ValidationResult{
		ID:            id.NewValidationID(),
		OCRConfidence: extracted.Confidence,
		CreatedAt:     now,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		result.Notary = s.runCheck(ctx, models.CategoryNotary, func() models.CheckResult {
			return rules.CheckNotary(extracted.Text, now)
		})
		return nil
	})
	g.Go(func() error {
		result.Witness = s.runCheck(ctx, models.CategoryWitness, func() models.CheckResult {
			return rules.CheckWitnesses(extracted.Text)
		})
		return nil
	})
	g.Go(func() error {
		result.Verbiage = s.runCheck(ctx, models.CategoryVerbiage, func() models.CheckResult {
			return rules.CheckVerbiage(extracted.Text)
		})
		return nil
	})
	g.Go(func() error {
		result.Supplementary = s.runCheck(ctx, models.CategorySupplementary, func() models.CheckResult {
			return rules.CheckSupplementary(extracted.Text, now)
		})
		return nil
	})
	// Group goroutines only signal completion; checks never return errors.
	_ = g.Wait()

	result.Overall = aggregate.FromChecks(result.Notary, result.Witness, result.Verbiage)
	result.ProcessingTimeMS = time.Since(started).Milliseconds()

	span.SetAttributes(attribute.String("validation.overall", string(result.Overall)))

	if s.metrics != nil {
		s.metrics.ObserveValidation(string(result.Overall), time.Since(started))
	}

	ports.LogAudit(ctx, s.logger, s.auditPublisher, audit.Event{
		Category: audit.CategoryCompliance,
		UserID:   requestcontext.UserID(ctx),
		Action:   string(audit.EventValidationCompleted),
		Decision: string(result.Overall),
	},
		"validation_id", result.ID.String(),
		"overall", result.Overall,
		"ocr_confidence", result.OCRConfidence,
	)

	return result, nil
}

// runCheck shields the pipeline from a panicking validator: the offending
// category is forced to not_checked with an issue noting the internal
// failure, and the aggregator's absence-is-fail rule applies.
func (s *Service) runCheck(ctx context.Context, category models.CheckCategory, fn func() models.CheckResult) (result models.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			if s.metrics != nil {
				s.metrics.IncValidatorAnomaly(string(category))
			}
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "rule validator panicked",
					"category", category, "panic", fmt.Sprint(r))
			}
			result = models.CheckResult{
				Category: category,
				Status:   models.StatusNotChecked,
				Issues:   []string{fmt.Sprintf("internal error during %s check", category)},
			}
		}
	}()
	return fn()
}
