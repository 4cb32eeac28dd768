package extraction

import (
	"context"
	"fmt"
	"log/slog"

	"poagate/internal/validation/models"
	dErrors "poagate/pkg/domain-errors"
)

// Adapter wraps an Engine and normalizes its output to ExtractedText.
// Out-of-range confidence is clamped to 0-100; engine failure surfaces as a
// coded unprocessable error, fatal to the pipeline.
type Adapter struct {
	engine Engine
	logger *slog.Logger
}

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func New(engine Engine, opts ...Option) (*Adapter, error) {
	if engine == nil {
		return nil, fmt.Errorf("extraction engine is required")
	}

	a := &Adapter{engine: engine}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Extract runs the engine and normalizes its result.
func (a *Adapter) Extract(ctx context.Context, data []byte) (models.ExtractedText, error) {
	if len(data) == 0 {
		return models.ExtractedText{}, dErrors.New(dErrors.CodeInvalidInput, "document data is empty")
	}

	res, err := a.engine.Recognize(ctx, data)
	if err != nil {
		return models.ExtractedText{}, dErrors.Wrap(err, dErrors.CodeUnprocessable,
			fmt.Sprintf("%s extraction failed", a.engine.Name()))
	}

	extracted := models.NewExtractedText(res.Text, res.Confidence)
	if a.logger != nil {
		a.logger.DebugContext(ctx, "text extracted",
			"engine", a.engine.Name(),
			"chars", len(extracted.Text),
			"confidence", extracted.Confidence,
		)
	}
	return extracted, nil
}
