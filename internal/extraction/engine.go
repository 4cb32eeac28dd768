// Package extraction normalizes text-extraction backends (PDF text layers,
// OCR engines) behind one adapter so the validation pipeline sees a single
// {text, confidence} shape.
package extraction

import "context"

// Result is the raw output of an extraction engine. Confidence is on the
// engine's own 0-100 scale; engines that cannot score leave it at 0.
type Result struct {
	Text       string
	Confidence float64
}

// Engine is the provider contract: one document in, one result out.
// Implementations wrap PDF text extraction or remote/local OCR and may take
// seconds per call.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, data []byte) (Result, error)
}

// PlainTextEngine treats the input bytes as UTF-8 text. Used by the CLI for
// pre-extracted documents and by tests.
type PlainTextEngine struct{}

func (PlainTextEngine) Name() string { return "plaintext" }

func (PlainTextEngine) Recognize(_ context.Context, data []byte) (Result, error) {
	return Result{Text: string(data), Confidence: 100}, nil
}
