package models

import (
	"time"

	id "poagate/pkg/domain"
	dErrors "poagate/pkg/domain-errors"
)

// Status is the verdict of a single rule check or of a whole validation.
type Status string

const (
	StatusPass       Status = "pass"
	StatusFail       Status = "fail"
	StatusWarning    Status = "warning"
	StatusNotChecked Status = "not_checked"
)

// IsValid checks if the status is one of the supported enum values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPass, StatusFail, StatusWarning, StatusNotChecked:
		return true
	}
	return false
}

// CheckCategory identifies which rule produced a CheckResult.
type CheckCategory string

const (
	CategoryNotary        CheckCategory = "notary"
	CategoryWitness       CheckCategory = "witness"
	CategoryVerbiage      CheckCategory = "verbiage"
	CategorySupplementary CheckCategory = "supplementary"
)

// IsValid checks if the category is one of the supported enum values.
func (c CheckCategory) IsValid() bool {
	switch c {
	case CategoryNotary, CategoryWitness, CategoryVerbiage, CategorySupplementary:
		return true
	}
	return false
}

// POAType classifies the power-of-attorney durability qualifier.
type POAType string

const (
	POATypeDurable    POAType = "durable"
	POATypeNonDurable POAType = "non-durable"
	POATypeUnknown    POAType = "unknown"
)

// ExtractedText is the normalized output of the text-extraction backend.
// Confidence is 0-100; extraction backends that cannot report one use the
// conservative default 0.
type ExtractedText struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// CheckResult is a tagged union: Category names the variant and exactly one
// of the detail pointers is set. The aggregator only reads Status, keeping
// it decoupled from category-specific detail.
type CheckResult struct {
	Category CheckCategory `json:"category"`
	Status   Status        `json:"status"`
	Issues   []string      `json:"issues,omitempty"`

	Notary        *NotaryDetails        `json:"notary,omitempty"`
	Witness       *WitnessDetails       `json:"witness,omitempty"`
	Verbiage      *VerbiageDetails      `json:"verbiage,omitempty"`
	Supplementary *SupplementaryDetails `json:"supplementary,omitempty"`
}

// NotaryDetails carries what the notary check extracted from the text.
type NotaryDetails struct {
	NotaryName       string     `json:"notary_name,omitempty"`
	CommissionNumber string     `json:"commission_number,omitempty"`
	CommissionExpiry *time.Time `json:"commission_expiry,omitempty"`
	IsValid          bool       `json:"is_valid"`
}

// WitnessDetails carries witness counting output.
type WitnessDetails struct {
	WitnessCount      int      `json:"witness_count"`
	RequiredWitnesses int      `json:"required_witnesses"`
	WitnessNames      []string `json:"witness_names,omitempty"`
}

// PhraseMatch records whether one required phrase was found and where.
type PhraseMatch struct {
	Phrase string `json:"phrase"`
	Found  bool   `json:"found"`
	// Location is the matched excerpt, empty when the phrase was not found.
	Location string `json:"location,omitempty"`
}

// VerbiageDetails carries authorization-language analysis output.
type VerbiageDetails struct {
	HasCremationAuthority bool          `json:"has_cremation_authority"`
	POAType               POAType       `json:"poa_type"`
	RequiredPhrases       []PhraseMatch `json:"required_phrases"`
}

// SupplementaryDetails carries informational checks excluded from the
// overall verdict.
type SupplementaryDetails struct {
	ExecutionDate *time.Time `json:"execution_date,omitempty"`
	HasSignature  bool       `json:"has_signature"`
}

// ValidationResult aggregates the four rule checks into one record.
// Overall is always derived from the constituent statuses; it is never set
// independently of its inputs.
type ValidationResult struct {
	ID            id.ValidationID `json:"id"`
	Notary        CheckResult     `json:"notary"`
	Witness       CheckResult     `json:"witness"`
	Verbiage      CheckResult     `json:"verbiage"`
	Supplementary CheckResult     `json:"supplementary"`
	Overall       Status          `json:"overall"`
	OCRConfidence float64         `json:"ocr_confidence"`
	// ProcessingTimeMS measures the full orchestration run.
	ProcessingTimeMS int64     `json:"processing_time_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// DocumentKind distinguishes text-native uploads from scanned images.
type DocumentKind string

const (
	KindPDF          DocumentKind = "pdf"
	KindScannedImage DocumentKind = "scanned_image"
)

// IsValid checks if the document kind is one of the supported values.
func (k DocumentKind) IsValid() bool {
	return k == KindPDF || k == KindScannedImage
}

// Resolution describes pixel dimensions and the derived print density.
type Resolution struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Megapixels float64 `json:"megapixels"`
	DPI        int     `json:"dpi"`
}

// QualityScores are the normalized 0-1 sub-scores of image analysis.
type QualityScores struct {
	Sharpness  float64 `json:"sharpness"`
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
}

// ImageQuality is produced for scanned-image input only. It attaches to the
// document record and is not part of ValidationResult.
type ImageQuality struct {
	OverallScore    int           `json:"overall_score"`
	Resolution      Resolution    `json:"resolution"`
	ColorSpace      string        `json:"color_space"`
	Quality         QualityScores `json:"quality"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

// NewExtractedText validates and normalizes extraction output. Out-of-range
// confidence is clamped rather than rejected: backends disagree on scales and
// the conservative default matters more than strictness.
func NewExtractedText(text string, confidence float64) ExtractedText {
	if confidence < 0 || confidence != confidence { // NaN guard
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	return ExtractedText{Text: text, Confidence: confidence}
}

// NewCheckResult creates a CheckResult with invariant validation.
func NewCheckResult(category CheckCategory, status Status, issues []string) (*CheckResult, error) {
	if !category.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid check category")
	}
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid check status")
	}
	return &CheckResult{Category: category, Status: status, Issues: issues}, nil
}
