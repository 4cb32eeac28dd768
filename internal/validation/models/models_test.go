package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "poagate/pkg/domain-errors"
)

func TestNewExtractedText(t *testing.T) {
	cases := map[string]struct {
		in   float64
		want float64
	}{
		"in range":    {in: 87.5, want: 87.5},
		"above scale": {in: 120, want: 100},
		"negative":    {in: -1, want: 0},
		"nan":         {in: math.NaN(), want: 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := NewExtractedText("text", tc.in)
			assert.Equal(t, tc.want, got.Confidence)
			assert.Equal(t, "text", got.Text)
		})
	}
}

func TestNewCheckResult(t *testing.T) {
	t.Run("valid inputs", func(t *testing.T) {
		result, err := NewCheckResult(CategoryNotary, StatusPass, nil)
		require.NoError(t, err)
		assert.Equal(t, CategoryNotary, result.Category)
		assert.Equal(t, StatusPass, result.Status)
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := NewCheckResult(CheckCategory("signature"), StatusPass, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := NewCheckResult(CategoryNotary, Status("maybe"), nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestEnumValidity(t *testing.T) {
	for _, s := range []Status{StatusPass, StatusFail, StatusWarning, StatusNotChecked} {
		assert.True(t, s.IsValid(), "%s", s)
	}
	assert.False(t, Status("ok").IsValid())

	for _, c := range []CheckCategory{CategoryNotary, CategoryWitness, CategoryVerbiage, CategorySupplementary} {
		assert.True(t, c.IsValid(), "%s", c)
	}
	assert.False(t, CheckCategory("stamp").IsValid())

	assert.True(t, KindPDF.IsValid())
	assert.True(t, KindScannedImage.IsValid())
	assert.False(t, DocumentKind("docx").IsValid())
}
