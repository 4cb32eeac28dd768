package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poagate/internal/validation/models"
)

var notaryNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func TestCheckNotary(t *testing.T) {
	t.Run("complete acknowledgment passes", func(t *testing.T) {
		text := "State of California, County of Los Angeles\n" +
			"Notary Public: Jane Doe\n" +
			"Commission Number: 1234567\n" +
			"Commission Expires: 01/01/2026\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusPass, result.Status)
		assert.Empty(t, result.Issues)

		require.NotNil(t, result.Notary)
		assert.Equal(t, "Jane Doe", result.Notary.NotaryName)
		assert.Equal(t, "1234567", result.Notary.CommissionNumber)
		require.NotNil(t, result.Notary.CommissionExpiry)
		assert.Equal(t, 2026, result.Notary.CommissionExpiry.Year())
		assert.True(t, result.Notary.IsValid)
	})

	t.Run("expired commission warns but records the expiry", func(t *testing.T) {
		text := "State of California\n" +
			"Notary Public: Jane Doe\n" +
			"Commission Number: 1234567\n" +
			"Commission Expires: 01/01/2020\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusWarning, result.Status)
		assert.Contains(t, result.Issues, "Notary commission has expired")

		require.NotNil(t, result.Notary.CommissionExpiry)
		assert.Equal(t, 2020, result.Notary.CommissionExpiry.Year())
		assert.False(t, result.Notary.IsValid)
	})

	t.Run("missing name fails", func(t *testing.T) {
		text := "Commission Number: 1234567\nState of California\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Issues, "Notary name not found or not clearly visible")
		assert.Empty(t, result.Notary.NotaryName)
	})

	t.Run("missing commission number fails", func(t *testing.T) {
		text := "Notary Public: Jane Doe\nState of California\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Issues, "Notary commission number not found")
	})

	t.Run("empty text fails with both issues", func(t *testing.T) {
		result := CheckNotary("", notaryNow)
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Len(t, result.Issues, 2)
	})

	t.Run("name from acknowledgment clause", func(t *testing.T) {
		text := "Acknowledged before me, Robert Q. Smith, a notarial officer\n" +
			"Commission No. 7654321\nState of California\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, "Robert Q. Smith", result.Notary.NotaryName)
	})

	t.Run("no commission state token requires manual verification", func(t *testing.T) {
		text := "Notary Public: Jane Doe\nCommission Number: 1234567\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusWarning, result.Status)
		assert.Contains(t, result.Issues, "Notary validation requires manual verification")
	})

	t.Run("commission number accepts no-dot and hash spellings", func(t *testing.T) {
		for _, text := range []string{
			"Notary Public: Jane Doe\nCommission No 2345678\nState of California\n",
			"Notary Public: Jane Doe\nCommission # 2345678\nState of California\n",
		} {
			result := CheckNotary(text, notaryNow)
			assert.Equal(t, "2345678", result.Notary.CommissionNumber)
		}
	})

	t.Run("short digit runs are not commission numbers", func(t *testing.T) {
		text := "Notary Public: Jane Doe\nCommission Number: 123\nState of California\n"

		result := CheckNotary(text, notaryNow)
		assert.Empty(t, result.Notary.CommissionNumber)
		assert.Equal(t, models.StatusFail, result.Status)
	})

	t.Run("expiry exactly now is not expired", func(t *testing.T) {
		text := "Notary Public: Jane Doe\nCommission Number: 1234567\n" +
			"Commission Expires: 06/01/2024\nState of California\n"

		result := CheckNotary(text, notaryNow)
		assert.Equal(t, models.StatusPass, result.Status)
	})
}
