package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poagate/internal/validation/models"
)

const validVerbiage = "Durable Power of Attorney\n" +
	"I, the principal, appoint my agent to act on my behalf.\n" +
	"My agent shall have the authority to cremate my remains\n" +
	"under the laws of the State of California.\n"

func TestCheckVerbiage(t *testing.T) {
	t.Run("authority plus required phrases in California passes", func(t *testing.T) {
		result := CheckVerbiage(validVerbiage)
		assert.Equal(t, models.StatusPass, result.Status)
		assert.Empty(t, result.Issues)

		require.NotNil(t, result.Verbiage)
		assert.True(t, result.Verbiage.HasCremationAuthority)
		assert.Equal(t, models.POATypeDurable, result.Verbiage.POAType)

		require.Len(t, result.Verbiage.RequiredPhrases, 3)
		for _, match := range result.Verbiage.RequiredPhrases {
			assert.True(t, match.Found, "phrase %q", match.Phrase)
			assert.NotEmpty(t, match.Location, "phrase %q", match.Phrase)
		}
	})

	t.Run("missing cremation authority fails", func(t *testing.T) {
		text := "Power of Attorney. I, the principal, appoint my agent.\n" +
			"State of California.\n"

		result := CheckVerbiage(text)
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Issues, "No explicit cremation authority found in document")
		assert.False(t, result.Verbiage.HasCremationAuthority)
	})

	t.Run("missing required phrase fails with the phrase named", func(t *testing.T) {
		text := "I authorize the cremation of my remains. Power of attorney granted to my agent.\n" +
			"California law applies.\n"

		result := CheckVerbiage(text)
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Issues, `Required phrase missing: "principal"`)
	})

	t.Run("empty text fails with every issue", func(t *testing.T) {
		result := CheckVerbiage("")
		assert.Equal(t, models.StatusFail, result.Status)
		assert.Contains(t, result.Issues, "No explicit cremation authority found in document")
		assert.Contains(t, result.Issues, `Required phrase missing: "power of attorney"`)
		assert.Contains(t, result.Issues, `Required phrase missing: "principal"`)
		assert.Contains(t, result.Issues, `Required phrase missing: "agent"`)
		assert.Equal(t, models.POATypeUnknown, result.Verbiage.POAType)
	})

	t.Run("no California marker warns", func(t *testing.T) {
		text := "Durable Power of Attorney. I, the principal, appoint my agent\n" +
			"with authority to cremate my remains.\n"

		result := CheckVerbiage(text)
		assert.Equal(t, models.StatusWarning, result.Status)
		assert.Contains(t, result.Issues, JurisdictionIssue)
	})

	t.Run("citation of another state's law warns", func(t *testing.T) {
		text := "Durable Power of Attorney executed in California.\n" +
			"I, the principal, appoint my agent with authority to cremate my remains\n" +
			"under the laws of the State of Nevada.\n"

		result := CheckVerbiage(text)
		assert.Equal(t, models.StatusWarning, result.Status)
		assert.Contains(t, result.Issues, JurisdictionIssue)
	})

	t.Run("California citation followed by another word is not a mismatch", func(t *testing.T) {
		text := "Durable Power of Attorney. I, the principal, appoint my agent\n" +
			"with authority to cremate my remains.\n" +
			"The laws of the State of California shall govern this instrument.\n"

		result := CheckVerbiage(text)
		assert.Equal(t, models.StatusPass, result.Status)
	})
}

func TestClassifyPOAType(t *testing.T) {
	t.Run("durable", func(t *testing.T) {
		assert.Equal(t, models.POATypeDurable, classifyPOAType("This Durable Power of Attorney remains effective"))
	})

	t.Run("durable qualifier after the noun", func(t *testing.T) {
		assert.Equal(t, models.POATypeDurable, classifyPOAType("Power of Attorney, which shall be durable"))
	})

	t.Run("non-durable wins over the durable substring", func(t *testing.T) {
		assert.Equal(t, models.POATypeNonDurable, classifyPOAType("This Non-Durable Power of Attorney terminates upon incapacity"))
	})

	t.Run("unqualified is unknown", func(t *testing.T) {
		assert.Equal(t, models.POATypeUnknown, classifyPOAType("Power of Attorney"))
	})
}
