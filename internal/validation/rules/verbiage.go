package rules

import (
	"fmt"
	"regexp"
	"strings"

	"poagate/internal/validation/models"
)

// JurisdictionIssue is raised when the document carries no California marker
// or cites another state's law.
const JurisdictionIssue = "Document may not be California-specific"

// cremationAuthorityPhrases: presence of any one constitutes explicit
// disposition authorization language.
var cremationAuthorityPhrases = []string{
	"authorize the cremation",
	"authority to cremate",
	"cremation of my remains",
	"cremation and disposition",
	"disposition of remains",
	"disposition of my remains",
	"right to control the disposition",
}

// requiredLegalPhrases must all appear for the document to qualify as a POA.
var requiredLegalPhrases = []string{
	"power of attorney",
	"principal",
	"agent",
}

var (
	durableRE = regexp.MustCompile(
		`(?i:durable[^.\n]{0,60}power[ \t]+of[ \t]+attorney|power[ \t]+of[ \t]+attorney[^.\n]{0,60}durable)`)

	// Citation of a specific state's law, e.g. "under the laws of the State
	// of Nevada" or "pursuant to the Probate Code of Texas".
	stateCitationRE = regexp.MustCompile(
		`(?i:laws?[ \t]+of[ \t]+(?:the[ \t]+)?state[ \t]+of|probate[ \t]+code[ \t]+of|health[ \t]+and[ \t]+safety[ \t]+code[ \t]+of)[ \t]+([A-Za-z]+(?:[ \t]+[A-Za-z]+)?)`)
)

// CheckVerbiage verifies cremation/disposition authorization language and
// the fixed required-phrase list, then checks the jurisdiction marker.
func CheckVerbiage(text string) models.CheckResult {
	details := &models.VerbiageDetails{
		POAType: classifyPOAType(text),
	}
	result := models.CheckResult{
		Category: models.CategoryVerbiage,
		Verbiage: details,
	}

	for _, phrase := range cremationAuthorityPhrases {
		if containsFold(text, phrase) {
			details.HasCremationAuthority = true
			break
		}
	}

	missingRequired := false
	lower := strings.ToLower(text)
	for _, phrase := range requiredLegalPhrases {
		match := models.PhraseMatch{Phrase: phrase}
		if idx := strings.Index(lower, phrase); idx >= 0 {
			match.Found = true
			match.Location = excerpt(text, idx, idx+len(phrase), 30)
		} else {
			missingRequired = true
			result.Issues = append(result.Issues, fmt.Sprintf("Required phrase missing: %q", phrase))
		}
		details.RequiredPhrases = append(details.RequiredPhrases, match)
	}

	if !details.HasCremationAuthority {
		result.Issues = append(result.Issues, "No explicit cremation authority found in document")
	}

	switch {
	case !details.HasCremationAuthority || missingRequired:
		result.Status = models.StatusFail
	case jurisdictionMismatch(text):
		result.Status = models.StatusWarning
		result.Issues = append(result.Issues, JurisdictionIssue)
	default:
		result.Status = models.StatusPass
	}

	return result
}

// classifyPOAType reads the durability qualifier. "non-durable" wins over a
// bare "durable" substring match.
func classifyPOAType(text string) models.POAType {
	if containsFold(text, "non-durable") || containsFold(text, "nondurable") {
		return models.POATypeNonDurable
	}
	if durableRE.FindStringIndex(text) != nil {
		return models.POATypeDurable
	}
	return models.POATypeUnknown
}

// jurisdictionMismatch reports true when the document carries no California
// marker at all, or when it cites a different state's law.
func jurisdictionMismatch(text string) bool {
	if !containsFold(text, "california") {
		return true
	}
	for _, m := range stateCitationRE.FindAllStringSubmatch(text, -1) {
		state := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
		// The capture is greedy (up to two words); a trailing word after
		// "California" must not read as a foreign state.
		if !strings.HasPrefix(state, "california") {
			return true
		}
	}
	return false
}
