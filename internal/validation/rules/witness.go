package rules

import (
	"fmt"
	"regexp"
	"strings"

	"poagate/internal/validation/models"
	pstrings "poagate/pkg/platform/strings"
)

// RequiredWitnesses is the fixed witness count for the modeled jurisdiction.
const RequiredWitnesses = 2

// witnessNameRE extracts a name-like token after a witness designation on a
// single line: "Witness: John Smith", "Witness Signature - Mary Jones".
var witnessNameRE = regexp.MustCompile(`(?i:witness(?:[ \t]+(?:signature|name))?)[ \t:,.#-]*(` + nameToken + `)`)

// Relationship markers that disqualify a witness in the modeled jurisdiction.
var prohibitedMarkers = []string{"spouse", "agent", "attorney-in-fact", "beneficiary"}

// CheckWitnesses counts witness mentions line by line and flags disqualifying
// relationships.
//
// Known limitation: the pattern is deliberately broad and can overcount when
// a fragment on a witness line looks name-like. Deduplication is by exact
// name only. Kept as the current observed contract pending product sign-off.
func CheckWitnesses(text string) models.CheckResult {
	details := &models.WitnessDetails{
		RequiredWitnesses: RequiredWitnesses,
	}
	result := models.CheckResult{
		Category: models.CategoryWitness,
		Witness:  details,
	}

	var names []string
	var prohibited []string

	for _, line := range strings.Split(text, "\n") {
		if !containsFold(line, "witness") {
			continue
		}
		for _, m := range witnessNameRE.FindAllStringSubmatch(line, -1) {
			name := m[1]
			names = append(names, name)
			if marker := prohibitedMarker(line); marker != "" {
				prohibited = append(prohibited, fmt.Sprintf("Prohibited witness: %s (%s)", name, marker))
			}
		}
	}

	details.WitnessNames = pstrings.DedupeAndTrim(names)
	details.WitnessCount = len(details.WitnessNames)

	result.Issues = append(result.Issues, pstrings.DedupeAndTrim(prohibited)...)

	switch {
	case details.WitnessCount < RequiredWitnesses:
		result.Status = models.StatusFail
		result.Issues = append(result.Issues, fmt.Sprintf(
			"Insufficient witnesses found. Required: %d, Found: %d",
			RequiredWitnesses, details.WitnessCount))
	case len(prohibited) > 0:
		// A prohibited witness downgrades an otherwise-passing count.
		result.Status = models.StatusWarning
	default:
		result.Status = models.StatusPass
	}

	return result
}

func prohibitedMarker(line string) string {
	for _, marker := range prohibitedMarkers {
		if containsFold(line, marker) {
			return marker
		}
	}
	return ""
}
