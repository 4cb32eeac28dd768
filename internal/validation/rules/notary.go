package rules

import (
	"regexp"
	"time"

	"poagate/internal/validation/models"
)

var (
	// Name after the office designation: "Notary Public: Jane Doe".
	notaryNameRE = regexp.MustCompile(`(?i:notary[ \t]+public)[ \t:,.-]*(` + nameToken + `)`)
	// Name in the acknowledgment clause: "before me, Jane Doe, ...".
	acknowledgedRE = regexp.MustCompile(`(?i:acknowledged[ \t]+before[ \t]+me|before[ \t]+me)[ \t,]*(` + nameToken + `)`)

	commissionNumberRE = regexp.MustCompile(`(?i:commission[ \t]*(?:number|no\.?|#))[ \t:#]*([0-9]{6,9})\b`)

	commissionExpiryRE = regexp.MustCompile(`(?i:commission[ \t]+expires?|expires?)`)

	// A state-of-commission token: "State of California", "commissioned in".
	commissionStateRE = regexp.MustCompile(`(?i:state[ \t]+of[ \t]+[A-Za-z]+|commissioned[ \t]+in)`)
)

// CheckNotary scans extracted text for a notary name, commission number and
// commission expiry, per the modeled jurisdiction's acknowledgment rules.
//
// An expired commission downgrades to warning rather than fail: current
// policy routes expirations to manual review. This precedence is
// intentional, not a downstream bug.
func CheckNotary(text string, now time.Time) models.CheckResult {
	details := &models.NotaryDetails{}
	result := models.CheckResult{
		Category: models.CategoryNotary,
		Notary:   details,
	}

	if m := notaryNameRE.FindStringSubmatch(text); m != nil {
		details.NotaryName = m[1]
	} else if m := acknowledgedRE.FindStringSubmatch(text); m != nil {
		details.NotaryName = m[1]
	}

	if m := commissionNumberRE.FindStringSubmatch(text); m != nil {
		details.CommissionNumber = m[1]
	}

	// CommissionExpiry is recorded whenever a date-like token was matched,
	// independent of the final status.
	var expired bool
	if loc := commissionExpiryRE.FindStringIndex(text); loc != nil {
		if d := dateNear(text, loc[1], 48); d != nil {
			details.CommissionExpiry = d
			expired = d.Before(now)
		}
	}

	if details.NotaryName == "" {
		result.Issues = append(result.Issues, "Notary name not found or not clearly visible")
	}
	if details.CommissionNumber == "" {
		result.Issues = append(result.Issues, "Notary commission number not found")
	}
	if expired {
		result.Issues = append(result.Issues, "Notary commission has expired")
	}

	switch {
	case details.NotaryName == "" || details.CommissionNumber == "":
		result.Status = models.StatusFail
	case expired:
		result.Status = models.StatusWarning
	case commissionStateRE.FindStringIndex(text) == nil:
		result.Status = models.StatusWarning
		result.Issues = append(result.Issues, "Notary validation requires manual verification")
	default:
		result.Status = models.StatusPass
	}

	details.IsValid = result.Status == models.StatusPass
	return result
}
