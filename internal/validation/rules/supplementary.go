package rules

import (
	"regexp"
	"strconv"
	"time"

	"poagate/internal/validation/models"
)

var (
	executionDateRE = regexp.MustCompile(`(?i:dated|executed[ \t]+(?:on|this)|date[ \t]*:)`)

	// "this 5th day of March, 2024"
	dayOfRE = regexp.MustCompile(`(?i:this[ \t]+)(\d{1,2})(?:st|nd|rd|th)?[ \t]+(?i:day[ \t]+of[ \t]+)([A-Z][a-z]+),?[ \t]+(\d{4})`)

	signatureRE = regexp.MustCompile(`(?i:signature[ \t]+of[ \t]+(?:the[ \t]+)?principal|/s/|signed[ \t:,]|principal['’]s[ \t]+signature)`)
)

// CheckSupplementary runs the informational checks: a parseable execution
// date that is not in the future, and a principal signature marker. The
// aggregator excludes this category from the overall verdict.
func CheckSupplementary(text string, now time.Time) models.CheckResult {
	details := &models.SupplementaryDetails{}
	result := models.CheckResult{
		Category:      models.CategorySupplementary,
		Supplementary: details,
	}

	details.ExecutionDate = findExecutionDate(text)
	details.HasSignature = signatureRE.FindStringIndex(text) != nil

	if details.ExecutionDate == nil {
		result.Issues = append(result.Issues, "Document execution date not found")
	} else if details.ExecutionDate.After(now) {
		result.Issues = append(result.Issues, "Document date is in the future")
	}
	if !details.HasSignature {
		result.Issues = append(result.Issues, "Principal signature not found")
	}

	if len(result.Issues) == 0 {
		result.Status = models.StatusPass
	} else {
		result.Status = models.StatusWarning
	}

	return result
}

func findExecutionDate(text string) *time.Time {
	if loc := executionDateRE.FindStringIndex(text); loc != nil {
		if d := dateNear(text, loc[1], 48); d != nil {
			return d
		}
	}
	if m := dayOfRE.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		if month := monthByName(m[2]); month != 0 && day >= 1 && day <= 31 {
			d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

func monthByName(name string) time.Month {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m
		}
	}
	return 0
}
