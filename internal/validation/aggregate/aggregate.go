// Package aggregate derives the overall verdict from the core rule checks.
package aggregate

import (
	"poagate/internal/validation/models"
)

// Overall combines core check statuses into one verdict, ignoring
// not_checked entries. Precedence: fail > warning > pass. If no statuses
// remain after filtering, the verdict is fail: absence of evidence never
// silently passes.
//
// Supplementary checks are informational and must not be passed in.
func Overall(statuses ...models.Status) models.Status {
	remaining := 0
	sawWarning := false

	for _, s := range statuses {
		if s == models.StatusNotChecked {
			continue
		}
		remaining++
		switch s {
		case models.StatusFail:
			return models.StatusFail
		case models.StatusWarning:
			sawWarning = true
		}
	}

	if remaining == 0 {
		return models.StatusFail
	}
	if sawWarning {
		return models.StatusWarning
	}
	return models.StatusPass
}

// FromChecks applies Overall to the three core check results.
func FromChecks(notary, witness, verbiage models.CheckResult) models.Status {
	return Overall(notary.Status, witness.Status, verbiage.Status)
}
