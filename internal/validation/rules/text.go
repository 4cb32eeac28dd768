// Package rules implements the jurisdiction rule validators. Each check is a
// pure function of the extracted text (plus the caller's clock where expiry
// matters); they share no state and may run concurrently.
package rules

import (
	"regexp"
	"strings"
	"time"
)

// nameToken matches a two- or three-word capitalized name.
const nameToken = `[A-Z][a-zA-Z'.-]+(?:[ \t]+[A-Z][a-zA-Z'.-]+){1,2}`

// dateTokenRE matches the date spellings that show up in notarial blocks:
// 01/01/2020, 1-5-2020, 2020-01-05, January 5, 2020, Jan 5 2020.
var dateTokenRE = regexp.MustCompile(
	`\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{2}-\d{2}|[A-Z][a-z]+\.?[ \t]+\d{1,2},?[ \t]+\d{4}`)

var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"2006-01-02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"Jan. 2, 2006",
	"Jan. 2 2006",
}

// parseDate tries the known layouts against a date token. Returns nil when
// nothing parses.
func parseDate(token string) *time.Time {
	token = strings.TrimSpace(token)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return &t
		}
	}
	return nil
}

// dateNear scans a window after position idx for a parseable date token.
func dateNear(text string, idx, window int) *time.Time {
	end := idx + window
	if end > len(text) {
		end = len(text)
	}
	token := dateTokenRE.FindString(text[idx:end])
	if token == "" {
		return nil
	}
	return parseDate(token)
}

// excerpt returns the text surrounding [start, end), clipped to radius runes
// on each side, for use as a match location.
func excerpt(text string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.Join(strings.Fields(text[lo:hi]), " ")
}

// containsFold reports whether text contains phrase, case-insensitively.
func containsFold(text, phrase string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}
