// Package extract scans free text for dollar-amount literals.
//
// The accepted grammar is "$" followed by digit groups optionally separated by
// thousands commas, optionally followed by a decimal point and exactly two
// digits. The grammar trades recall for precision: "$1,23" (a short group
// after the separator) and "$9.5" (one fractional digit) are deliberately not
// matched, and neither is an amount embedded in a larger alphanumeric token.
package extract

import (
	"log/slog"
	"regexp"

	"mailledger/internal/core"
)

var (
	// candidateRe over-matches on purpose: it grabs the "$" plus everything
	// that could belong to the literal, including trailing word characters,
	// so that an embedded amount like "$12xyz" fails strict validation
	// instead of yielding a spurious "$12".
	candidateRe = regexp.MustCompile(`\$[0-9][0-9A-Za-z_,.]*`)

	// strictRe is the full grammar: grouped digits with comma separators or a
	// plain digit run, with an optional two-digit fraction.
	strictRe = regexp.MustCompile(`^\$(?:[0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)(?:\.[0-9]{2})?$`)

	trailingPunct = regexp.MustCompile(`[.,]+$`)
)

// Amounts returns every well-formed currency literal in text, left to right.
// The scan is pure: re-running it on the same text yields the same tokens.
// Text with no matches yields an empty result, not an error.
func Amounts(text string) []string {
	var tokens []string
	for _, loc := range candidateRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 && isWordByte(text[loc[0]-1]) {
			// "abc$12" is part of a larger token, not a currency literal.
			continue
		}
		candidate := trailingPunct.ReplaceAllString(text[loc[0]:loc[1]], "")
		if strictRe.MatchString(candidate) {
			tokens = append(tokens, candidate)
		}
	}
	return tokens
}

// ParseAll extracts every currency literal from text and normalizes it,
// skipping malformed tokens rather than aborting the scan. It returns the
// parsed amounts and the number of tokens that were skipped.
func ParseAll(text string) ([]core.Money, int) {
	tokens := Amounts(text)
	amounts := make([]core.Money, 0, len(tokens))
	skipped := 0
	for _, tok := range tokens {
		amt, err := core.ParseAmount(tok)
		if err != nil {
			slog.Debug("Skipping malformed amount token", "token", tok, "error", err)
			skipped++
			continue
		}
		amounts = append(amounts, amt)
	}
	return amounts, skipped
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}
