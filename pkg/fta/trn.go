package fta

import (
	"fmt"
	"regexp"
	"unicode"
)

// trnPattern: a UAE Tax Registration Number is exactly 15 digits.
var trnPattern = regexp.MustCompile(`^\d{15}$`)

// ValidTRN reports whether trn is a syntactically valid TRN (15 digits, nothing else).
func ValidTRN(trn string) bool {
	return trnPattern.MatchString(trn)
}

// ValidateTRN returns a descriptive error when trn is not exactly 15 digits.
func ValidateTRN(trn string) error {
	if trn == "" {
		return fmt.Errorf("fta: TRN is required")
	}
	if !trnPattern.MatchString(trn) {
		return fmt.Errorf("fta: TRN must be exactly 15 digits, got %q", trn)
	}
	return nil
}

// NormalizeTRN strips spaces, dots and dashes so "100-123456-700-003"
// and "100123456700003" compare equal. Non-digit characters other than
// separators are kept, so an invalid TRN stays invalid after normalization.
func NormalizeTRN(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), r == '.', r == '-':
			continue
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
