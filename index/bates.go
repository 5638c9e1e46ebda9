// Archive identifier helpers.
//
// Documents carry a Bates-style display identifier: four uppercase letters
// followed by exactly eight digits (e.g. ABCD01234567). The index also
// addresses documents by an opaque 32-hex id.

package index

import (
	"path"
	"regexp"
	"strings"
)

var (
	batesRE      = regexp.MustCompile(`\b[A-Z]{4}[0-9]{8}\b`)
	batesExactRE = regexp.MustCompile(`^[A-Z]{4}[0-9]{8}$`)
	docIDRE      = regexp.MustCompile(`^[0-9a-f]{32}$`)

	controlCharsRE = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// NormalizeBates reduces any way of writing a document name (path, .pdf
// suffix, lowercase) to the canonical uppercase identifier form.
func NormalizeBates(value string) string {
	base := path.Base(strings.TrimSpace(value))
	if strings.EqualFold(path.Ext(base), ".pdf") {
		base = strings.TrimSuffix(base, path.Ext(base))
	}
	return strings.ToUpper(base)
}

// IsBatesNumber reports whether s is exactly a canonical display identifier.
func IsBatesNumber(s string) bool {
	return batesExactRE.MatchString(s)
}

// IsDocID reports whether s is an opaque 32-hex index id.
func IsDocID(s string) bool {
	return docIDRE.MatchString(s)
}

// BatesNumbersIn returns every display identifier mentioned in text,
// deduplicated in first-seen order.
func BatesNumbersIn(text string) []string {
	return UniqueOrdered(batesRE.FindAllString(text, -1))
}

// UniqueOrdered removes duplicates while preserving first-seen order.
func UniqueOrdered(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// SanitizeText strips ASCII control characters that OCR output and model
// text occasionally carry. Newlines and tabs survive.
func SanitizeText(s string) string {
	return controlCharsRE.ReplaceAllString(s, "")
}
