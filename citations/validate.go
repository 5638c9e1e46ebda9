package citations

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/richinex/inquest/index"
)

// Fetcher resolves a cited source identifier to its full document text.
// Returning an error means the source store was unreachable; an unknown or
// malformed identifier should yield empty text instead, which fails the
// quote check on its own.
type Fetcher func(ctx context.Context, sourceDocID string) (string, error)

// Validator checks that every structured citation in a draft answer quotes
// its source verbatim. Source text is fetched once per identifier and
// cached, so re-validating an unchanged draft is idempotent and cheap.
// Not safe for concurrent use; create one per turn.
type Validator struct {
	fetch Fetcher
	cache map[string]string
}

// NewValidator creates a validator backed by the given source fetcher.
func NewValidator(fetch Fetcher) *Validator {
	return &Validator{
		fetch: fetch,
		cache: make(map[string]string),
	}
}

// Validate extracts citations from text and checks each quote against its
// source. It returns ok plus one human-readable line per failed citation.
// Citations with an empty source or quote are skipped, not failed. A
// fetch error aborts validation.
func (v *Validator) Validate(ctx context.Context, text string) (bool, []string, error) {
	var failures []string
	for _, c := range Extract(text) {
		source := strings.TrimSpace(c.SourceDocID)
		quote := strings.TrimSpace(c.Quote)
		if source == "" || quote == "" {
			continue
		}

		content, ok := v.cache[source]
		if !ok {
			fetched, err := v.fetch(ctx, source)
			if err != nil {
				return false, nil, fmt.Errorf("fetching source %s: %w", source, err)
			}
			v.cache[source] = fetched
			content = fetched
		}

		if !QuoteMatches(quote, content) {
			failures = append(failures, fmt.Sprintf("- source `%s` quote not found: %q", source, quotePreview(quote)))
		}
	}
	return len(failures) == 0, failures, nil
}

// QuoteMatches reports whether quote occurs in source. Both sides are
// stripped of control characters first. A literal containment check runs
// before the tolerant path, which collapses the quote's internal whitespace
// and matches each gap against any whitespace run, case-insensitively.
// This absorbs line wrapping and OCR spacing noise without matching
// different words.
func QuoteMatches(quote, source string) bool {
	quoteClean := strings.TrimSpace(index.SanitizeText(quote))
	sourceClean := index.SanitizeText(source)
	if quoteClean == "" || sourceClean == "" {
		return false
	}

	if strings.Contains(sourceClean, quoteClean) {
		return true
	}

	quoteCompact := strings.Join(strings.Fields(quoteClean), " ")
	if quoteCompact == "" {
		return false
	}
	pattern := strings.ReplaceAll(regexp.QuoteMeta(quoteCompact), " ", `\s+`)
	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return false
	}
	return re.MatchString(sourceClean)
}

func quotePreview(quote string) string {
	preview := strings.Join(strings.Fields(quote), " ")
	if len(preview) > 140 {
		preview = strings.TrimRight(preview[:137], " ") + "..."
	}
	return preview
}
