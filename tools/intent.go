package tools

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/richinex/inquest/index"
)

// MaxIntentBodyChars bounds the rationale body after whitespace collapsing.
const MaxIntentBodyChars = 220

var intentBlockRE = regexp.MustCompile(`(?s)^<intent>(.+)</intent>$`)

// ValidateIntent checks the mandatory rationale argument carried by every
// tool call. The value must be exactly `<intent>...</intent>` with a
// non-empty body. The returned normalized form has the body's whitespace
// collapsed to single spaces.
func ValidateIntent(value string) (normalized, body string, err error) {
	raw := strings.TrimSpace(index.SanitizeText(value))
	if raw == "" {
		return "", "", errors.New("missing required `intent`; include `<intent>...</intent>` in every tool call.")
	}

	m := intentBlockRE.FindStringSubmatch(raw)
	if m == nil {
		return "", "", errors.New("invalid `intent` format; use exactly `<intent>...</intent>`.")
	}

	body = strings.Join(strings.Fields(m[1]), " ")
	if body == "" {
		return "", "", errors.New("empty `intent`; include a short rationale.")
	}
	if len(body) > MaxIntentBodyChars {
		return "", "", fmt.Errorf("`intent` text too long; keep it under %d characters.", MaxIntentBodyChars)
	}

	return "<intent>" + body + "</intent>", body, nil
}

// SummarizeIntent reduces an intent block to a short display string.
func SummarizeIntent(intentBlock string, maxChars int) string {
	_, body, err := ValidateIntent(intentBlock)
	if err != nil {
		return "Missing or invalid intent"
	}
	if maxChars > 3 && len(body) > maxChars {
		body = strings.TrimRight(body[:maxChars-3], " ") + "..."
	}
	return body
}
