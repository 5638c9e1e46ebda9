package tools

import (
	"strings"
	"testing"
)

func TestValidateIntent(t *testing.T) {
	normalized, body, err := ValidateIntent("<intent>find   the\napproval  memo</intent>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if normalized != "<intent>find the approval memo</intent>" {
		t.Errorf("normalized = %q", normalized)
	}
	if body != "find the approval memo" {
		t.Errorf("body = %q", body)
	}
}

func TestValidateIntentRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"missing", "", "missing required `intent`"},
		{"bare text", "find the memo", "invalid `intent` format"},
		{"unclosed", "<intent>find the memo", "invalid `intent` format"},
		{"trailing text", "<intent>find</intent> extra", "invalid `intent` format"},
		{"whitespace body", "<intent>   </intent>", "empty `intent`"},
		{"too long", "<intent>" + strings.Repeat("x ", MaxIntentBodyChars) + "</intent>", "too long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ValidateIntent(tc.in)
			if err == nil {
				t.Fatalf("expected error for %q", tc.in)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want substring %q", err.Error(), tc.want)
			}
		})
	}
}

func TestSummarizeIntent(t *testing.T) {
	if got := SummarizeIntent("<intent>short rationale</intent>", 120); got != "short rationale" {
		t.Errorf("SummarizeIntent = %q", got)
	}
	long := "<intent>" + strings.Repeat("word ", 40) + "</intent>"
	got := SummarizeIntent(long, 30)
	if len(got) > 30 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncated summary = %q (len %d)", got, len(got))
	}
	if got := SummarizeIntent("no tags here", 120); got != "Missing or invalid intent" {
		t.Errorf("invalid intent summary = %q", got)
	}
}
