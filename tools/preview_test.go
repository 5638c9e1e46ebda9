package tools

import (
	"strings"
	"testing"
)

func TestSummarizeOutputSearchStyle(t *testing.T) {
	output := strings.Join([]string{
		"[5 of 150 results]",
		"",
		"EFTA00000001.pdf (3 pages) http://viewer/f/aaa",
		"  > fragment about the **transfer**",
		"",
		"EFTA00000002.pdf (5 pages)",
		"",
		"EFTA00000003.pdf (? pages)",
		"",
		"EFTA00000004.pdf (2 pages)",
		"",
		"EFTA00000005.pdf (1 pages)",
	}, "\n")

	preview, truncated := SummarizeOutput(output, 12, 1400)
	if !strings.HasPrefix(preview, "[5 of 150 results]") {
		t.Errorf("header missing: %q", preview)
	}
	if !strings.Contains(preview, "Top matches:") {
		t.Errorf("expected match list: %q", preview)
	}
	if !strings.Contains(preview, "1. EFTA00000001.pdf (3 pages)") {
		t.Errorf("first match missing: %q", preview)
	}
	if !strings.Contains(preview, "fragment about the **transfer**") {
		t.Errorf("snippet missing: %q", preview)
	}
	if strings.Contains(preview, "EFTA00000004") {
		t.Error("preview should keep only the top three matches")
	}
	if !truncated {
		t.Error("dropping matches must report truncation")
	}
	if !strings.Contains(preview, "... and 2 more results.") {
		t.Errorf("overflow note missing: %q", preview)
	}
}

func TestSummarizeOutputPlainTextClamps(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, "line of plain output")
	}

	preview, truncated := SummarizeOutput(strings.Join(lines, "\n"), 5, 10_000)
	if !truncated {
		t.Error("expected truncation past maxLines")
	}
	if !strings.Contains(preview, "...[truncated for readability]...") {
		t.Errorf("truncation note missing: %q", preview)
	}
	if got := strings.Count(preview, "line of plain output"); got != 5 {
		t.Errorf("kept %d lines, want 5", got)
	}
}

func TestSummarizeOutputShortPassthrough(t *testing.T) {
	preview, truncated := SummarizeOutput("42 documents matching: alpha", 12, 1400)
	if truncated {
		t.Error("short output must not be truncated")
	}
	if preview != "42 documents matching: alpha" {
		t.Errorf("preview = %q", preview)
	}
}

func TestFormatCallSignatureHidesIntent(t *testing.T) {
	got := FormatCallSignature("search", map[string]any{
		"terms":  []any{"wire"},
		"intent": "<intent>secret rationale</intent>",
	})
	if strings.Contains(got, "intent") {
		t.Errorf("intent leaked: %q", got)
	}
	if !strings.HasPrefix(got, "search(") || !strings.Contains(got, "wire") {
		t.Errorf("signature = %q", got)
	}

	if got := FormatCallSignature("list", map[string]any{"intent": "<intent>x</intent>"}); got != "list()" {
		t.Errorf("intent-only signature = %q", got)
	}
}
