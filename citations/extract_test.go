package citations

import (
	"strings"
	"testing"
)

func TestExtractFindsEmbeddedCitation(t *testing.T) {
	text := `The transfer was approved on March 3.

{"source_doc_id": "EFTA02290848", "page_number": "4", "exact_quote_snippet": "approved the wire transfer"}

Further context follows.`

	citations := Extract(text)
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	c := citations[0]
	if c.SourceDocID != "EFTA02290848" || c.PageNumber != "4" || c.Quote != "approved the wire transfer" {
		t.Errorf("unexpected citation: %+v", c)
	}
}

func TestExtractIgnoresUnrelatedJSON(t *testing.T) {
	text := `Some config: {"retries": 3, "verbose": true} and a struct literal {x: 1}.
A partial object {"source_doc_id": "EFTA02290848"} lacks the other keys.`

	if citations := Extract(text); len(citations) != 0 {
		t.Errorf("expected no citations, got %+v", citations)
	}
}

func TestExtractRequiresNonEmptySourceAndQuote(t *testing.T) {
	text := `{"source_doc_id": "", "page_number": "1", "exact_quote_snippet": "words"}
{"source_doc_id": "EFTA02290848", "page_number": "1", "exact_quote_snippet": "  "}`

	if citations := Extract(text); len(citations) != 0 {
		t.Errorf("expected no citations, got %+v", citations)
	}
}

func TestExtractMultipleInOrder(t *testing.T) {
	text := `First {"source_doc_id": "EFTA00000001", "page_number": 2, "exact_quote_snippet": "one"} ` +
		`then {"source_doc_id": "EFTA00000002", "page_number": null, "exact_quote_snippet": "two"}.`

	citations := Extract(text)
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].SourceDocID != "EFTA00000001" || citations[1].SourceDocID != "EFTA00000002" {
		t.Errorf("citations out of order: %+v", citations)
	}
	// Non-string page values are coerced to display text.
	if citations[0].PageNumber != "2" {
		t.Errorf("numeric page = %q, want \"2\"", citations[0].PageNumber)
	}
	if citations[1].PageNumber != "" {
		t.Errorf("null page = %q, want empty", citations[1].PageNumber)
	}
}

func TestExtractWithPlaceholders(t *testing.T) {
	text := `Before {"source_doc_id": "EFTA00000001", "page_number": "1", "exact_quote_snippet": "one"} after.`

	replaced, table := ExtractWithPlaceholders(text, func(c Citation) string {
		return "<" + c.SourceDocID + ">"
	})
	if replaced != "Before @@CITE_0@@ after." {
		t.Errorf("replaced = %q", replaced)
	}
	if table["@@CITE_0@@"] != "<EFTA00000001>" {
		t.Errorf("table = %v", table)
	}
}

func TestRenderAnswer(t *testing.T) {
	text := `The memo {"source_doc_id": "EFTA00000001", "page_number": "3", "exact_quote_snippet": "was shredded"} confirms it.`

	rendered := RenderAnswer(text)
	if !strings.Contains(rendered, `[citation: EFTA00000001, p.3: "was shredded"]`) {
		t.Errorf("rendered = %q", rendered)
	}
	if strings.Contains(rendered, "source_doc_id") {
		t.Error("raw citation JSON leaked into rendered answer")
	}
}

func TestRenderMarkdownMissingPage(t *testing.T) {
	got := RenderMarkdown(Citation{SourceDocID: "EFTA00000001", Quote: "q"})
	if got != `[citation: EFTA00000001, p.?: "q"]` {
		t.Errorf("RenderMarkdown = %q", got)
	}
}
