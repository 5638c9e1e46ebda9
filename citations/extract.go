// Package citations locates structured citation objects embedded in model
// answer text and verifies their quotes against source documents.
package citations

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Citation is the self-contained JSON object the model embeds in answers:
//
//	{"source_doc_id": "...", "page_number": "...", "exact_quote_snippet": "..."}
type Citation struct {
	SourceDocID string
	PageNumber  string
	Quote       string
}

// Extract finds every syntactically valid citation object anywhere in text.
// It scans for '{', attempts a greedy JSON parse at each occurrence, and
// accepts the value only when all three citation keys are present with a
// non-empty source and quote. Everything else (markdown braces, unrelated
// JSON) is passed over one character at a time, so malformed output
// elsewhere in the answer cannot hide a valid citation.
func Extract(text string) []Citation {
	var out []Citation
	scan(text, func(segment string, c Citation) {
		out = append(out, c)
	})
	return out
}

// ExtractWithPlaceholders returns text with each citation replaced by a
// placeholder token, plus a table mapping tokens to render(citation).
// Callers use this to splice display markup in after markdown processing.
func ExtractWithPlaceholders(text string, render func(Citation) string) (string, map[string]string) {
	var b strings.Builder
	placeholders := make(map[string]string)
	idx := 0
	tail := scan(text, func(segment string, c Citation) {
		token := fmt.Sprintf("@@CITE_%d@@", idx)
		idx++
		b.WriteString(segment)
		b.WriteString(token)
		placeholders[token] = render(c)
	})
	b.WriteString(tail)
	return b.String(), placeholders
}

// RenderMarkdown is a plain-text rendering of a citation for terminal and
// transcript display.
func RenderMarkdown(c Citation) string {
	page := c.PageNumber
	if page == "" {
		page = "?"
	}
	return fmt.Sprintf("[citation: %s, p.%s: %q]", c.SourceDocID, page, c.Quote)
}

// RenderAnswer replaces each embedded citation object in an answer with its
// RenderMarkdown form, leaving the rest of the text untouched.
func RenderAnswer(text string) string {
	var b strings.Builder
	tail := scan(text, func(segment string, c Citation) {
		b.WriteString(segment)
		b.WriteString(RenderMarkdown(c))
	})
	b.WriteString(tail)
	return b.String()
}

// scan walks text and invokes fn once per accepted citation with the
// in-between segment preceding it, returning the tail after the last
// citation. Advancement rules: past the citation's end offset on accept,
// one character otherwise.
func scan(text string, fn func(segment string, c Citation)) string {
	i := 0
	last := 0
	for i < len(text) {
		if text[i] != '{' {
			i++
			continue
		}

		obj, end, ok := decodeObjectAt(text[i:])
		if !ok {
			i++
			continue
		}
		c, valid := asCitation(obj)
		if !valid {
			i++
			continue
		}

		fn(text[last:i], c)
		i += end
		last = i
	}
	return text[last:]
}

// decodeObjectAt greedily parses one JSON value at the start of s,
// returning the decoded object and the byte offset just past it.
func decodeObjectAt(s string) (map[string]any, int, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, 0, false
	}
	return obj, int(dec.InputOffset()), true
}

func asCitation(obj map[string]any) (Citation, bool) {
	sourceRaw, hasSource := obj["source_doc_id"]
	pageRaw, hasPage := obj["page_number"]
	quoteRaw, hasQuote := obj["exact_quote_snippet"]
	if !hasSource || !hasPage || !hasQuote {
		return Citation{}, false
	}

	source := strings.TrimSpace(valueString(sourceRaw))
	quote := strings.TrimSpace(valueString(quoteRaw))
	if source == "" || quote == "" {
		return Citation{}, false
	}

	return Citation{
		SourceDocID: source,
		PageNumber:  strings.TrimSpace(valueString(pageRaw)),
		Quote:       quote,
	}, true
}

func valueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
