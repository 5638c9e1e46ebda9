package tools

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/richinex/inquest/index"
)

var (
	resultHeaderRE = regexp.MustCompile(`^\[\d+\s+of\s+.*\s+results\]$`)
	docSummaryRE   = regexp.MustCompile(`^(.+?) \((\d+|\?) pages(?:, [\d,]+ bytes)?\)(?: (https?://\S+))?(?:\s+\[NEAR-DUPLICATE\])?$`)
)

// SummarizeOutput reduces raw tool output to a short transcript preview.
// Search-style output keeps the result header and the top matches; anything
// else is clamped to maxLines/maxChars. The bool reports whether content
// was dropped.
func SummarizeOutput(output string, maxLines, maxChars int) (string, bool) {
	clean := index.SanitizeText(output)

	var lines []string
	for _, ln := range strings.Split(clean, "\n") {
		if strings.TrimSpace(ln) != "" {
			lines = append(lines, strings.TrimRight(ln, " \t"))
		}
	}

	header := ""
	if len(lines) > 0 && resultHeaderRE.MatchString(strings.TrimSpace(lines[0])) {
		header = strings.TrimSpace(lines[0])
	}

	type docLine struct {
		name, pages, link, snippet string
	}
	var docs []docLine
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if m := docSummaryRE.FindStringSubmatch(trimmed); m != nil {
			docs = append(docs, docLine{name: strings.TrimSpace(m[1]), pages: m[2], link: m[3]})
			continue
		}
		if len(docs) > 0 && strings.HasPrefix(trimmed, ">") && docs[len(docs)-1].snippet == "" {
			docs[len(docs)-1].snippet = clampLine(strings.TrimSpace(strings.TrimLeft(trimmed, ">")), 130)
		}
	}

	if len(docs) > 0 {
		const maxDocs = 3
		var out []string
		if header != "" {
			out = append(out, header)
		}
		out = append(out, "Top matches:")
		for i, doc := range docs {
			if i >= maxDocs {
				break
			}
			out = append(out, fmt.Sprintf("%d. %s (%s pages)", i+1, doc.name, doc.pages))
			if doc.link != "" {
				out = append(out, "   "+doc.link)
			}
			if doc.snippet != "" {
				out = append(out, "   "+doc.snippet)
			}
		}
		truncated := len(docs) > maxDocs
		if truncated {
			out = append(out, fmt.Sprintf("... and %d more results.", len(docs)-maxDocs))
		}
		return strings.TrimSpace(strings.Join(out, "\n")), truncated
	}

	truncated := false
	if len(clean) > maxChars {
		clean = clean[:maxChars]
		truncated = true
	}
	var rawLines []string
	for _, ln := range strings.Split(clean, "\n") {
		if strings.TrimSpace(ln) != "" {
			rawLines = append(rawLines, clampLine(ln, 160))
		}
	}
	if len(rawLines) > maxLines {
		rawLines = rawLines[:maxLines]
		truncated = true
	}
	if truncated {
		rawLines = append(rawLines, "...[truncated for readability]...")
	}
	return strings.TrimSpace(strings.Join(rawLines, "\n")), truncated
}

// FormatCallSignature renders a tool call as name(args) for transcripts,
// hiding the intent argument.
func FormatCallSignature(toolName string, args map[string]any) string {
	display := make(map[string]any, len(args))
	for k, v := range args {
		if k == "intent" {
			continue
		}
		display[k] = v
	}
	if len(display) == 0 {
		return toolName + "()"
	}
	encoded, err := json.Marshal(display)
	if err != nil {
		return fmt.Sprintf("%s(%v)", toolName, display)
	}
	return fmt.Sprintf("%s(%s)", toolName, encoded)
}

func clampLine(line string, width int) string {
	compact := strings.Join(strings.Fields(line), " ")
	if len(compact) <= width {
		return compact
	}
	return strings.TrimRight(compact[:width-3], " ") + "..."
}
