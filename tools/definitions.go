package tools

import "github.com/richinex/inquest/llm"

// Definitions returns the fixed five-operation tool schema handed to the
// model. Argument names and shapes are part of the wire contract; every
// call must carry an intent rationale.
func Definitions() []llm.ToolDefinition {
	intentProp := map[string]interface{}{
		"type":        "string",
		"description": "Short rationale for this call, wrapped exactly as <intent>...</intent>.",
	}

	return []llm.ToolDefinition{
		{
			Name: string(OpSearch),
			Description: "Full-text search over the document archive with highlighted snippets. " +
				"Set cooccur=true to require every term to match, fuzzy=true to tolerate OCR errors. " +
				"Use exclude to drop documents matching identifiers or phrases.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"terms": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Search terms.",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum hits to return (1-500, default 100).",
					},
					"fuzzy":   map[string]interface{}{"type": "boolean", "description": "Edit-distance-tolerant matching."},
					"cooccur": map[string]interface{}{"type": "boolean", "description": "Require all terms to match (AND)."},
					"exclude": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Identifiers or phrases to exclude.",
					},
					"min_pages":     map[string]interface{}{"type": "integer", "description": "Only documents with at least this many pages."},
					"max_pages":     map[string]interface{}{"type": "integer", "description": "Only documents with at most this many pages."},
					"fragment_size": map[string]interface{}{"type": "integer", "description": "Highlight fragment size in chars (50-2000, default 300)."},
					"fragments":     map[string]interface{}{"type": "integer", "description": "Highlight fragments per hit (1-10, default 3)."},
					"intent":        intentProp,
				},
				"required": []string{"terms", "intent"},
			},
		},
		{
			Name:        string(OpCount),
			Description: "Count documents matching the terms without retrieving them.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"terms": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Terms to count matches for.",
					},
					"fuzzy":   map[string]interface{}{"type": "boolean", "description": "Edit-distance-tolerant matching."},
					"cooccur": map[string]interface{}{"type": "boolean", "description": "Require all terms to match (AND)."},
					"intent":  intentProp,
				},
				"required": []string{"terms", "intent"},
			},
		},
		{
			Name: string(OpRead),
			Description: "Read the full text of exactly one document by its Bates-style identifier " +
				"(four letters + eight digits, case-insensitive, .pdf suffix allowed).",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"identifier": map[string]interface{}{"type": "string", "description": "Document identifier, e.g. ABCD01234567."},
					"max_chars":  map[string]interface{}{"type": "integer", "description": "Truncate content after this many chars (200-200000). Omit for the full document."},
					"intent":     intentProp,
				},
				"required": []string{"identifier", "intent"},
			},
		},
		{
			Name: string(OpReadBatch),
			Description: "Read many documents in one call, concatenating their full texts until a " +
				"total character budget is exhausted. Accepts Bates identifiers or 32-hex doc ids.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"identifier_list": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Document identifiers to read.",
					},
					"max_chars_total": map[string]interface{}{"type": "integer", "description": "Total character budget across all documents (default 2000000)."},
					"intent":          intentProp,
				},
				"required": []string{"identifier_list", "intent"},
			},
		},
		{
			Name: string(OpList),
			Description: "List every document name matching a boolean query (AND/OR/NOT, quoted " +
				"phrases). Exhaustive: paginates internally until done.",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"query":  map[string]interface{}{"type": "string", "description": "Boolean query over document content."},
					"fuzzy":  map[string]interface{}{"type": "boolean", "description": "Edit-distance-tolerant matching for bare tokens."},
					"intent": intentProp,
				},
				"required": []string{"query", "intent"},
			},
		},
	}
}
