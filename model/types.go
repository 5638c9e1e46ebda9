// Package model provides domain types shared across packages.
package model

// DocumentSummary is the per-hit metadata the query layer returns
// alongside formatted result text. Pages is a display value because the
// index may not know a page count ("?").
type DocumentSummary struct {
	DocID string `json:"doc_id"`
	Name  string `json:"name"`
	Pages string `json:"pages"`
	Size  int64  `json:"size"`
	Link  string `json:"link"`
}

// Total mirrors the index's hit-total object: an exact value or a
// lower bound ("gte").
type Total struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

// ToolCallRecord is one entry in the per-turn tool log. Appended once per
// invocation, valid or not, and never mutated afterwards.
type ToolCallRecord struct {
	Tool            string         `json:"tool"`
	Args            map[string]any `json:"args,omitempty"`
	Intent          string         `json:"intent"`
	Output          string         `json:"output"`
	OutputPreview   string         `json:"output_preview"`
	OutputTruncated bool           `json:"output_truncated"`
}
