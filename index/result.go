package index

import (
	"fmt"

	"github.com/richinex/inquest/model"
)

// Result is the in-band outcome of one query operation: formatted text for
// the model plus structured metadata for bookkeeping. Malformed input
// produces an error Result, not a Go error; only transport failures are
// returned as errors.
type Result struct {
	Text      string
	Documents []model.DocumentSummary

	// Set per operation: Count by count and read_batch, Total by search,
	// Requested by read_batch, Bates by read.
	Count     *int
	Total     *model.Total
	Requested *int
	Bates     string
}

// Errorf builds an in-band tool error result.
func Errorf(format string, args ...any) Result {
	return Result{Text: "Tool Execution Error: " + fmt.Sprintf(format, args...)}
}

// IsError reports whether the result carries an in-band tool error.
func (r Result) IsError() bool {
	return len(r.Text) >= 21 && r.Text[:21] == "Tool Execution Error:"
}

// Payload renders the result as the JSON-shaped object fed back to the
// model as tool output. A documents list is always present.
func (r Result) Payload() map[string]any {
	docs := r.Documents
	if docs == nil {
		docs = []model.DocumentSummary{}
	}
	payload := map[string]any{
		"result":    r.Text,
		"documents": docs,
	}
	if r.Count != nil {
		payload["count"] = *r.Count
	}
	if r.Total != nil {
		payload["total"] = r.Total
	}
	if r.Requested != nil {
		payload["requested"] = *r.Requested
	}
	if r.Bates != "" {
		payload["bates"] = r.Bates
	}
	return payload
}

func intPtr(v int) *int { return &v }
