package agent

import (
	"github.com/richinex/inquest/model"
)

// Outcome is a completed user turn: the verified answer text, the full
// tool-call log, and how much of the loop budget was consumed.
type Outcome struct {
	Text      string
	ToolLog   []model.ToolCallRecord
	LoopCount int

	// Stopped is set when the loop budget ran out while the model still
	// wanted tools. The text carries an explicit marker in that case.
	Stopped bool
}

// StoppedMarker is appended to the answer when the loop budget is exhausted.
const StoppedMarker = "[Stopped: reached max autonomous steps.]"

// UnverifiedDraftError is returned when quote verification fails on the
// final attempt. It carries the best-effort draft so callers can show it
// explicitly marked as unverified; it must never be presented as a
// verified answer, and never silently discarded.
type UnverifiedDraftError struct {
	Draft     string
	ToolLog   []model.ToolCallRecord
	LoopCount int
}

func (e *UnverifiedDraftError) Error() string {
	return "Quote verification failed after 3 attempts. Showing the latest draft as unverified."
}
