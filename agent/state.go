package agent

import "github.com/richinex/inquest/model"

// turnState is the mutable bundle threaded through one user turn. Created
// fresh per turn, never shared across turns.
type turnState struct {
	loops   int
	toolLog []model.ToolCallRecord

	// readBates holds identifiers confirmed read in full; discovered holds
	// every identifier any tool result surfaced, in first-seen order.
	readBates  map[string]bool
	discovered []string

	readRounds    int
	sweepRounds   int
	quoteFailures int

	sweepRequired bool
	sweepWaived   bool
	sweepTotal    int
	sweepReasons  []string
	batchReads    map[string]bool

	// exhausted is set when the budget ran out while the model still had
	// pending tool calls.
	exhausted bool
}

func newTurnState() *turnState {
	return &turnState{
		readBates:  make(map[string]bool),
		batchReads: make(map[string]bool),
	}
}

func (st *turnState) noteDiscovered(bates []string) {
	st.discovered = append(st.discovered, bates...)
}

func (st *turnState) budgetLeft(max int) bool {
	return st.loops < max
}
