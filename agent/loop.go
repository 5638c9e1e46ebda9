// Autonomous investigation loop.
//
// One user turn is a strictly sequential state machine: the model requests
// tool calls, the dispatcher executes them, results feed back round by
// round until the model emits final text. Three enforcement gates then run
// in order, each able to re-prompt the model: mandatory full-document
// reads, deep-sweep coverage of high-volume result sets, and exact-quote
// verification. A turn ends verified, explicitly stopped on budget, or as
// an unverified draft.

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/inquest/index"
	"github.com/richinex/inquest/llm"
	"github.com/richinex/inquest/model"
	"github.com/richinex/inquest/tools"
)

// ModelSession is the conversational boundary to the model service.
type ModelSession interface {
	Send(ctx context.Context, text string) (llm.Reply, error)
	SendToolResults(ctx context.Context, results []llm.ToolResultMessage) (llm.Reply, error)
}

// ToolDispatcher executes one model-issued tool call.
type ToolDispatcher interface {
	Dispatch(ctx context.Context, call llm.ToolCall) (tools.Invocation, error)
}

// QuoteChecker verifies structured citations in a draft answer.
type QuoteChecker interface {
	Validate(ctx context.Context, text string) (bool, []string, error)
}

// StepFunc observes each recorded tool call as it happens.
type StepFunc func(step int, record model.ToolCallRecord)

var sweepRationaleRE = regexp.MustCompile(`(?im)^\s*sweep rationale\s*:\s*(.+)$`)

// Agent drives investigation turns over one model session.
type Agent struct {
	session  ModelSession
	dispatch ToolDispatcher
	verifier QuoteChecker
	cfg      Config
	logger   *zap.Logger
	onStep   StepFunc
}

// New creates an agent over a model session, a tool dispatcher, and a
// quote verifier. The verifier must be fresh per turn if its source cache
// should not carry over.
func New(session ModelSession, dispatcher ToolDispatcher, verifier QuoteChecker, cfg Config, logger *zap.Logger) *Agent {
	if cfg.MaxLoops <= 0 {
		cfg.MaxLoops = DefaultMaxLoops
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		session:  session,
		dispatch: dispatcher,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// WithStep registers a per-step observer.
func (a *Agent) WithStep(fn StepFunc) *Agent {
	a.onStep = fn
	return a
}

// Investigate runs one full user turn. A transport failure (model or
// index unreachable) is fatal and returned as an error; quote verification
// exhausting its retries returns *UnverifiedDraftError carrying the draft.
func (a *Agent) Investigate(ctx context.Context, prompt string) (Outcome, error) {
	st := newTurnState()

	reply, err := a.session.Send(ctx, prompt)
	if err != nil {
		return Outcome{}, err
	}

	for {
		reply, err = a.runToolRounds(ctx, st, reply)
		if err != nil {
			return Outcome{}, err
		}

		finalText := reply.Text
		if finalText == "" {
			finalText = "No textual response."
		}

		// Gate 1: mandatory full-document reads.
		required := a.requiredReads(st, finalText)
		if len(required) > 0 && st.readRounds < ReadEnforcementRounds && st.budgetLeft(a.cfg.MaxLoops) {
			st.readRounds++
			a.logger.Debug("mandatory-read enforcement",
				zap.Int("round", st.readRounds),
				zap.Strings("required", required))
			blocks, err := a.forceReads(ctx, st, required)
			if err != nil {
				return Outcome{}, err
			}
			if len(blocks) > 0 {
				followup := "You must now produce the final answer using the full-document reads below. " +
					"Only cite documents that were read in full.\n\n" + strings.Join(blocks, "\n\n")
				reply, err = a.session.Send(ctx, followup)
				if err != nil {
					return Outcome{}, err
				}
				continue
			}
		}

		// A volunteered "Sweep rationale:" line waives the sweep gate for
		// the rest of the turn.
		if !st.sweepWaived {
			if m := sweepRationaleRE.FindStringSubmatch(finalText); m != nil && strings.TrimSpace(m[1]) != "" {
				st.sweepWaived = true
			}
		}

		// Gate 2: deep-sweep coverage of high-volume result sets.
		target := RecommendedSweepTarget(st.sweepTotal)
		if st.sweepRequired && !st.sweepWaived &&
			st.sweepTotal > DeepSweepCountThreshold &&
			len(st.batchReads) < target &&
			st.sweepRounds < DeepSweepRetries &&
			st.budgetLeft(a.cfg.MaxLoops) {
			st.sweepRounds++
			a.logger.Debug("deep-sweep enforcement",
				zap.Int("round", st.sweepRounds),
				zap.Int("observed_total", st.sweepTotal),
				zap.Int("batch_reads", len(st.batchReads)),
				zap.Int("target", target))
			reply, err = a.session.Send(ctx, sweepCorrection(st, target))
			if err != nil {
				return Outcome{}, err
			}
			continue
		}

		// Gate 3: exact-quote verification.
		ok, failures, err := a.verifier.Validate(ctx, finalText)
		if err != nil {
			return Outcome{}, err
		}
		if !ok {
			st.quoteFailures++
			a.logger.Debug("quote verification failed",
				zap.Int("attempt", st.quoteFailures),
				zap.Int("failures", len(failures)))
			if st.quoteFailures >= MaxQuoteFailures {
				return Outcome{}, &UnverifiedDraftError{
					Draft:     finalText,
					ToolLog:   st.toolLog,
					LoopCount: st.loops,
				}
			}
			correction := fmt.Sprintf(
				"Quote verification failed. At least one exact quote snippet does not appear in the cited source document text.\n"+
					"Attempt %d of %d retries.\n"+
					"Fix the quoted snippets and regenerate the answer.\n\n"+
					"Failed checks:\n%s",
				st.quoteFailures, MaxQuoteFailures-1, strings.Join(failures, "\n"))
			reply, err = a.session.Send(ctx, correction)
			if err != nil {
				return Outcome{}, err
			}
			continue
		}

		if st.exhausted {
			finalText = strings.TrimRight(finalText, "\n") + "\n\n" + StoppedMarker
		}
		return Outcome{
			Text:      finalText,
			ToolLog:   st.toolLog,
			LoopCount: st.loops,
			Stopped:   st.exhausted,
		}, nil
	}
}

// runToolRounds executes tool calls round by round until the model stops
// requesting them or the loop budget runs out. Results gathered in a round
// are always flushed back to the model, even when the budget ran out
// mid-round, so paid-for work is never dropped.
func (a *Agent) runToolRounds(ctx context.Context, st *turnState, reply llm.Reply) (llm.Reply, error) {
	for len(reply.Calls) > 0 && st.budgetLeft(a.cfg.MaxLoops) {
		var results []llm.ToolResultMessage
		for _, call := range reply.Calls {
			if !st.budgetLeft(a.cfg.MaxLoops) {
				break
			}
			st.loops++
			inv, err := a.dispatch.Dispatch(ctx, call)
			if err != nil {
				return llm.Reply{}, err
			}
			st.toolLog = append(st.toolLog, inv.Record)
			a.account(st, inv)
			if a.onStep != nil {
				a.onStep(st.loops, inv.Record)
			}
			results = append(results, llm.ToolResultMessage{
				CallID:  call.ID,
				Name:    call.Name,
				Content: llm.EncodeToolPayload(inv.Result.Payload()),
			})
		}
		if len(results) == 0 {
			break
		}
		next, err := a.session.SendToolResults(ctx, results)
		if err != nil {
			return llm.Reply{}, err
		}
		reply = next
	}
	if len(reply.Calls) > 0 && !st.budgetLeft(a.cfg.MaxLoops) {
		st.exhausted = true
	}
	return reply, nil
}

// account updates enforcement bookkeeping from one tool invocation.
func (a *Agent) account(st *turnState, inv tools.Invocation) {
	switch inv.Op {
	case tools.OpRead:
		if inv.ReadBates != "" && len(inv.Result.Documents) > 0 {
			st.readBates[inv.ReadBates] = true
		}
	case tools.OpReadBatch:
		for _, bates := range tools.BatchReadBates(inv.Result) {
			st.readBates[bates] = true
			st.batchReads[bates] = true
		}
	case tools.OpCount:
		count := 0
		if inv.Result.Count != nil {
			count = *inv.Result.Count
		}
		if count > st.sweepTotal {
			st.sweepTotal = count
		}
		if count > DeepSweepCountThreshold {
			st.sweepRequired = true
			st.sweepReasons = append(st.sweepReasons,
				fmt.Sprintf("count reported %d matches (> %d).", count, DeepSweepCountThreshold))
		}
	case tools.OpSearch:
		total := 0
		if inv.Result.Total != nil {
			total = inv.Result.Total.Value
		}
		if total > st.sweepTotal {
			st.sweepTotal = total
		}
		returned := len(inv.Result.Documents)
		if total > DeepSweepCountThreshold && returned > 0 {
			st.sweepRequired = true
			if inv.SearchLimit < DeepSweepLimitMin || returned < total {
				st.sweepReasons = append(st.sweepReasons,
					fmt.Sprintf("search returned %d of %d with limit=%d.", returned, total, inv.SearchLimit))
			}
		}
	}
	st.noteDiscovered(tools.DiscoveredBates(inv.Result))
}

// requiredReads computes which identifiers must still be read in full
// before the answer is acceptable: every cited-but-unread identifier, then
// enough discovered-but-unread identifiers to reach the minimum floor.
func (a *Agent) requiredReads(st *turnState, finalText string) []string {
	cited := index.UniqueOrdered(index.BatesNumbersIn(finalText))

	var required []string
	for _, bates := range cited {
		if !st.readBates[bates] {
			required = append(required, bates)
		}
	}

	extra := MinFullDocReads - (len(st.readBates) + len(required))
	if extra > 0 {
		for _, bates := range index.UniqueOrdered(st.discovered) {
			if extra == 0 {
				break
			}
			if st.readBates[bates] || slices.Contains(required, bates) {
				continue
			}
			required = append(required, bates)
			extra--
		}
	}
	return index.UniqueOrdered(required)
}

// forceReads issues a mandatory verification read for each identifier,
// consuming loop budget, and returns the content blocks for the re-prompt.
func (a *Agent) forceReads(ctx context.Context, st *turnState, required []string) ([]string, error) {
	var blocks []string
	for _, bates := range required {
		if !st.budgetLeft(a.cfg.MaxLoops) {
			break
		}
		st.loops++
		args, _ := json.Marshal(map[string]string{
			"identifier": bates,
			"intent":     fmt.Sprintf("<intent>Mandatory full-document verification read for %s</intent>", bates),
		})
		inv, err := a.dispatch.Dispatch(ctx, llm.ToolCall{
			ID:        "enforced-read-" + bates,
			Name:      string(tools.OpRead),
			Arguments: args,
		})
		if err != nil {
			return nil, err
		}
		st.toolLog = append(st.toolLog, inv.Record)
		if len(inv.Result.Documents) > 0 {
			st.readBates[bates] = true
		}
		st.noteDiscovered(tools.DiscoveredBates(inv.Result))
		if a.onStep != nil {
			a.onStep(st.loops, inv.Record)
		}
		blocks = append(blocks, fmt.Sprintf("[READ %s]\n%s", bates, inv.Result.Text))
	}
	return blocks, nil
}

func sweepCorrection(st *turnState, target int) string {
	reasonText := strings.Join(index.UniqueOrdered(st.sweepReasons), "\n")
	if reasonText == "" {
		reasonText = "High-volume result set detected."
	}
	return fmt.Sprintf(
		"The search came back with %d documents, but you only did a batch for %d. "+
			"You should seriously consider doing a much larger batch unless you have good reason to. "+
			"Please either proceed with a large batch or provide a reasoned explanation why you aren't, "+
			"and then move into the next step.\n"+
			"%s\n"+
			"Recommended sweep target for this case: at least %d documents in batch "+
			"(use search limit=%d+ and then read_batch).\n"+
			"If you choose not to increase the batch, include a line in your response starting "+
			"with: Sweep rationale: ...",
		st.sweepTotal, len(st.batchReads), reasonText, target, DeepSweepLimitMin)
}
