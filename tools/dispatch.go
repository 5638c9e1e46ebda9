// Package tools is the boundary between the model's function-call requests
// and the archive query layer. It validates the mandatory intent rationale,
// routes each call to the right operation, and normalizes all output before
// it re-enters the model's context.
package tools

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/richinex/inquest/index"
	"github.com/richinex/inquest/llm"
	"github.com/richinex/inquest/model"
)

// MaxToolOutputChars caps result text fed back to the model.
const MaxToolOutputChars = 2_200_000

// OutputTruncatedMarker is appended when result text exceeds the cap.
const OutputTruncatedMarker = "\n...[Output Truncated]..."

// Op enumerates the five archive operations. The dispatch table is closed:
// anything else is an in-band error, never a lookup miss.
type Op string

const (
	OpSearch    Op = "search"
	OpCount     Op = "count"
	OpRead      Op = "read"
	OpReadBatch Op = "read_batch"
	OpList      Op = "list"
	OpInvalid   Op = ""
)

// ParseOp maps a tool-call name to an operation.
func ParseOp(name string) (Op, bool) {
	switch Op(name) {
	case OpSearch, OpCount, OpRead, OpReadBatch, OpList:
		return Op(name), true
	}
	return OpInvalid, false
}

// Invocation is the full outcome of dispatching one tool call: the log
// record, the normalized result, and the bookkeeping facts the agent loop
// needs for its enforcement gates.
type Invocation struct {
	Record model.ToolCallRecord
	Result index.Result
	Op     Op

	// ReadBates is the canonical identifier of a well-formed single read,
	// empty otherwise.
	ReadBates string
	// SearchLimit is the limit the caller asked for on a search, defaulting
	// to the number of returned documents when absent.
	SearchLimit int
}

// Dispatcher routes validated tool calls to the query engine.
type Dispatcher struct {
	engine *index.Client
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over the given query engine.
func NewDispatcher(engine *index.Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{engine: engine, logger: logger}
}

type searchArgs struct {
	Terms        strList `json:"terms"`
	Limit        optInt  `json:"limit"`
	Fuzzy        bool    `json:"fuzzy"`
	Cooccur      bool    `json:"cooccur"`
	Exclude      strList `json:"exclude"`
	MinPages     optInt  `json:"min_pages"`
	MaxPages     optInt  `json:"max_pages"`
	FragmentSize optInt  `json:"fragment_size"`
	Fragments    optInt  `json:"fragments"`
	Intent       string  `json:"intent"`
}

type countArgs struct {
	Terms   strList `json:"terms"`
	Fuzzy   bool    `json:"fuzzy"`
	Cooccur bool    `json:"cooccur"`
	Intent  string  `json:"intent"`
}

type readArgs struct {
	Identifier string `json:"identifier"`
	MaxChars   optInt `json:"max_chars"`
	Intent     string `json:"intent"`
}

type readBatchArgs struct {
	IdentifierList strList `json:"identifier_list"`
	MaxCharsTotal  optInt  `json:"max_chars_total"`
	Intent         string  `json:"intent"`
}

type listArgs struct {
	Query  string `json:"query"`
	Fuzzy  bool   `json:"fuzzy"`
	Intent string `json:"intent"`
}

// Dispatch validates and executes one model-issued tool call. Malformed
// intent, unsupported names, and bad arguments come back as in-band error
// results; a non-nil error means the index transport failed and the turn
// should abort. Every non-transport outcome yields a complete Record.
func (d *Dispatcher) Dispatch(ctx context.Context, call llm.ToolCall) (Invocation, error) {
	var argMap map[string]any
	_ = json.Unmarshal(call.Arguments, &argMap)

	inv := Invocation{}
	if op, ok := ParseOp(call.Name); ok {
		inv.Op = op
	}

	rawIntent, _ := argMap["intent"].(string)
	intent, _, intentErr := ValidateIntent(rawIntent)
	switch {
	case intentErr != nil:
		inv.Result = index.Errorf("%s", intentErr.Error())
	case inv.Op == OpInvalid:
		inv.Result = index.Errorf("unsupported tool '%s'.", call.Name)
	default:
		if argMap != nil {
			argMap["intent"] = intent
		}
		result, err := d.execute(ctx, inv.Op, call.Arguments, &inv)
		if err != nil {
			return Invocation{}, err
		}
		inv.Result = result
	}

	inv.Result.Text = truncateOutput(inv.Result.Text)
	if inv.Op == OpSearch && inv.SearchLimit == 0 {
		inv.SearchLimit = len(inv.Result.Documents)
	}

	preview, previewTruncated := SummarizeOutput(inv.Result.Text, 12, 1400)
	inv.Record = model.ToolCallRecord{
		Tool:            call.Name,
		Args:            argMap,
		Intent:          intent,
		Output:          inv.Result.Text,
		OutputPreview:   preview,
		OutputTruncated: previewTruncated,
	}

	d.logger.Debug("tool call",
		zap.String("tool", call.Name),
		zap.Int("documents", len(inv.Result.Documents)),
		zap.Bool("error", inv.Result.IsError()))

	return inv, nil
}

func (d *Dispatcher) execute(ctx context.Context, op Op, rawArgs json.RawMessage, inv *Invocation) (index.Result, error) {
	switch op {
	case OpSearch:
		var args searchArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return index.Errorf("invalid arguments (%v).", err), nil
		}
		inv.SearchLimit = args.Limit.value
		return d.engine.Search(ctx, index.SearchRequest{
			Terms:        args.Terms,
			Limit:        args.Limit.value,
			Fuzzy:        args.Fuzzy,
			Cooccur:      args.Cooccur,
			Exclude:      args.Exclude,
			MinPages:     args.MinPages.ptr(),
			MaxPages:     args.MaxPages.ptr(),
			FragmentSize: args.FragmentSize.value,
			Fragments:    args.Fragments.value,
		})

	case OpCount:
		var args countArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return index.Errorf("invalid arguments (%v).", err), nil
		}
		return d.engine.Count(ctx, args.Terms, args.Fuzzy, args.Cooccur)

	case OpRead:
		var args readArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return index.Errorf("invalid arguments (%v).", err), nil
		}
		if target := strings.ToUpper(strings.TrimSpace(args.Identifier)); index.IsBatesNumber(target) {
			inv.ReadBates = target
		}
		return d.engine.Read(ctx, args.Identifier, args.MaxChars.value)

	case OpReadBatch:
		var args readBatchArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return index.Errorf("invalid arguments (%v).", err), nil
		}
		maxTotal := args.MaxCharsTotal.value
		if maxTotal <= 0 {
			maxTotal = index.BatchCharsDefault
		}
		return d.engine.ReadBatch(ctx, args.IdentifierList, maxTotal)

	case OpList:
		var args listArgs
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return index.Errorf("invalid arguments (%v).", err), nil
		}
		return d.engine.ListDocuments(ctx, args.Query, args.Fuzzy)
	}

	return index.Errorf("unsupported tool '%s'.", string(op)), nil
}

func truncateOutput(text string) string {
	if len(text) > MaxToolOutputChars {
		return text[:MaxToolOutputChars] + OutputTruncatedMarker
	}
	return text
}

// strList accepts a JSON array of scalars or a bare scalar, coercing
// everything to trimmed non-empty strings. Models are inconsistent here.
type strList []string

func (s *strList) UnmarshalJSON(b []byte) error {
	var arr []any
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = coerceStrings(arr)
		return nil
	}
	var single any
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	if single == nil {
		*s = nil
		return nil
	}
	*s = coerceStrings([]any{single})
	return nil
}

func coerceStrings(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		text := strings.TrimSpace(anyToString(v))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

func anyToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case nil:
		return ""
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// optInt accepts integers and the float form JSON round-tripping produces.
type optInt struct {
	value int
	set   bool
}

func (o *optInt) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	o.value = int(f)
	o.set = true
	return nil
}

func (o optInt) ptr() *int {
	if !o.set {
		return nil
	}
	v := o.value
	return &v
}
