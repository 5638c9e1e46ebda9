package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/richinex/inquest/index"
	"github.com/richinex/inquest/llm"
)

func newTestDispatcher(t *testing.T, handler http.HandlerFunc) *Dispatcher {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	engine := index.NewClient(index.Options{BaseURL: server.URL, Index: "archive"})
	return NewDispatcher(engine, nil)
}

func noIndexDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	return newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("index should not be contacted")
	})
}

func call(name string, args map[string]any) llm.ToolCall {
	raw, _ := json.Marshal(args)
	return llm.ToolCall{ID: "call-1", Name: name, Arguments: raw}
}

func searchBody(totalValue int, names ...string) map[string]any {
	hits := make([]map[string]any, 0, len(names))
	for i, name := range names {
		hits = append(hits, map[string]any{
			"_id": string(rune('a' + i)),
			"_source": map[string]any{
				"name": name, "pages": 1, "size": 100, "content": "body of " + name,
			},
		})
	}
	return map[string]any{
		"hits": map[string]any{
			"total": map[string]any{"value": totalValue, "relation": "eq"},
			"hits":  hits,
		},
	}
}

func TestDispatchMissingIntent(t *testing.T) {
	d := noIndexDispatcher(t)

	inv, err := d.Dispatch(context.Background(), call("search", map[string]any{"terms": []string{"wire"}}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !inv.Result.IsError() || !strings.Contains(inv.Result.Text, "missing required `intent`") {
		t.Errorf("result = %q", inv.Result.Text)
	}
	if inv.Record.Tool != "search" {
		t.Errorf("record tool = %q", inv.Record.Tool)
	}
	if inv.Record.Intent != "" {
		t.Errorf("invalid intent must not be recorded as valid: %q", inv.Record.Intent)
	}
}

func TestDispatchUnsupportedTool(t *testing.T) {
	d := noIndexDispatcher(t)

	inv, err := d.Dispatch(context.Background(), call("drop_tables", map[string]any{
		"intent": "<intent>mischief</intent>",
	}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if inv.Op != OpInvalid {
		t.Errorf("Op = %q, want invalid", inv.Op)
	}
	if inv.Result.Text != "Tool Execution Error: unsupported tool 'drop_tables'." {
		t.Errorf("result = %q", inv.Result.Text)
	}
}

func TestDispatchSearchRecordsLimit(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchBody(40, "EFTA00000001.pdf", "EFTA00000002.pdf"))
	})

	inv, err := d.Dispatch(context.Background(), call("search", map[string]any{
		"terms":  []string{"wire", "transfer"},
		"limit":  25,
		"intent": "<intent>locate transfer approvals</intent>",
	}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if inv.Op != OpSearch {
		t.Errorf("Op = %q", inv.Op)
	}
	if inv.SearchLimit != 25 {
		t.Errorf("SearchLimit = %d, want 25", inv.SearchLimit)
	}
	if inv.Result.Total == nil || inv.Result.Total.Value != 40 {
		t.Errorf("Total = %+v", inv.Result.Total)
	}
	if inv.Record.Intent != "<intent>locate transfer approvals</intent>" {
		t.Errorf("Intent = %q", inv.Record.Intent)
	}
	if inv.Record.OutputPreview == "" {
		t.Error("expected a preview for the transcript")
	}
}

func TestDispatchSearchLimitDefaultsToReturned(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchBody(2, "EFTA00000001.pdf", "EFTA00000002.pdf"))
	})

	inv, err := d.Dispatch(context.Background(), call("search", map[string]any{
		"terms":  "wire",
		"intent": "<intent>locate transfer approvals</intent>",
	}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if inv.SearchLimit != 2 {
		t.Errorf("SearchLimit = %d, want returned count", inv.SearchLimit)
	}
}

func TestDispatchReadSetsBates(t *testing.T) {
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchBody(1, "EFTA00000001.pdf"))
	})

	inv, err := d.Dispatch(context.Background(), call("read", map[string]any{
		"identifier": "efta00000001",
		"intent":     "<intent>full read before citing</intent>",
	}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if inv.Op != OpRead {
		t.Errorf("Op = %q", inv.Op)
	}
	if inv.ReadBates != "EFTA00000001" {
		t.Errorf("ReadBates = %q", inv.ReadBates)
	}
}

func TestDispatchTruncatesOversizedOutput(t *testing.T) {
	huge := strings.Repeat("x", MaxToolOutputChars+1000)
	d := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"hits": map[string]any{
				"total": map[string]any{"value": 1, "relation": "eq"},
				"hits": []map[string]any{{
					"_id": "aaa",
					"_source": map[string]any{
						"name": "EFTA00000001.pdf", "pages": 1, "size": 100, "content": huge,
					},
				}},
			},
		})
	})

	inv, err := d.Dispatch(context.Background(), call("read", map[string]any{
		"identifier": "EFTA00000001",
		"intent":     "<intent>full read of an enormous document</intent>",
	}))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(inv.Result.Text) > MaxToolOutputChars+len(OutputTruncatedMarker) {
		t.Errorf("output not capped: %d chars", len(inv.Result.Text))
	}
	if !strings.HasSuffix(inv.Result.Text, OutputTruncatedMarker) {
		t.Error("missing truncation marker")
	}
}

func TestDispatchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()
	engine := index.NewClient(index.Options{BaseURL: server.URL})
	d := NewDispatcher(engine, nil)

	_, err := d.Dispatch(context.Background(), call("count", map[string]any{
		"terms":  []string{"wire"},
		"intent": "<intent>scope the corpus</intent>",
	}))
	if err == nil {
		t.Fatal("expected transport error")
	}
}
