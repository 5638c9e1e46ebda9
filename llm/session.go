package llm

import (
	"context"
	"encoding/json"
)

// ToolResultMessage carries one tool call's output back to the model.
// Content is the JSON-encoded result payload.
type ToolResultMessage struct {
	CallID  string
	Name    string
	Content string
}

// Reply is what a session turn yields: final text, any requested tool
// calls, and usage for this exchange.
type Reply struct {
	Text  string
	Calls []ToolCall
	Usage *TokenUsage
}

// Session maintains a growing conversation against a provider, the way a
// chat surface would: each Send appends to history, calls the model with
// the fixed tool schema, and records the assistant's reply. Not safe for
// concurrent use; the investigation loop is strictly sequential.
type Session struct {
	provider Provider
	tools    []ToolDefinition
	messages []ChatMessage
	usage    TokenUsage
	calls    int
}

// NewSession starts a conversation with an optional system prompt.
func NewSession(provider Provider, systemPrompt string, tools []ToolDefinition) *Session {
	s := &Session{provider: provider, tools: tools}
	if systemPrompt != "" {
		s.messages = append(s.messages, SystemMessage(systemPrompt))
	}
	return s
}

// Send appends a user message and requests the next model turn.
func (s *Session) Send(ctx context.Context, text string) (Reply, error) {
	s.messages = append(s.messages, UserMessage(text))
	return s.complete(ctx)
}

// SendToolResults feeds a batch of tool outputs back and requests the next
// model turn.
func (s *Session) SendToolResults(ctx context.Context, results []ToolResultMessage) (Reply, error) {
	for _, r := range results {
		s.messages = append(s.messages, ChatMessage{
			Role:       "tool",
			Content:    r.Content,
			ToolCallID: r.CallID,
		})
	}
	return s.complete(ctx)
}

func (s *Session) complete(ctx context.Context) (Reply, error) {
	resp, err := s.provider.ChatWithTools(ctx, s.messages, s.tools)
	if err != nil {
		return Reply{}, err
	}

	s.messages = append(s.messages, ChatMessage{
		Role:      "assistant",
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
	})
	s.calls++
	s.usage.Add(resp.Usage)

	return Reply{Text: resp.Content, Calls: resp.ToolCalls, Usage: resp.Usage}, nil
}

// History returns a copy of the conversation so far.
func (s *Session) History() []ChatMessage {
	out := make([]ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Usage returns cumulative token usage across the session.
func (s *Session) Usage() TokenUsage { return s.usage }

// ModelCalls returns how many model invocations the session has made.
func (s *Session) ModelCalls() int { return s.calls }

// EncodeToolPayload renders a tool result payload for transport.
func EncodeToolPayload(payload map[string]any) string {
	b, err := json.Marshal(payload)
	if err != nil {
		return `{"result":"Tool Execution Error: failed to encode tool result."}`
	}
	return string(b)
}
