package ai

import (
	"bytes"
	"context"
	"encoding/json"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"` // tool-role messages
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // assistant messages
}

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"` // "function"
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // raw JSON text, as the wire carries it
}

// Tool is a function declaration offered to the model.
type Tool struct {
	Type     string       `json:"type"` // "function"
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Completion is the provider's answer to one chat request: final text,
// plus zero or more tool calls when tools were offered.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ToolProvider is an optional interface. Providers may support function calling.
type ToolProvider interface {
	ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
}

// ParseToolArguments decodes a tool call's raw argument JSON. Malformed or
// non-object payloads come back as an empty argument set, never an error;
// a bad tool call must not abort the turn. The result is always a fresh map,
// safe for the caller to mutate.
func ParseToolArguments(raw string) map[string]any {
	empty := func() map[string]any { return map[string]any{} }

	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return empty()
	}

	// Some providers double-encode arguments as a JSON string. Unquote once.
	if trimmed[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(trimmed, &unquoted); err != nil {
			return empty()
		}
		trimmed = bytes.TrimSpace([]byte(unquoted))
		if len(trimmed) == 0 {
			return empty()
		}
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return empty()
	}
	args, ok := v.(map[string]any)
	if !ok {
		return empty()
	}
	return args
}
