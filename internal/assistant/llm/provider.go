// Package llm is a minimal chat-completions client with tool calling.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrProviderUnavailable is returned while the provider's breaker is open.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// Provider is an LLM backend.
type Provider interface {
	// Complete sends a request and blocks until the full response arrives.
	Complete(ctx context.Context, request Request) (*Response, error)
}

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is one function invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message is one conversation turn. Assistant messages may carry ToolCalls;
// tool messages answer the call named by ToolCallID.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Tool describes a function the model may call. Parameters is a JSON Schema
// object.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Request is a provider-neutral completion request.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	Tools       []Tool
	MaxTokens   int
	Temperature *float64
}

// StopReason says why the model stopped generating.
type StopReason string

const (
	StopReasonEndTurn   StopReason = "end_turn"
	StopReasonToolUse   StopReason = "tool_use"
	StopReasonMaxTokens StopReason = "max_tokens"
)

// Usage reports token consumption.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Response is a completed model turn.
type Response struct {
	Model      string
	Content    string
	ToolCalls  []ToolCall
	StopReason StopReason
	Usage      Usage
}

// Message returns the response as an assistant message for the transcript.
func (r *Response) Message() Message {
	return Message{Role: RoleAssistant, Content: r.Content, ToolCalls: r.ToolCalls}
}

// ProviderError is a non-200 response from the provider API.
type ProviderError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("llm: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm: HTTP %d: %s: %s", e.StatusCode, e.Type, e.Message)
}

// IsRateLimited reports a 429 response.
func (e *ProviderError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// IsOverloaded reports a 5xx response.
func (e *ProviderError) IsOverloaded() bool {
	return e.StatusCode >= http.StatusInternalServerError
}
