package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultTimeout     = 60 * time.Second
	defaultMaxTokens   = 1024
	breakerFailures    = 3
	breakerOpenTimeout = 30 * time.Second
)

var ErrMissingAPIKey = errors.New("llm API key is required")

// OpenAIConfig configures an OpenAIProvider.
type OpenAIConfig struct {
	// BaseURL is the API root, e.g. https://api.openai.com/v1. Any server
	// speaking the chat completions format works.
	BaseURL   string
	APIKey    string
	Model     string
	Timeout   time.Duration
	MaxTokens int
	Transport http.RoundTripper
}

// OpenAIProvider implements Provider for the OpenAI Chat Completions API.
type OpenAIProvider struct {
	endpoint  string
	model     string
	maxTokens int
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[*Response]
}

// NewOpenAIProvider creates an OpenAI-compatible provider.
func NewOpenAIProvider(cfg OpenAIConfig, logger *slog.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	p := &OpenAIProvider{
		endpoint:  strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"}),
				Base:   base,
			},
		},
	}
	p.breaker = gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return p, nil
}

// isBreakerSuccess lets request errors through without tripping; rate
// limiting and server errors do trip.
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return !providerErr.IsRateLimited() && !providerErr.IsOverloaded()
	}
	return false
}

// Complete sends a non-streaming request and returns the full response.
func (p *OpenAIProvider) Complete(ctx context.Context, request Request) (*Response, error) {
	resp, err := p.breaker.Execute(func() (*Response, error) {
		return p.complete(ctx, request)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return resp, err
}

func (p *OpenAIProvider) complete(ctx context.Context, request Request) (*Response, error) {
	body, err := json.Marshal(p.buildRequest(request))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm/openai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpResponse, err := p.http.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("llm/openai: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, readProviderError(httpResponse)
	}

	var wire openaiResponse
	if err := json.NewDecoder(httpResponse.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("llm/openai: decoding response: %w", err)
	}
	return wire.toResponse(), nil
}

func (p *OpenAIProvider) buildRequest(request Request) openaiRequest {
	model := request.Model
	if model == "" {
		model = p.model
	}
	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	wire := openaiRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: request.Temperature,
	}

	if request.System != "" {
		wire.Messages = append(wire.Messages, openaiMessage{Role: "system", Content: request.System})
	}
	for _, message := range request.Messages {
		wire.Messages = append(wire.Messages, toOpenAIMessage(message))
	}
	for _, tool := range request.Tools {
		wire.Tools = append(wire.Tools, openaiTool{
			Type: "function",
			Function: openaiToolDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return wire
}

// readProviderError parses {"error":{"type":"...","message":"..."}}. Other
// bodies are kept verbatim, truncated.
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       wireError.Error.Type,
			Message:    wireError.Error.Message,
		}
	}
	return &ProviderError{StatusCode: httpResponse.StatusCode, Message: string(body)}
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Tools       []openaiTool    `json:"tools,omitempty"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []openaiToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openaiToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function openaiToolFunction `json:"function"`
}

type openaiToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openaiTool struct {
	Type     string               `json:"type"`
	Function openaiToolDefinition `json:"function"`
}

type openaiToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

type openaiResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   openaiUsage    `json:"usage"`
}

type openaiChoice struct {
	Index        int           `json:"index"`
	Message      openaiMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openaiUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

func toOpenAIMessage(message Message) openaiMessage {
	wire := openaiMessage{
		Role:       string(message.Role),
		Content:    message.Content,
		ToolCallID: message.ToolCallID,
	}
	for _, call := range message.ToolCalls {
		args := string(call.Arguments)
		if args == "" {
			args = "{}"
		}
		wire.ToolCalls = append(wire.ToolCalls, openaiToolCall{
			ID:       call.ID,
			Type:     "function",
			Function: openaiToolFunction{Name: call.Name, Arguments: args},
		})
	}
	return wire
}

func (w *openaiResponse) toResponse() *Response {
	response := &Response{
		Model: w.Model,
		Usage: Usage{
			InputTokens:  w.Usage.PromptTokens,
			OutputTokens: w.Usage.CompletionTokens,
		},
	}
	if len(w.Choices) == 0 {
		return response
	}

	choice := w.Choices[0]
	response.StopReason = mapFinishReason(choice.FinishReason)
	response.Content = choice.Message.Content
	for _, call := range choice.Message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(call.Function.Arguments),
		})
	}
	if len(response.ToolCalls) > 0 {
		response.StopReason = StopReasonToolUse
	}
	return response
}

func mapFinishReason(reason string) StopReason {
	switch reason {
	case "tool_calls", "function_call":
		return StopReasonToolUse
	case "length":
		return StopReasonMaxTokens
	default:
		return StopReasonEndTurn
	}
}
