// Package assistant runs the conversational tool loop between a language
// model and the productivity commands and queries.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	identity "github.com/maccam912/vikunja-ai/internal/identity/domain"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/pkg/observability"
)

const (
	// DefaultMaxToolIterations bounds the tool rounds of one chat turn.
	DefaultMaxToolIterations = 8
	// DefaultContextTasks is how many ranked tasks go into the system prompt.
	DefaultContextTasks = 10
)

var (
	ErrTooManyIterations  = errors.New("assistant exceeded the tool iteration limit")
	ErrEmptyConversation  = errors.New("conversation must end with a user message")
	ErrAssistantDisabled  = errors.New("assistant is not configured")
	ErrMissingToolHandler = errors.New("tool executor is required")
)

const basePrompt = `You are a task-management assistant working on the user's Vikunja tasks.
Tasks are ranked by a derived score combining priority, due date, start date, age and blocking relations.
Use the tools to read and change tasks; never invent task ids. Prefer acting over asking when the request is clear.
Keep replies short and concrete.`

// SettingsReader supplies the user's assistant preferences.
type SettingsReader interface {
	Get(ctx context.Context, userID uuid.UUID) (*identity.Settings, error)
}

// AgentConfig holds the agent's collaborators.
type AgentConfig struct {
	Provider          llm.Provider
	Tools             *ToolExecutor
	Ranked            *queries.ListRankedTasksHandler
	Settings          SettingsReader
	UserID            uuid.UUID
	MaxToolIterations int
	ContextTasks      int
	Metrics           observability.Metrics
}

// ChatRequest is a conversation whose last message is the user's latest turn.
type ChatRequest struct {
	Messages []llm.Message `json:"messages"`
}

// ChatResponse is the assistant's final reply plus what it did on the way.
type ChatResponse struct {
	Reply   string                  `json:"reply"`
	Actions []ToolResult            `json:"actions"`
	Ranked  []queries.RankedTaskDTO `json:"ranked"`
	Usage   llm.Usage               `json:"usage"`
}

// Agent drives the model through tool calls until it answers.
type Agent struct {
	provider      llm.Provider
	tools         *ToolExecutor
	ranked        *queries.ListRankedTasksHandler
	settings      SettingsReader
	userID        uuid.UUID
	maxIterations int
	contextTasks  int
	metrics       observability.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

// NewAgent creates an Agent.
func NewAgent(cfg AgentConfig, logger *slog.Logger) (*Agent, error) {
	if cfg.Provider == nil {
		return nil, ErrAssistantDisabled
	}
	if cfg.Tools == nil {
		return nil, ErrMissingToolHandler
	}
	if cfg.MaxToolIterations <= 0 {
		cfg.MaxToolIterations = DefaultMaxToolIterations
	}
	if cfg.ContextTasks <= 0 {
		cfg.ContextTasks = DefaultContextTasks
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		provider:      cfg.Provider,
		tools:         cfg.Tools,
		ranked:        cfg.Ranked,
		settings:      cfg.Settings,
		userID:        cfg.UserID,
		maxIterations: cfg.MaxToolIterations,
		contextTasks:  cfg.ContextTasks,
		metrics:       cfg.Metrics,
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Chat answers the latest user message. The model may call tools up to the
// iteration limit; a model still asking for tools after that fails the turn.
func (a *Agent) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if len(req.Messages) == 0 || req.Messages[len(req.Messages)-1].Role != llm.RoleUser {
		return nil, ErrEmptyConversation
	}

	settings := a.loadSettings(ctx)
	ranked := a.rank(ctx, a.contextTasks)

	request := llm.Request{
		System:   a.systemPrompt(settings, ranked),
		Messages: append([]llm.Message(nil), req.Messages...),
		Tools:    a.tools.Definitions(),
	}
	if settings != nil {
		request.Model = settings.Model
	}

	resp := &ChatResponse{}
	for iteration := 0; ; iteration++ {
		completion, err := a.provider.Complete(ctx, request)
		if err != nil {
			return nil, fmt.Errorf("model completion: %w", err)
		}
		resp.Usage.InputTokens += completion.Usage.InputTokens
		resp.Usage.OutputTokens += completion.Usage.OutputTokens

		if len(completion.ToolCalls) == 0 {
			resp.Reply = strings.TrimSpace(completion.Content)
			break
		}
		if iteration >= a.maxIterations {
			a.logger.WarnContext(ctx, "assistant tool loop aborted", "iterations", iteration, "actions", len(resp.Actions))
			return nil, ErrTooManyIterations
		}

		request.Messages = append(request.Messages, completion.Message())
		for _, call := range completion.ToolCalls {
			result := a.tools.Execute(ctx, call)
			a.metrics.Counter(observability.MetricToolCalls, 1,
				observability.T("tool", call.Name),
				observability.T("error", fmt.Sprint(result.IsError)),
			)
			resp.Actions = append(resp.Actions, result)
			request.Messages = append(request.Messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result.Output,
				ToolCallID: call.ID,
			})
		}
	}

	resp.Ranked = a.rank(ctx, 0)

	a.metrics.Counter(observability.MetricChatTurns, 1)
	a.metrics.Counter(observability.MetricLLMTokens, resp.Usage.InputTokens+resp.Usage.OutputTokens)
	a.logger.InfoContext(ctx, "assistant replied",
		"actions", len(resp.Actions),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	return resp, nil
}

func (a *Agent) loadSettings(ctx context.Context) *identity.Settings {
	if a.settings == nil {
		return nil
	}
	settings, err := a.settings.Get(ctx, a.userID)
	if err != nil {
		a.logger.WarnContext(ctx, "settings unavailable, using defaults", "error", err)
		return nil
	}
	return settings
}

// rank returns the current ranking, or nil when it cannot be computed.
// The chat still goes ahead without it.
func (a *Agent) rank(ctx context.Context, limit int) []queries.RankedTaskDTO {
	if a.ranked == nil {
		return nil
	}
	ranked, err := a.ranked.Handle(ctx, queries.ListRankedTasksQuery{Limit: limit})
	if err != nil {
		a.logger.WarnContext(ctx, "ranking unavailable", "error", err)
		return nil
	}
	return ranked
}

func (a *Agent) systemPrompt(settings *identity.Settings, ranked []queries.RankedTaskDTO) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	fmt.Fprintf(&b, "\nCurrent time: %s.", a.now().UTC().Format(time.RFC3339))
	if settings != nil && settings.DefaultProjectID > 0 {
		fmt.Fprintf(&b, "\nNew tasks go to project %d unless the user names another.", settings.DefaultProjectID)
	}
	if settings != nil && strings.TrimSpace(settings.SystemPrompt) != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(settings.SystemPrompt))
	}

	b.WriteString("\n\nTop open tasks:\n")
	if len(ranked) == 0 {
		b.WriteString("(none)\n")
	}
	limit := min(len(ranked), a.contextTasks)
	for _, r := range ranked[:limit] {
		fmt.Fprintf(&b, "%d. #%d %s [%s] score=%.1f", r.Rank, r.ID, r.Title, r.Priority, r.Score)
		if r.DueDate != nil {
			fmt.Fprintf(&b, " due=%s", r.DueDate.UTC().Format("2006-01-02"))
		}
		if len(r.BlockedBy) > 0 {
			fmt.Fprintf(&b, " blocked_by=%v", r.BlockedBy)
		}
		b.WriteString("\n")
	}
	return b.String()
}
