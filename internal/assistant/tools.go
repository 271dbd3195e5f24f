package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maccam912/vikunja-ai/internal/assistant/llm"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/commands"
	"github.com/maccam912/vikunja-ai/internal/productivity/application/queries"
	"github.com/maccam912/vikunja-ai/internal/productivity/domain/task"
)

// Tool names offered to the model.
const (
	ToolListTasks     = "list_tasks"
	ToolTopTask       = "top_task"
	ToolExplainTask   = "explain_task"
	ToolCreateTask    = "create_task"
	ToolUpdateTask    = "update_task"
	ToolCompleteTask  = "complete_task"
	ToolDeleteTask    = "delete_task"
	ToolRelateTasks   = "relate_tasks"
	ToolUnrelateTasks = "unrelate_tasks"
)

// ErrUnknownTool is reported to the model for calls it made up.
var ErrUnknownTool = errors.New("unknown tool")

// Handlers are the productivity operations the tools drive.
type Handlers struct {
	ListRanked  *queries.ListRankedTasksHandler
	TopPriority *queries.GetTopPriorityHandler
	Explain     *queries.ExplainTaskHandler
	Create      *commands.CreateTaskHandler
	Update      *commands.UpdateTaskHandler
	Complete    *commands.CompleteTaskHandler
	Delete      *commands.DeleteTaskHandler
	Relate      *commands.RelateTasksHandler
}

// ToolResult is the outcome of one tool call. Output is the JSON handed back
// to the model.
type ToolResult struct {
	CallID    string          `json:"call_id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Output    string          `json:"output"`
	IsError   bool            `json:"is_error"`
}

// ToolExecutor runs model tool calls against the productivity handlers.
type ToolExecutor struct {
	handlers Handlers
	logger   *slog.Logger
}

// NewToolExecutor creates a ToolExecutor.
func NewToolExecutor(handlers Handlers, logger *slog.Logger) *ToolExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ToolExecutor{handlers: handlers, logger: logger}
}

// Execute runs one call. Failures, unknown tools and bad arguments included,
// become error results for the model rather than Go errors.
func (e *ToolExecutor) Execute(ctx context.Context, call llm.ToolCall) ToolResult {
	result := ToolResult{CallID: call.ID, Name: call.Name, Arguments: call.Arguments}

	output, err := e.dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		e.logger.WarnContext(ctx, "tool call failed", "tool", call.Name, "error", err)
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		result.Output = string(data)
		result.IsError = true
		return result
	}

	data, err := json.Marshal(output)
	if err != nil {
		result.Output = fmt.Sprintf(`{"error":%q}`, err.Error())
		result.IsError = true
		return result
	}
	e.logger.DebugContext(ctx, "tool call executed", "tool", call.Name)
	result.Output = string(data)
	return result
}

func (e *ToolExecutor) dispatch(ctx context.Context, name string, raw json.RawMessage) (any, error) {
	h := e.handlers
	switch name {
	case ToolListTasks:
		var args struct {
			IncludeDone bool  `json:"include_done"`
			ProjectID   int64 `json:"project_id"`
			Limit       int   `json:"limit"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if args.Limit <= 0 {
			args.Limit = 20
		}
		ranked, err := h.ListRanked.Handle(ctx, queries.ListRankedTasksQuery{
			IncludeDone: args.IncludeDone,
			ProjectID:   args.ProjectID,
			Limit:       args.Limit,
		})
		if err != nil {
			return nil, err
		}
		out := make([]rankedSummary, 0, len(ranked))
		for _, r := range ranked {
			out = append(out, summarizeRanked(r))
		}
		return out, nil

	case ToolTopTask:
		var args struct {
			ProjectID int64 `json:"project_id"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		top, err := h.TopPriority.Handle(ctx, queries.GetTopPriorityQuery{ProjectID: args.ProjectID})
		if errors.Is(err, queries.ErrNoIncompleteTasks) {
			return map[string]any{"task": nil, "message": err.Error()}, nil
		}
		if err != nil {
			return nil, err
		}
		return summarizeRanked(*top), nil

	case ToolExplainTask:
		var args taskIDArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := args.validate(); err != nil {
			return nil, err
		}
		return h.Explain.Handle(ctx, queries.ExplainTaskQuery{TaskID: args.TaskID})

	case ToolCreateTask:
		var args struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
			DueDate     string `json:"due_date"`
			StartDate   string `json:"start_date"`
			ProjectID   int64  `json:"project_id"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		cmd := commands.CreateTaskCommand{
			ProjectID:   args.ProjectID,
			Title:       args.Title,
			Description: args.Description,
			Priority:    args.Priority,
		}
		var err error
		if cmd.DueDate, err = optionalDate(args.DueDate); err != nil {
			return nil, err
		}
		if cmd.StartDate, err = optionalDate(args.StartDate); err != nil {
			return nil, err
		}
		res, err := h.Create.Handle(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return summarizeTask(res.Task), nil

	case ToolUpdateTask:
		var args struct {
			TaskID         int64   `json:"task_id"`
			Title          *string `json:"title"`
			Description    *string `json:"description"`
			Priority       *string `json:"priority"`
			DueDate        *string `json:"due_date"`
			StartDate      *string `json:"start_date"`
			ClearDueDate   bool    `json:"clear_due_date"`
			ClearStartDate bool    `json:"clear_start_date"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := (taskIDArgs{TaskID: args.TaskID}).validate(); err != nil {
			return nil, err
		}
		cmd := commands.UpdateTaskCommand{
			TaskID:         args.TaskID,
			Title:          args.Title,
			Description:    args.Description,
			Priority:       args.Priority,
			ClearDueDate:   args.ClearDueDate,
			ClearStartDate: args.ClearStartDate,
		}
		var err error
		if args.DueDate != nil {
			if cmd.DueDate, err = task.ParseDate(*args.DueDate); err != nil {
				return nil, err
			}
		}
		if args.StartDate != nil {
			if cmd.StartDate, err = task.ParseDate(*args.StartDate); err != nil {
				return nil, err
			}
		}
		res, err := h.Update.Handle(ctx, cmd)
		if err != nil {
			return nil, err
		}
		return map[string]any{"task": summarizeTask(res.Task), "fields": res.Fields}, nil

	case ToolCompleteTask:
		var args taskIDArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := args.validate(); err != nil {
			return nil, err
		}
		res, err := h.Complete.Handle(ctx, commands.CompleteTaskCommand{TaskID: args.TaskID})
		if err != nil {
			return nil, err
		}
		return summarizeTask(res.Task), nil

	case ToolDeleteTask:
		var args taskIDArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		if err := args.validate(); err != nil {
			return nil, err
		}
		if _, err := h.Delete.Handle(ctx, commands.DeleteTaskCommand{TaskID: args.TaskID}); err != nil {
			return nil, err
		}
		return map[string]any{"deleted": args.TaskID}, nil

	case ToolRelateTasks, ToolUnrelateTasks:
		var args struct {
			TaskID      int64  `json:"task_id"`
			OtherTaskID int64  `json:"other_task_id"`
			Kind        string `json:"kind"`
		}
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		res, err := h.Relate.Handle(ctx, commands.RelateTasksCommand{
			TaskID:      args.TaskID,
			OtherTaskID: args.OtherTaskID,
			Kind:        args.Kind,
			Remove:      name == ToolUnrelateTasks,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"task_id":       res.TaskID,
			"other_task_id": res.OtherTaskID,
			"kind":          res.Kind,
			"removed":       res.Removed,
		}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
}

type taskIDArgs struct {
	TaskID int64 `json:"task_id"`
}

func (a taskIDArgs) validate() error {
	if a.TaskID <= 0 {
		return errors.New("task_id must be a positive integer")
	}
	return nil
}

func decodeArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	return task.ParseDate(s)
}

type taskSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ProjectID   int64   `json:"project_id"`
	Priority    string  `json:"priority"`
	Done        bool    `json:"done"`
	DueDate     string  `json:"due_date,omitempty"`
	StartDate   string  `json:"start_date,omitempty"`
	BlockedBy   []int64 `json:"blocked_by,omitempty"`
	Blocking    []int64 `json:"blocking,omitempty"`
}

type rankedSummary struct {
	Rank int `json:"rank"`
	taskSummary
	Score       float64 `json:"score"`
	Blocked     bool    `json:"blocked"`
	Explanation string  `json:"explanation"`
}

func summarizeTask(t *task.Task) taskSummary {
	return taskSummary{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Priority:    t.Priority.String(),
		Done:        t.Done,
		DueDate:     formatDate(t.DueDate),
		StartDate:   formatDate(t.StartDate),
		BlockedBy:   t.BlockedByIDs(),
		Blocking:    t.BlockingIDs(),
	}
}

func summarizeRanked(r queries.RankedTaskDTO) rankedSummary {
	return rankedSummary{
		Rank: r.Rank,
		taskSummary: taskSummary{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			ProjectID:   r.ProjectID,
			Priority:    r.Priority,
			Done:        r.Done,
			DueDate:     formatDate(r.DueDate),
			StartDate:   formatDate(r.StartDate),
			BlockedBy:   r.BlockedBy,
			Blocking:    r.Blocking,
		},
		Score:       r.Score,
		Blocked:     r.Blocked,
		Explanation: r.Explanation,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// Definitions returns the tool schemas sent with every request.
func (e *ToolExecutor) Definitions() []llm.Tool {
	return toolDefinitions
}

var toolDefinitions = []llm.Tool{
	{
		Name:        ToolListTasks,
		Description: "List tasks ranked by derived priority score, most urgent first.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"include_done":{"type":"boolean","description":"include completed tasks"},
			"project_id":{"type":"integer","description":"only tasks in this project"},
			"limit":{"type":"integer","description":"maximum number of tasks, default 20"}
		}}`),
	},
	{
		Name:        ToolTopTask,
		Description: "Return the single open task to work on next.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"project_id":{"type":"integer","description":"only tasks in this project"}
		}}`),
	},
	{
		Name:        ToolExplainTask,
		Description: "Explain how a task's score is made up, including its blockers and the tasks it blocks.",
		Parameters:  taskIDSchema,
	},
	{
		Name:        ToolCreateTask,
		Description: "Create a task. Dates are YYYY-MM-DD or RFC 3339.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"title":{"type":"string"},
			"description":{"type":"string"},
			"priority":{"type":"string","enum":["unset","low","medium","high","urgent","do_now"]},
			"due_date":{"type":"string"},
			"start_date":{"type":"string"},
			"project_id":{"type":"integer","description":"defaults to the user's default project"}
		},"required":["title"]}`),
	},
	{
		Name:        ToolUpdateTask,
		Description: "Change fields of a task. Omitted fields are left alone.",
		Parameters: json.RawMessage(`{"type":"object","properties":{
			"task_id":{"type":"integer"},
			"title":{"type":"string"},
			"description":{"type":"string"},
			"priority":{"type":"string","enum":["unset","low","medium","high","urgent","do_now"]},
			"due_date":{"type":"string"},
			"start_date":{"type":"string"},
			"clear_due_date":{"type":"boolean"},
			"clear_start_date":{"type":"boolean"}
		},"required":["task_id"]}`),
	},
	{
		Name:        ToolCompleteTask,
		Description: "Mark a task done.",
		Parameters:  taskIDSchema,
	},
	{
		Name:        ToolDeleteTask,
		Description: "Delete a task permanently.",
		Parameters:  taskIDSchema,
	},
	{
		Name:        ToolRelateTasks,
		Description: "Relate two tasks. kind=blocking means task_id must be done before other_task_id; kind=blocked is the reverse.",
		Parameters:  relationSchema,
	},
	{
		Name:        ToolUnrelateTasks,
		Description: "Remove a relation between two tasks.",
		Parameters:  relationSchema,
	},
}

var taskIDSchema = json.RawMessage(`{"type":"object","properties":{"task_id":{"type":"integer"}},"required":["task_id"]}`)

var relationSchema = json.RawMessage(`{"type":"object","properties":{
	"task_id":{"type":"integer"},
	"other_task_id":{"type":"integer"},
	"kind":{"type":"string","enum":["blocking","blocked","subtask","parenttask","related","duplicateof","duplicates","precedes","follows","copiedfrom","copiedto"]}
},"required":["task_id","other_task_id","kind"]}`)
