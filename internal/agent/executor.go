package agent

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/suPer8Hu/taskflow/internal/task"
	"gorm.io/gorm"
)

// Error codes surfaced in tool results.
const (
	CodeUnknownTool   = "UNKNOWN_TOOL"
	CodeInvalidParams = "INVALID_PARAMS"
	CodeNotFound      = "NOT_FOUND"
	CodeExecution     = "TOOL_EXECUTION_ERROR"
)

// Result is the structured outcome of one tool call. It is serialized into a
// tool-role message and fed back to the model, so time fields must survive a
// JSON round trip; encoding/json writes time.Time as RFC3339, which does.
type Result struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Task      *task.Task  `json:"task,omitempty"`
	Tasks     []task.Task `json:"tasks,omitempty"`
	Count     *int        `json:"count,omitempty"`
	Stats     *task.Stats `json:"stats,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

func failure(code, msg string) Result {
	return Result{Success: false, Error: msg, ErrorCode: code}
}

type handlerFunc func(ctx context.Context, userID uint64, args map[string]any) Result

// Executor resolves validated tool calls against the task service. The acting
// user id always comes from the authenticated caller; identity-like fields in
// the model-supplied arguments are ignored.
type Executor struct {
	handlers map[string]handlerFunc
}

func NewExecutor(tasks *task.Service) *Executor {
	e := &Executor{}
	e.handlers = map[string]handlerFunc{
		ToolCreateTask:       e.wrap(tasks, createTask),
		ToolListTasks:        e.wrap(tasks, listTasks),
		ToolUpdateTask:       e.wrap(tasks, updateTask),
		ToolDeleteTask:       e.wrap(tasks, deleteTask),
		ToolMarkTaskComplete: e.wrap(tasks, markTaskComplete),
		ToolGetTaskStats:     e.wrap(tasks, getTaskStats),
	}
	return e
}

type taskHandler func(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error)

// wrap normalizes collaborator failures into Results so a failing tool call
// never aborts the conversation turn.
func (e *Executor) wrap(tasks *task.Service, h taskHandler) handlerFunc {
	return func(ctx context.Context, userID uint64, args map[string]any) Result {
		res, err := h(ctx, tasks, userID, args)
		if err == nil {
			return res
		}
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return failure(CodeNotFound, "Task not found")
		case errors.Is(err, task.ErrEmptyTitle):
			return failure(CodeInvalidParams, err.Error())
		default:
			return failure(CodeExecution, err.Error())
		}
	}
}

// Execute runs one tool call. Unknown names come back as an UNKNOWN_TOOL
// result, reported to the model rather than raised to the caller.
func (e *Executor) Execute(ctx context.Context, userID uint64, name string, args map[string]any) Result {
	h, ok := e.handlers[name]
	if !ok {
		return failure(CodeUnknownTool, fmt.Sprintf("Unknown tool: %s", name))
	}
	return h(ctx, userID, args)
}

func createTask(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error) {
	title, ok := stringArg(args, "title")
	if !ok || title == "" {
		return failure(CodeInvalidParams, "title is required"), nil
	}
	description, _ := stringArg(args, "description")

	t, err := tasks.Create(ctx, userID, title, description)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Task: t, Message: "Created task: " + t.Title}, nil
}

func listTasks(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error) {
	status, _ := stringArg(args, "status")
	if status == "" {
		status = task.StatusAll
	}
	out, err := tasks.List(ctx, userID, status)
	if err != nil {
		return Result{}, err
	}
	n := len(out)
	return Result{Success: true, Tasks: out, Count: &n}, nil
}

func updateTask(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error) {
	taskID, ok := taskIDArg(args)
	if !ok {
		return failure(CodeInvalidParams, "task_id is required"), nil
	}

	var patch task.Patch
	if v, ok := stringArg(args, "title"); ok {
		patch.Title = &v
	}
	if v, ok := stringArg(args, "description"); ok {
		patch.Description = &v
	}
	if v, ok := boolArg(args, "completed"); ok {
		patch.Completed = &v
	}

	t, err := tasks.Update(ctx, userID, taskID, patch)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Task: t, Message: "Task updated successfully"}, nil
}

func deleteTask(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error) {
	taskID, ok := taskIDArg(args)
	if !ok {
		return failure(CodeInvalidParams, "task_id is required"), nil
	}
	if err := tasks.Delete(ctx, userID, taskID); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: "Task deleted successfully"}, nil
}

func markTaskComplete(ctx context.Context, tasks *task.Service, userID uint64, args map[string]any) (Result, error) {
	taskID, ok := taskIDArg(args)
	if !ok {
		return failure(CodeInvalidParams, "task_id is required"), nil
	}
	completed := true
	if v, ok := boolArg(args, "completed"); ok {
		completed = v
	}

	t, err := tasks.SetCompleted(ctx, userID, taskID, completed)
	if err != nil {
		return Result{}, err
	}
	state := "complete"
	if !completed {
		state = "incomplete"
	}
	return Result{Success: true, Task: t, Message: "Task marked as " + state}, nil
}

func getTaskStats(ctx context.Context, tasks *task.Service, userID uint64, _ map[string]any) (Result, error) {
	stats, err := tasks.Stats(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Stats: stats}, nil
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func boolArg(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// taskIDArg accepts a numeric id or its string form; models use either.
func taskIDArg(args map[string]any) (uint64, bool) {
	v, ok := args["task_id"]
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseUint(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		if x < 0 || x != float64(uint64(x)) {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}
