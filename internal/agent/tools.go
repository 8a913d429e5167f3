package agent

import "github.com/suPer8Hu/taskflow/internal/ai"

// Tool names. The catalog is fixed; there is no runtime registration.
const (
	ToolCreateTask       = "create_task"
	ToolListTasks        = "list_tasks"
	ToolUpdateTask       = "update_task"
	ToolDeleteTask       = "delete_task"
	ToolMarkTaskComplete = "mark_task_complete"
	ToolGetTaskStats     = "get_task_stats"
)

// Catalog returns the tool declarations offered to the model, in a stable
// order. Descriptors are pure data; execution lives in the Executor.
func Catalog() []ai.Tool {
	return []ai.Tool{
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolCreateTask,
				Description: "Create a new task. Use this when the user wants to add a task.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title": map[string]any{
							"type":        "string",
							"description": "The title of the task",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "Optional description of the task",
						},
					},
					"required": []string{"title"},
				},
			},
		},
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolListTasks,
				Description: "List the user's tasks. Use this when the user asks about their tasks.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status": map[string]any{
							"type":        "string",
							"enum":        []string{"all", "active", "completed"},
							"description": "Filter tasks by status (default: all)",
						},
					},
				},
			},
		},
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolUpdateTask,
				Description: "Update an existing task. Use this when the user wants to modify a task.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{
							"type":        "string",
							"description": "The ID of the task to update",
						},
						"title": map[string]any{
							"type":        "string",
							"description": "New title for the task",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "New description for the task",
						},
						"completed": map[string]any{
							"type":        "boolean",
							"description": "New completion status for the task",
						},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolDeleteTask,
				Description: "Delete a task permanently. Use this when the user wants to remove a task.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{
							"type":        "string",
							"description": "The ID of the task to delete",
						},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolMarkTaskComplete,
				Description: "Mark a task as complete or incomplete.",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{
							"type":        "string",
							"description": "The ID of the task",
						},
						"completed": map[string]any{
							"type":        "boolean",
							"description": "True to mark complete, false to mark incomplete (default: true)",
						},
					},
					"required": []string{"task_id"},
				},
			},
		},
		{
			Type: "function",
			Function: ai.ToolFunction{
				Name:        ToolGetTaskStats,
				Description: "Get summary statistics about the user's tasks.",
				Parameters: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
	}
}
