package agent

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/taskflow/internal/task"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&task.Task{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestExecutor(t *testing.T) (*Executor, *task.Service) {
	t.Helper()
	svc := task.NewService(task.NewRepo(openTestDB(t)))
	return NewExecutor(svc), svc
}

func TestExecute_CreateTask(t *testing.T) {
	e, svc := newTestExecutor(t)

	res := e.Execute(context.Background(), 1, ToolCreateTask, map[string]any{"title": "Buy milk"})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Task == nil || res.Task.Title != "Buy milk" || res.Task.Completed {
		t.Fatalf("unexpected task: %+v", res.Task)
	}

	// identical repeated call creates a second, distinct task
	res2 := e.Execute(context.Background(), 1, ToolCreateTask, map[string]any{"title": "Buy milk"})
	if !res2.Success || res2.Task.ID == res.Task.ID {
		t.Fatalf("expected a distinct second task, got %+v", res2)
	}

	tasks, err := svc.List(context.Background(), 1, task.StatusAll)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
}

func TestExecute_CreateTaskMissingTitle(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), 1, ToolCreateTask, map[string]any{})
	if res.Success || res.ErrorCode != CodeInvalidParams {
		t.Fatalf("expected INVALID_PARAMS, got %+v", res)
	}
}

func TestExecute_UnknownTool(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), 1, "rm_rf_slash", map[string]any{})
	if res.Success || res.ErrorCode != CodeUnknownTool {
		t.Fatalf("expected UNKNOWN_TOOL, got %+v", res)
	}
}

func TestExecute_UpdateTaskRequiresID(t *testing.T) {
	e, _ := newTestExecutor(t)

	res := e.Execute(context.Background(), 1, ToolUpdateTask, map[string]any{"title": "New"})
	if res.Success || res.ErrorCode != CodeInvalidParams {
		t.Fatalf("expected INVALID_PARAMS, got %+v", res)
	}
}

func TestExecute_OwnershipScoping(t *testing.T) {
	e, svc := newTestExecutor(t)

	created, err := svc.Create(context.Background(), 1, "mine", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// another user acting on the task must see not-found, never forbidden
	res := e.Execute(context.Background(), 2, ToolDeleteTask, map[string]any{
		"task_id": float64(created.ID),
	})
	if res.Success || res.ErrorCode != CodeNotFound {
		t.Fatalf("expected NOT_FOUND for foreign task, got %+v", res)
	}

	// the task survives
	if _, err := svc.Get(context.Background(), 1, created.ID); err != nil {
		t.Fatalf("task should still exist: %v", err)
	}
}

func TestExecute_CallerIdentityIsNotOverridable(t *testing.T) {
	e, svc := newTestExecutor(t)

	// model-supplied identity fields are ignored; the task lands on user 7
	res := e.Execute(context.Background(), 7, ToolCreateTask, map[string]any{
		"title":      "tamper",
		"user_id":    float64(999),
		"user_token": "fake-jwt",
	})
	if !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}

	if _, err := svc.Get(context.Background(), 7, res.Task.ID); err != nil {
		t.Fatalf("task should belong to caller 7: %v", err)
	}
	if _, err := svc.Get(context.Background(), 999, res.Task.ID); err != gorm.ErrRecordNotFound {
		t.Fatalf("task must not belong to user 999, got err=%v", err)
	}
}

func TestExecute_MarkCompleteAndStats(t *testing.T) {
	e, svc := newTestExecutor(t)

	ids := make([]uint64, 0, 5)
	for i := 0; i < 5; i++ {
		created, err := svc.Create(context.Background(), 3, "t", "")
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		ids = append(ids, created.ID)
	}
	for i := 0; i < 3; i++ {
		res := e.Execute(context.Background(), 3, ToolMarkTaskComplete, map[string]any{
			"task_id": float64(ids[i]),
		})
		if !res.Success {
			t.Fatalf("mark complete %d: %+v", i, res)
		}
	}

	res := e.Execute(context.Background(), 3, ToolGetTaskStats, nil)
	if !res.Success || res.Stats == nil {
		t.Fatalf("expected stats, got %+v", res)
	}
	s := res.Stats
	if s.Total != 5 || s.Active != 2 || s.Completed != 3 || s.CompletionRate != 60.0 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestExecute_TaskIDAcceptsStringAndNumber(t *testing.T) {
	e, svc := newTestExecutor(t)

	created, err := svc.Create(context.Background(), 1, "flexible id", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res := e.Execute(context.Background(), 1, ToolMarkTaskComplete, map[string]any{
		"task_id": "1",
	})
	if !res.Success {
		t.Fatalf("string id: %+v", res)
	}

	res = e.Execute(context.Background(), 1, ToolMarkTaskComplete, map[string]any{
		"task_id":   float64(created.ID),
		"completed": false,
	})
	if !res.Success || res.Task.Completed {
		t.Fatalf("numeric id / uncomplete: %+v", res)
	}
}

func TestExecute_ListTasksFilter(t *testing.T) {
	e, svc := newTestExecutor(t)

	a, _ := svc.Create(context.Background(), 1, "a", "")
	if _, err := svc.Create(context.Background(), 1, "b", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetCompleted(context.Background(), 1, a.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	res := e.Execute(context.Background(), 1, ToolListTasks, map[string]any{"status": "active"})
	if !res.Success || res.Count == nil || *res.Count != 1 {
		t.Fatalf("active filter: %+v", res)
	}
	if res.Tasks[0].Title != "b" {
		t.Fatalf("expected only task b, got %+v", res.Tasks)
	}

	res = e.Execute(context.Background(), 1, ToolListTasks, nil)
	if !res.Success || *res.Count != 2 {
		t.Fatalf("all filter: %+v", res)
	}
}

func TestCatalog_StableOrder(t *testing.T) {
	want := []string{
		ToolCreateTask, ToolListTasks, ToolUpdateTask,
		ToolDeleteTask, ToolMarkTaskComplete, ToolGetTaskStats,
	}
	for i := 0; i < 3; i++ {
		got := Catalog()
		if len(got) != len(want) {
			t.Fatalf("expected %d tools, got %d", len(want), len(got))
		}
		for j, tool := range got {
			if tool.Function.Name != want[j] {
				t.Fatalf("tool %d: want %s got %s", j, want[j], tool.Function.Name)
			}
			if tool.Type != "function" {
				t.Fatalf("tool %s: unexpected type %q", tool.Function.Name, tool.Type)
			}
		}
	}
}
