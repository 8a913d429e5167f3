package task

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Task{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return NewService(NewRepo(db))
}

func TestCreate_TrimsAndDefaults(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), 1, "  Buy milk  ", "  2% please  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Title != "Buy milk" || created.Description != "2% please" {
		t.Fatalf("whitespace not trimmed: %+v", created)
	}
	if created.Completed || created.Priority != "medium" {
		t.Fatalf("unexpected defaults: %+v", created)
	}
	if created.ID == 0 {
		t.Fatalf("expected an assigned id")
	}

	if _, err := svc.Create(context.Background(), 1, "   ", ""); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestList_StatusFilters(t *testing.T) {
	svc := newTestService(t)

	a, _ := svc.Create(context.Background(), 1, "a", "")
	if _, err := svc.Create(context.Background(), 1, "b", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), 2, "other user", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SetCompleted(context.Background(), 1, a.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	all, err := svc.List(context.Background(), 1, StatusAll)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("list must be user-scoped, got %d", len(all))
	}

	active, _ := svc.List(context.Background(), 1, StatusActive)
	if len(active) != 1 || active[0].Title != "b" {
		t.Fatalf("active filter: %+v", active)
	}

	completed, _ := svc.List(context.Background(), 1, StatusCompleted)
	if len(completed) != 1 || completed[0].Title != "a" {
		t.Fatalf("completed filter: %+v", completed)
	}

	// unknown filter behaves like all
	loose, _ := svc.List(context.Background(), 1, "urgent")
	if len(loose) != 2 {
		t.Fatalf("unknown filter should not exclude tasks, got %d", len(loose))
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc := newTestService(t)

	created, _ := svc.Create(context.Background(), 1, "original", "desc")

	title := "renamed"
	updated, err := svc.Update(context.Background(), 1, created.ID, Patch{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "renamed" || updated.Description != "desc" {
		t.Fatalf("patch must not clobber unset fields: %+v", updated)
	}

	blank := "   "
	if _, err := svc.Update(context.Background(), 1, created.ID, Patch{Title: &blank}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle on blank rename, got %v", err)
	}

	// updating a reminder re-arms it
	remind := time.Now().Add(time.Hour)
	updated, err = svc.Update(context.Background(), 1, created.ID, Patch{RemindAt: &remind})
	if err != nil {
		t.Fatalf("update remind: %v", err)
	}
	if updated.RemindAt == nil || updated.ReminderSent {
		t.Fatalf("reminder should be re-armed: %+v", updated)
	}
}

func TestOwnership(t *testing.T) {
	svc := newTestService(t)

	created, _ := svc.Create(context.Background(), 1, "mine", "")

	if _, err := svc.Get(context.Background(), 2, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("foreign get: want record-not-found, got %v", err)
	}
	if err := svc.Delete(context.Background(), 2, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("foreign delete: want record-not-found, got %v", err)
	}
	if _, err := svc.Update(context.Background(), 2, created.ID, Patch{}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("foreign update: want record-not-found, got %v", err)
	}

	if err := svc.Delete(context.Background(), 1, created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := svc.Delete(context.Background(), 1, created.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("repeat delete: want record-not-found, got %v", err)
	}
}

func TestToggleCompleted(t *testing.T) {
	svc := newTestService(t)

	created, _ := svc.Create(context.Background(), 1, "flip", "")

	toggled, err := svc.ToggleCompleted(context.Background(), 1, created.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("first toggle: %+v err=%v", toggled, err)
	}
	toggled, err = svc.ToggleCompleted(context.Background(), 1, created.ID)
	if err != nil || toggled.Completed {
		t.Fatalf("second toggle: %+v err=%v", toggled, err)
	}
}

func TestStats_Rounding(t *testing.T) {
	svc := newTestService(t)

	stats, err := svc.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 || stats.CompletionRate != 0 {
		t.Fatalf("empty stats: %+v", stats)
	}

	ids := make([]uint64, 0, 3)
	for i := 0; i < 3; i++ {
		created, _ := svc.Create(context.Background(), 1, "t", "")
		ids = append(ids, created.ID)
	}
	if _, err := svc.SetCompleted(context.Background(), 1, ids[0], true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	stats, _ = svc.Stats(context.Background(), 1)
	if stats.Total != 3 || stats.Active != 2 || stats.Completed != 1 {
		t.Fatalf("counts: %+v", stats)
	}
	// 1/3 rounds to one decimal place
	if stats.CompletionRate != 33.3 {
		t.Fatalf("rate: got %v want 33.3", stats.CompletionRate)
	}
}

func TestDueReminders(t *testing.T) {
	svc := newTestService(t)
	now := time.Now()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	due, _ := svc.Create(context.Background(), 1, "due", "")
	if _, err := svc.Update(context.Background(), 1, due.ID, Patch{RemindAt: &past}); err != nil {
		t.Fatalf("update: %v", err)
	}
	notYet, _ := svc.Create(context.Background(), 1, "not yet", "")
	if _, err := svc.Update(context.Background(), 1, notYet.ID, Patch{RemindAt: &future}); err != nil {
		t.Fatalf("update: %v", err)
	}
	done, _ := svc.Create(context.Background(), 1, "done", "")
	if _, err := svc.Update(context.Background(), 1, done.ID, Patch{RemindAt: &past}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.SetCompleted(context.Background(), 1, done.ID, true); err != nil {
		t.Fatalf("complete: %v", err)
	}

	pending, err := svc.DueReminders(context.Background(), now, 100)
	if err != nil {
		t.Fatalf("due reminders: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != due.ID {
		t.Fatalf("expected only the overdue active task, got %+v", pending)
	}

	if err := svc.MarkReminderSent(context.Background(), due.ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	pending, _ = svc.DueReminders(context.Background(), now, 100)
	if len(pending) != 0 {
		t.Fatalf("sent reminder must not reappear, got %+v", pending)
	}
}
