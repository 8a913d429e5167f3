package task

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

var ErrEmptyTitle = errors.New("task title is required")

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID uint64, title, description string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	t := &Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Completed:   false,
		Priority:    "medium",
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, userID, taskID uint64) (*Task, error) {
	return s.repo.GetOwned(ctx, userID, taskID)
}

// List filters by status: all, active or completed. Unknown filters behave
// like all, matching how the model tends to improvise filter values.
func (s *Service) List(ctx context.Context, userID uint64, status string) ([]Task, error) {
	var completed *bool
	switch status {
	case StatusActive:
		v := false
		completed = &v
	case StatusCompleted:
		v := true
		completed = &v
	}
	return s.repo.List(ctx, userID, completed)
}

func (s *Service) Update(ctx context.Context, userID, taskID uint64, patch Patch) (*Task, error) {
	t, err := s.repo.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		t.Title = title
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		t.Tags = *patch.Tags
	}
	if patch.DueAt != nil {
		t.DueAt = patch.DueAt
	}
	if patch.RemindAt != nil {
		t.RemindAt = patch.RemindAt
		t.ReminderSent = false
	}

	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, userID, taskID uint64) error {
	return s.repo.DeleteOwned(ctx, userID, taskID)
}

func (s *Service) SetCompleted(ctx context.Context, userID, taskID uint64, completed bool) (*Task, error) {
	t, err := s.repo.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Completed = completed
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ToggleCompleted(ctx context.Context, userID, taskID uint64) (*Task, error) {
	t, err := s.repo.GetOwned(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Completed = !t.Completed
	if err := s.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Stats(ctx context.Context, userID uint64) (*Stats, error) {
	total, completed, err := s.repo.CountByCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*1000) / 10
	}
	return &Stats{
		Total:          int(total),
		Active:         int(total - completed),
		Completed:      int(completed),
		CompletionRate: rate,
	}, nil
}

func (s *Service) DueReminders(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	return s.repo.ListDueReminders(ctx, now, limit)
}

func (s *Service) MarkReminderSent(ctx context.Context, taskID uint64) error {
	return s.repo.MarkReminderSent(ctx, taskID)
}
