package task

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GetOwned loads a task only when it belongs to userID; anything else is
// gorm.ErrRecordNotFound, including tasks owned by other users.
func (r *Repo) GetOwned(ctx context.Context, userID, taskID uint64) (*Task, error) {
	var t Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID loads a task without ownership scoping. Reserved for system paths
// (the reminder worker); request handlers go through GetOwned.
func (r *Repo) GetByID(ctx context.Context, taskID uint64) (*Task, error) {
	var t Task
	if err := r.db.WithContext(ctx).First(&t, taskID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns the user's tasks newest-first.
func (r *Repo) List(ctx context.Context, userID uint64, completed *bool) ([]Task, error) {
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if completed != nil {
		q = q.Where("completed = ?", *completed)
	}

	var tasks []Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *Repo) Save(ctx context.Context, t *Task) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *Repo) DeleteOwned(ctx context.Context, userID, taskID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repo) CountByCompleted(ctx context.Context, userID uint64) (total, completed int64, err error) {
	if err = r.db.WithContext(ctx).Model(&Task{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&Task{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&completed).Error; err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

// ListDueReminders returns tasks whose reminder is due and not yet sent.
func (r *Repo) ListDueReminders(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 100
	}
	var tasks []Task
	if err := r.db.WithContext(ctx).
		Where("remind_at IS NOT NULL AND remind_at <= ? AND reminder_sent = ? AND completed = ?", now, false, false).
		Order("remind_at ASC").
		Limit(limit).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *Repo) MarkReminderSent(ctx context.Context, taskID uint64) error {
	return r.db.WithContext(ctx).Model(&Task{}).
		Where("id = ?", taskID).
		Update("reminder_sent", true).Error
}
