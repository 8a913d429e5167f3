package reminder

import (
	"context"
	"log"
	"time"

	"github.com/suPer8Hu/taskflow/internal/task"
)

// Enqueuer publishes a reminder job for a task.
type Enqueuer interface {
	PublishReminder(ctx context.Context, taskID uint64) error
}

// Scheduler periodically scans for tasks whose reminder is due and enqueues
// one job per task. A task is marked sent as soon as its job is enqueued; the
// durable queue owns delivery from there.
type Scheduler struct {
	tasks    *task.Service
	queue    Enqueuer
	interval time.Duration
	batch    int
}

func NewScheduler(tasks *task.Service, queue Enqueuer, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{tasks: tasks, queue: queue, interval: interval, batch: 100}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("reminder scheduler started interval=%s", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				log.Printf("reminder sweep failed err=%v", err)
			}
		}
	}
}

// Sweep enqueues jobs for all currently due reminders.
func (s *Scheduler) Sweep(ctx context.Context) error {
	due, err := s.tasks.DueReminders(ctx, time.Now(), s.batch)
	if err != nil {
		return err
	}
	for _, t := range due {
		if err := s.queue.PublishReminder(ctx, t.ID); err != nil {
			log.Printf("reminder enqueue failed task_id=%d err=%v", t.ID, err)
			continue // retried next sweep, still unsent
		}
		if err := s.tasks.MarkReminderSent(ctx, t.ID); err != nil {
			log.Printf("reminder mark sent failed task_id=%d err=%v", t.ID, err)
		}
	}
	return nil
}
