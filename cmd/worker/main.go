package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/taskflow/internal/config"
	"github.com/suPer8Hu/taskflow/internal/db"
	"github.com/suPer8Hu/taskflow/internal/email"
	"github.com/suPer8Hu/taskflow/internal/models"
	"github.com/suPer8Hu/taskflow/internal/store/rabbitmq"
	"github.com/suPer8Hu/taskflow/internal/task"
	"gorm.io/gorm"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := task.NewRepo(gdb)

	smtp := email.SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	// same topology as the publisher; differing arguments on redeclare are a
	// channel error
	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("reminder worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.ReminderMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.TaskID == 0 {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := sendReminder(ctx, gdb, repo, smtp, m.TaskID); err != nil {
					log.Printf("worker=%d reminder task_id=%d failed cost=%s err=%v", workerID, m.TaskID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed task_id=%d err=%v", workerID, m.TaskID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func sendReminder(ctx context.Context, gdb *gorm.DB, repo *task.Repo, smtp email.SMTPConfig, taskID uint64) error {
	t, err := repo.GetByID(ctx, taskID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			// task was deleted after enqueueing, nothing to do
			return nil
		}
		return err
	}
	if t.Completed {
		return nil
	}

	var owner models.User
	if err := gdb.WithContext(ctx).First(&owner, t.UserID).Error; err != nil {
		return err
	}

	subject := "TaskFlow reminder: " + t.Title
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder for your task:\n\n  %s\n", owner.Username, t.Title)
	if t.Description != "" {
		body += "\n  " + t.Description + "\n"
	}
	if t.DueAt != nil {
		body += fmt.Sprintf("\nDue: %s\n", t.DueAt.Format(time.RFC3339))
	}
	body += "\nBest regards,\nTaskFlow\n"

	return email.SendText(smtp, owner.Email, subject, body)
}
