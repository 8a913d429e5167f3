package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// ReminderMessage is the queue payload: just the task id, the worker reloads
// the rest from the database so stale snapshots never get mailed out.
type ReminderMessage struct {
	TaskID uint64 `json:"task_id"`
}

// Publisher owns one connection/channel pair and the reminder queue topology.
type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare topology: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// QueueDeclarer is the slice of amqp.Channel that topology setup needs.
type QueueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// DeclareTopology sets up three queues around the main one:
//   - <queue>.dlq      terminal parking for messages the worker gave up on
//   - <queue>.retry    TTL queue that dead-letters back into <queue>
//   - <queue>          dead-letters into the DLQ on nack(requeue=false)
//
// Both the publisher and the worker must declare through this function:
// redeclaring a queue with different arguments is a channel-level
// PRECONDITION_FAILED, so the argument tables have to match exactly.
func DeclareTopology(ch QueueDeclarer, queue string) error {
	dlq := queue + ".dlq"
	retry := queue + ".retry"

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(retry, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}); err != nil {
		return err
	}
	_, err := ch.QueueDeclare(queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": dlq,
	})
	return err
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// PublishReminder enqueues one durable reminder job on the default exchange.
func (p *Publisher) PublishReminder(ctx context.Context, taskID uint64) error {
	body, err := json.Marshal(ReminderMessage{TaskID: taskID})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(cctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
}
