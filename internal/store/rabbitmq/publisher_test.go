package rabbitmq

import (
	"reflect"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type declaration struct {
	name    string
	durable bool
	args    amqp.Table
}

type fakeDeclarer struct {
	declared []declaration
}

func (f *fakeDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, declaration{name: name, durable: durable, args: args})
	return amqp.Queue{Name: name}, nil
}

func TestDeclareTopology(t *testing.T) {
	f := &fakeDeclarer{}
	if err := DeclareTopology(f, "reminder_jobs"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if len(f.declared) != 3 {
		t.Fatalf("expected 3 queues, got %d", len(f.declared))
	}

	byName := make(map[string]declaration, len(f.declared))
	for _, d := range f.declared {
		if !d.durable {
			t.Fatalf("queue %s must be durable", d.name)
		}
		byName[d.name] = d
	}

	if d, ok := byName["reminder_jobs.dlq"]; !ok || d.args != nil {
		t.Fatalf("dlq: unexpected declaration %+v", d)
	}
	if d := byName["reminder_jobs.retry"]; d.args["x-dead-letter-routing-key"] != "reminder_jobs" {
		t.Fatalf("retry queue must dead-letter back to the main queue, got %+v", d.args)
	}
	if d := byName["reminder_jobs"]; d.args["x-dead-letter-routing-key"] != "reminder_jobs.dlq" {
		t.Fatalf("main queue must dead-letter to the dlq, got %+v", d.args)
	}
}

// Publisher and worker both declare through DeclareTopology; redeclaring with
// different arguments is PRECONDITION_FAILED on the broker, so the exact same
// call must produce the exact same tables no matter which side runs first.
func TestDeclareTopology_Deterministic(t *testing.T) {
	first := &fakeDeclarer{}
	second := &fakeDeclarer{}
	if err := DeclareTopology(first, "reminder_jobs"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if err := DeclareTopology(second, "reminder_jobs"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if !reflect.DeepEqual(first.declared, second.declared) {
		t.Fatalf("declarations differ:\n%+v\n%+v", first.declared, second.declared)
	}
}
