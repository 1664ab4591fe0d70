package queue

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Named queues a task may target. The set is fixed at compile time.
const (
	QueueDefault       = "default"
	QueueReminders     = "reminders"
	QueueNotifications = "notifications"
)

// QueueNames lists every queue in consumption order.
var QueueNames = []string{QueueDefault, QueueReminders, QueueNotifications}

// IsKnownQueue reports whether name is one of the fixed named queues.
func IsKnownQueue(name string) bool {
	for _, q := range QueueNames {
		if q == name {
			return true
		}
	}
	return false
}

// Task is one scheduled job firing travelling through a queue.
// Execution is at-least-once: a task interrupted mid-run is re-delivered,
// so handlers must be idempotent.
type Task struct {
	ID         string                 `json:"id"`
	JobKey     string                 `json:"job_key"`
	Queue      string                 `json:"queue"`
	Data       map[string]interface{} `json:"data,omitempty"`
	FiredAt    time.Time              `json:"fired_at"`
	Attempts   int                    `json:"attempts"`
	MaxRetries int                    `json:"max_retries"`
}

// Validate checks if the task is valid
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task ID is required")
	}
	if strings.TrimSpace(t.JobKey) == "" {
		return fmt.Errorf("task job key is required")
	}
	if !IsKnownQueue(t.Queue) {
		return fmt.Errorf("unknown queue %q", t.Queue)
	}
	return nil
}

// Queue интерфейс очереди
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler func(*Task) error) error
	Close() error
}
