package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DLQHandler handles failed tasks by moving them to Dead Letter Queue
type DLQHandler interface {
	HandleFailedTask(task *Task, err error)
	GetFailedTasks(ctx context.Context, limit int) ([]*FailedTask, error)
	GetDLQStats(ctx context.Context) (*DLQStats, error)
}

// FailedTask represents a task that failed execution
type FailedTask struct {
	Task     *Task     `json:"task"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
	Attempts int       `json:"attempts"`
}

// DLQStats contains statistics about the Dead Letter Queue
type DLQStats struct {
	QueueSize     int64     `json:"queue_size"`
	OldestFailure time.Time `json:"oldest_failure,omitempty"`
	NewestFailure time.Time `json:"newest_failure,omitempty"`
}

// DefaultDLQHandler stores failed tasks in a redis sorted set scored by
// failure time.
type DefaultDLQHandler struct {
	client *redis.Client
	dlq    string
}

// NewDefaultDLQHandler creates a new DefaultDLQHandler
func NewDefaultDLQHandler(client *redis.Client, dlq string) *DefaultDLQHandler {
	return &DefaultDLQHandler{
		client: client,
		dlq:    dlq,
	}
}

// HandleFailedTask stores a failed task in the DLQ
func (d *DefaultDLQHandler) HandleFailedTask(task *Task, err error) {
	failed := &FailedTask{
		Task:     task,
		Error:    err.Error(),
		FailedAt: time.Now(),
		Attempts: task.Attempts,
	}

	data, marshalErr := json.Marshal(failed)
	if marshalErr != nil {
		logrus.Errorf("Failed to marshal failed task: %v", marshalErr)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	score := float64(failed.FailedAt.UnixNano()) / 1e9
	if err := d.client.ZAdd(ctx, d.dlq, redis.Z{Score: score, Member: data}).Err(); err != nil {
		logrus.Errorf("Failed to send task to DLQ: %v", err)
		return
	}

	logrus.Warnf("Task %s (job %s) moved to DLQ: %v", task.ID, task.JobKey, err)
}

// GetFailedTasks retrieves failed tasks from DLQ, newest first
func (d *DefaultDLQHandler) GetFailedTasks(ctx context.Context, limit int) ([]*FailedTask, error) {
	if limit <= 0 {
		limit = 50
	}

	entries, err := d.client.ZRevRangeByScore(ctx, d.dlq, &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get failed tasks: %v", err)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}

	var failed []*FailedTask
	for _, entry := range entries {
		var f FailedTask
		if err := json.Unmarshal([]byte(entry), &f); err != nil {
			logrus.Errorf("Failed to unmarshal failed task: %v", err)
			continue
		}
		failed = append(failed, &f)
	}

	return failed, nil
}

// GetDLQStats returns statistics about the DLQ
func (d *DefaultDLQHandler) GetDLQStats(ctx context.Context) (*DLQStats, error) {
	count, err := d.client.ZCard(ctx, d.dlq).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get DLQ count: %v", err)
	}

	stats := &DLQStats{QueueSize: count}
	if count == 0 {
		return stats, nil
	}

	oldest, err := d.client.ZRange(ctx, d.dlq, 0, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get oldest task: %v", err)
	}
	newest, err := d.client.ZRange(ctx, d.dlq, -1, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get newest task: %v", err)
	}

	if len(oldest) > 0 {
		var f FailedTask
		if err := json.Unmarshal([]byte(oldest[0]), &f); err == nil {
			stats.OldestFailure = f.FailedAt
		}
	}
	if len(newest) > 0 {
		var f FailedTask
		if err := json.Unmarshal([]byte(newest[0]), &f); err == nil {
			stats.NewestFailure = f.FailedAt
		}
	}

	return stats, nil
}
