package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultMaxRetries   = 3
	defaultBaseDelay    = 5 * time.Second
	defaultPollTimeout  = 2 * time.Second
	defaultQueuePrefix  = "reminderhub"
	workersPerProcessor = 5
)

// RedisQueue implements Queue over the fixed set of named queues. Each
// queue is a redis list; an in-flight task sits in a processing list until
// its handler returns, so a crash mid-run re-delivers the same firing.
type RedisQueue struct {
	client       *redis.Client
	prefix       string
	retryManager *RetryManager
	dlqHandler   DLQHandler
	config       *RedisQueueConfig
	mu           sync.Mutex
	started      bool
	stopChan     chan struct{}
	wg           sync.WaitGroup
}

// RedisQueueConfig contains configuration for RedisQueue
type RedisQueueConfig struct {
	// Key prefix for all queue lists
	Prefix string

	// Behavior
	Workers     int
	MaxRetries  int
	BaseDelay   time.Duration
	PollTimeout time.Duration
	EnableDLQ   bool
}

// DefaultRedisQueueConfig returns default configuration
func DefaultRedisQueueConfig() *RedisQueueConfig {
	return &RedisQueueConfig{
		Prefix:      defaultQueuePrefix,
		Workers:     runtime.NumCPU() * workersPerProcessor,
		MaxRetries:  defaultMaxRetries,
		BaseDelay:   defaultBaseDelay,
		PollTimeout: defaultPollTimeout,
		EnableDLQ:   true,
	}
}

// NewRedisQueue creates a new RedisQueue instance
func NewRedisQueue(client *redis.Client, cfg *RedisQueueConfig, retryManager *RetryManager, dlqHandler DLQHandler) (*RedisQueue, error) {
	if cfg == nil {
		cfg = DefaultRedisQueueConfig()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultQueuePrefix
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU() * workersPerProcessor
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}

	if retryManager == nil {
		retryManager = NewRetryManager(cfg.MaxRetries, cfg.BaseDelay)
	}
	if dlqHandler == nil && cfg.EnableDLQ {
		dlqHandler = NewDefaultDLQHandler(client, cfg.Prefix+":dlq")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	q := &RedisQueue{
		client:       client,
		prefix:       cfg.Prefix,
		retryManager: retryManager,
		dlqHandler:   dlqHandler,
		config:       cfg,
		stopChan:     make(chan struct{}),
	}

	logrus.Infof("RedisQueue initialized: prefix=%s, queues=%v, workers=%d",
		cfg.Prefix, QueueNames, cfg.Workers)

	return q, nil
}

func (r *RedisQueue) queueKey(name string) string {
	return r.prefix + ":queue:" + name
}

func (r *RedisQueue) processingKey(name string) string {
	return r.prefix + ":queue:" + name + ":processing"
}

// Publish sends a task to its named queue
func (r *RedisQueue) Publish(ctx context.Context, task *Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}
	if err := task.Validate(); err != nil {
		return fmt.Errorf("invalid task: %v", err)
	}
	if task.MaxRetries <= 0 {
		task.MaxRetries = r.retryManager.MaxRetries()
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %v", err)
	}

	if err := r.client.LPush(ctx, r.queueKey(task.Queue), data).Err(); err != nil {
		return fmt.Errorf("failed to publish task: %v", err)
	}

	logrus.Debugf("Task %s (job %s) published to queue %s", task.ID, task.JobKey, task.Queue)
	return nil
}

// Subscribe starts the worker pool consuming all named queues. Workers
// round-robin the queue set so a long evaluation pass on one queue cannot
// starve the others.
func (r *RedisQueue) Subscribe(ctx context.Context, handler func(*Task) error) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("queue already subscribed")
	}
	r.started = true
	r.mu.Unlock()

	for i := 0; i < r.config.Workers; i++ {
		r.wg.Add(1)
		go r.worker(ctx, i, handler)
	}

	logrus.Infof("RedisQueue started %d workers", r.config.Workers)
	return nil
}

func (r *RedisQueue) worker(ctx context.Context, idx int, handler func(*Task) error) {
	defer r.wg.Done()

	queueIdx := idx % len(QueueNames)
	for {
		select {
		case <-ctx.Done():
			logrus.Debugf("Queue worker %d stopped by context", idx)
			return
		case <-r.stopChan:
			logrus.Debugf("Queue worker %d stopped", idx)
			return
		default:
			name := QueueNames[queueIdx]
			queueIdx = (queueIdx + 1) % len(QueueNames)
			if err := r.consumeOne(ctx, name, handler); err != nil {
				logrus.Errorf("Error consuming queue %s: %v", name, err)
				time.Sleep(time.Second) // Backoff on error
			}
		}
	}
}

// consumeOne moves one task into the processing list, runs it, and removes
// it afterwards. The removal happens regardless of outcome; failed tasks
// land in the DLQ instead of being re-queued forever.
func (r *RedisQueue) consumeOne(ctx context.Context, name string, handler func(*Task) error) error {
	data, err := r.client.BRPopLPush(ctx, r.queueKey(name), r.processingKey(name), r.config.PollTimeout).Result()
	if err == redis.Nil {
		return nil // Timeout, no tasks
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to move task to processing list: %v", err)
	}

	var task Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		logrus.Errorf("Failed to unmarshal task: %v", err)
		if r.dlqHandler != nil {
			r.dlqHandler.HandleFailedTask(&Task{ID: "unparsed", Queue: name}, fmt.Errorf("invalid task format: %v", err))
		}
		r.removeProcessing(ctx, name, data)
		return nil
	}

	if err := r.executeWithRetry(ctx, &task, handler); err != nil {
		logrus.Errorf("Task %s failed after %d attempts: %v", task.ID, task.Attempts, err)
		if r.dlqHandler != nil {
			r.dlqHandler.HandleFailedTask(&task, err)
		}
	} else {
		logrus.Debugf("Task %s completed successfully", task.ID)
	}

	r.removeProcessing(ctx, name, data)
	return nil
}

func (r *RedisQueue) removeProcessing(ctx context.Context, name, data string) {
	if err := r.client.LRem(ctx, r.processingKey(name), 1, data).Err(); err != nil {
		logrus.Errorf("Failed to remove task from processing list: %v", err)
	}
}

// executeWithRetry executes a task with retry logic
func (r *RedisQueue) executeWithRetry(ctx context.Context, task *Task, handler func(*Task) error) error {
	for {
		task.Attempts++

		err := handler(task)
		if err == nil {
			return nil
		}

		shouldRetry, delay := r.retryManager.ShouldRetry(task, err)
		if !shouldRetry {
			return err
		}

		logrus.Warnf("Task %s failed (attempt %d/%d), retrying in %v: %v",
			task.ID, task.Attempts, task.MaxRetries, delay, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.stopChan:
			// Abandoned mid-retry; the processing list re-delivers it.
			return err
		case <-time.After(delay):
		}
	}
}

// PendingCount returns the depth of one named queue.
func (r *RedisQueue) PendingCount(ctx context.Context, name string) (int64, error) {
	if !IsKnownQueue(name) {
		return 0, fmt.Errorf("unknown queue %q", name)
	}
	return r.client.LLen(ctx, r.queueKey(name)).Result()
}

// Close stops the worker pool and waits for in-flight tasks
func (r *RedisQueue) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return nil
	}
	close(r.stopChan)
	r.wg.Wait()
	r.started = false
	logrus.Info("RedisQueue stopped")
	return nil
}
