package queue

import (
	"math/rand"
	"strings"
	"time"
)

// RetryManager decides whether a failed task gets another attempt and how
// long to wait before it.
type RetryManager struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// NewRetryManager creates a new RetryManager
func NewRetryManager(maxRetries int, baseDelay time.Duration) *RetryManager {
	return &RetryManager{
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		maxDelay:   baseDelay * 16,
	}
}

// ShouldRetry determines if a task should be retried and returns the delay
func (r *RetryManager) ShouldRetry(task *Task, err error) (bool, time.Duration) {
	if task.Attempts >= task.MaxRetries {
		return false, 0
	}
	if !r.isRetryableError(err) {
		return false, 0
	}
	return true, r.Backoff(task.Attempts)
}

// isRetryableError filters out errors that will never succeed on a re-run.
func (r *RetryManager) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	nonRetryable := []string{
		"invalid",
		"not found",
		"unknown queue",
		"validation failed",
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range nonRetryable {
		if strings.Contains(msg, pattern) {
			return false
		}
	}
	return true
}

// Backoff returns the exponential backoff delay with jitter for the given
// attempt number, capped at 16x the base delay.
func (r *RetryManager) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return r.baseDelay
	}

	delay := r.baseDelay * time.Duration(1<<uint(attempt-1))
	if delay > r.maxDelay {
		delay = r.maxDelay
	}

	// ±25% jitter so retries from concurrent workers don't align
	jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
	if rand.Intn(2) == 0 {
		delay += jitter / 2
	} else {
		delay -= jitter / 2
	}

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}

// MaxRetries returns the configured retry ceiling for new tasks.
func (r *RetryManager) MaxRetries() int {
	return r.maxRetries
}
