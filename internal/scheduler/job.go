package scheduler

import (
	"context"
)

// Job is a recurring job behavior registered by value. Key must be stable
// across process restarts so repeated registration stays idempotent; Queue
// names one of the fixed queues; Run must be idempotent and side-effect
// isolated per firing, since execution is at-least-once.
type Job interface {
	Key() string
	Queue() string
	Run(ctx context.Context) error
}

// Option overrides registration defaults.
type Option func(*registerOptions)

type registerOptions struct {
	jobKey   string
	cronExpr string
}

// WithJobKey overrides the job key derived from Job.Key().
func WithJobKey(key string) Option {
	return func(o *registerOptions) {
		o.jobKey = key
	}
}

// WithCron overrides the default daily schedule. The expression is standard
// 6-field cron: second minute hour day-of-month month day-of-week.
func WithCron(expr string) Option {
	return func(o *registerOptions) {
		o.cronExpr = expr
	}
}
