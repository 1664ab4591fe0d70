package entity

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidCycle    = errors.New("reminder cycle cannot be negative")

	// Scheduler errors
	ErrJobNotFound     = errors.New("job not found")
	ErrInvalidCron     = errors.New("invalid cron expression")
	ErrUnknownQueue    = errors.New("unknown queue")
	ErrNilJob          = errors.New("job cannot be nil")
	ErrSchedulerClosed = errors.New("scheduler is stopped")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden operation")
)
