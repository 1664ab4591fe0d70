package entity

import (
	"time"
)

type ReminderState string

const (
	StateOK      ReminderState = "ok"
	StateDue     ReminderState = "due"
	StateOverdue ReminderState = "overdue"
)

// ReminderStatus is derived on every evaluation pass and never stored.
type ReminderStatus struct {
	AccountID int64         `json:"account_id"`
	State     ReminderState `json:"state"`
	DueAt     time.Time     `json:"due_at,omitempty"`
	OverdueAt time.Time     `json:"overdue_at,omitempty"`
}

// AccountReminder pairs an account with its computed status for query responses.
type AccountReminder struct {
	Account *Account       `json:"account"`
	Status  ReminderStatus `json:"status"`
}

type ReminderEvent struct {
	AccountID   int64         `json:"account_id"`
	AccountName string        `json:"account_name"`
	OwnerID     string        `json:"owner_id"`
	State       ReminderState `json:"state"`
	Message     string        `json:"message"`
	SentAt      time.Time     `json:"sent_at"`
}
