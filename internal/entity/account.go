package entity

import (
	"time"
)

type Account struct {
	ID                int64      `json:"id" db:"id"`
	OwnerID           string     `json:"owner_id" db:"owner_id"`
	Name              string     `json:"name" db:"name"`
	URL               string     `json:"url" db:"url"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	LastVisited       *time.Time `json:"last_visited,omitempty" db:"last_visited"`
	ReminderCycleDays int        `json:"reminder_cycle_days" db:"reminder_cycle_days"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

type AccountRequest struct {
	OwnerID           string `json:"owner_id" binding:"required"`
	Name              string `json:"name" binding:"required"`
	URL               string `json:"url"`
	ReminderCycleDays int    `json:"reminder_cycle_days" binding:"min=0"`
}
