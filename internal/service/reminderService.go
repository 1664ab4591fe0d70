package service

import (
	"context"
	"fmt"
	"time"

	repository "github.com/akulinichev/reminderhub/internal/database/postgres"
	"github.com/akulinichev/reminderhub/internal/entity"
)

// DefaultWarningRatio is the fraction of the reminder cycle after which an
// account is considered due.
const DefaultWarningRatio = 0.8

const hoursPerDay = 24

// Classify derives the reminder status of one account at the given instant.
// Pure and reentrant: safe to call from any worker goroutine.
//
// An account that is inactive or has reminders disabled (cycle 0) is always
// OK. An account never visited counts from the zero time, so it classifies
// overdue immediately. Both interval boundaries are inclusive on the left:
// now == warningStart is due, now == fullCycleEnd is overdue.
func Classify(account *entity.Account, now time.Time) entity.ReminderStatus {
	return ClassifyWithRatio(account, now, DefaultWarningRatio)
}

// ClassifyWithRatio is Classify with an explicit warning ratio.
func ClassifyWithRatio(account *entity.Account, now time.Time, warningRatio float64) entity.ReminderStatus {
	status := entity.ReminderStatus{
		AccountID: account.ID,
		State:     entity.StateOK,
	}

	if !account.IsActive || account.ReminderCycleDays == 0 {
		return status
	}

	var cutoff time.Time // zero time when the account was never visited
	if account.LastVisited != nil {
		cutoff = *account.LastVisited
	}

	cycle := time.Duration(account.ReminderCycleDays) * hoursPerDay * time.Hour
	warning := time.Duration(float64(cycle) * warningRatio)

	status.DueAt = cutoff.Add(warning)
	status.OverdueAt = cutoff.Add(cycle)

	switch {
	case !now.Before(status.OverdueAt):
		status.State = entity.StateOverdue
	case !now.Before(status.DueAt):
		status.State = entity.StateDue
	}

	return status
}

// ClassifyAll evaluates a set of accounts and keeps only those needing
// attention (due or overdue). Input order is preserved; ownerID narrows the
// set when non-empty.
func ClassifyAll(accounts []*entity.Account, now time.Time, ownerID string, warningRatio float64) []*entity.AccountReminder {
	reminders := make([]*entity.AccountReminder, 0, len(accounts))
	for _, account := range accounts {
		if ownerID != "" && account.OwnerID != ownerID {
			continue
		}
		status := ClassifyWithRatio(account, now, warningRatio)
		if status.State == entity.StateOK {
			continue
		}
		reminders = append(reminders, &entity.AccountReminder{
			Account: account,
			Status:  status,
		})
	}
	return reminders
}

type reminderService struct {
	repo         repository.AccountRepository
	warningRatio float64
	now          func() time.Time
}

func NewReminderService(repo repository.AccountRepository, warningRatio float64) ReminderService {
	if warningRatio <= 0 || warningRatio >= 1 {
		warningRatio = DefaultWarningRatio
	}
	return &reminderService{
		repo:         repo,
		warningRatio: warningRatio,
		now:          time.Now,
	}
}

func (s *reminderService) CheckReminders(ctx context.Context) ([]*entity.AccountReminder, error) {
	return s.check(ctx, "")
}

func (s *reminderService) CheckRemindersForOwner(ctx context.Context, ownerID string) ([]*entity.AccountReminder, error) {
	return s.check(ctx, ownerID)
}

func (s *reminderService) check(ctx context.Context, ownerID string) ([]*entity.AccountReminder, error) {
	var accounts []*entity.Account
	var err error

	if ownerID != "" {
		accounts, err = s.repo.GetByOwner(ctx, ownerID)
	} else {
		accounts, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts from repository: %w", err)
	}

	return ClassifyAll(accounts, s.now(), "", s.warningRatio), nil
}
