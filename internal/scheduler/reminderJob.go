package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/akulinichev/reminderhub/internal/entity"
	"github.com/akulinichev/reminderhub/internal/hub"
	"github.com/akulinichev/reminderhub/internal/service"
	"github.com/akulinichev/reminderhub/pkg/queue"

	"github.com/sirupsen/logrus"
)

// ReminderCheckJob is the recurring job that evaluates every account and
// pushes due/overdue notifications to the reminder group. A failed pass
// degrades to zero notifications for this firing; the next firing
// re-evaluates the same state.
type ReminderCheckJob struct {
	reminders service.ReminderService
	bus       *hub.Hub
	groupName string
	batchSize int
}

func NewReminderCheckJob(reminders service.ReminderService, bus *hub.Hub, groupName string, batchSize int) *ReminderCheckJob {
	if groupName == "" {
		groupName = hub.DefaultReminderGroup
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ReminderCheckJob{
		reminders: reminders,
		bus:       bus,
		groupName: groupName,
		batchSize: batchSize,
	}
}

func (j *ReminderCheckJob) Key() string {
	return "reminder_check"
}

func (j *ReminderCheckJob) Queue() string {
	return queue.QueueReminders
}

func (j *ReminderCheckJob) Run(ctx context.Context) error {
	logrus.Info("Starting reminder check pass")

	reminders, err := j.reminders.CheckReminders(ctx)
	if err != nil {
		logrus.Errorf("Failed to evaluate reminders: %v", err)
		return err
	}

	if len(reminders) == 0 {
		logrus.Info("No accounts need attention")
		return nil
	}

	logrus.Infof("Found %d accounts needing attention", len(reminders))

	dueCount := 0
	overdueCount := 0

	// Chunked so a large account set does not hold a worker hostage
	// without checking for shutdown.
	for i, reminder := range reminders {
		if i > 0 && i%j.batchSize == 0 {
			select {
			case <-ctx.Done():
				logrus.Info("Reminder pass interrupted by context cancellation")
				return ctx.Err()
			default:
			}
		}

		switch reminder.Status.State {
		case entity.StateDue:
			dueCount++
		case entity.StateOverdue:
			overdueCount++
		}

		j.bus.SendToGroup(j.groupName, hub.EventReceiveReminder, entity.ReminderEvent{
			AccountID:   reminder.Account.ID,
			AccountName: reminder.Account.Name,
			OwnerID:     reminder.Account.OwnerID,
			State:       reminder.Status.State,
			Message:     reminderMessage(reminder),
			SentAt:      time.Now(),
		})
	}

	logrus.Infof("Reminder check completed: %d due, %d overdue", dueCount, overdueCount)
	return nil
}

func reminderMessage(reminder *entity.AccountReminder) string {
	if reminder.Status.State == entity.StateOverdue {
		return fmt.Sprintf("Account %q is overdue since %s",
			reminder.Account.Name, reminder.Status.OverdueAt.Format("2006-01-02"))
	}
	return fmt.Sprintf("Account %q is due for a visit by %s",
		reminder.Account.Name, reminder.Status.OverdueAt.Format("2006-01-02"))
}
