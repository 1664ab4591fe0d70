package service

import (
	"context"

	"github.com/akulinichev/reminderhub/internal/entity"
)

type ReminderService interface {
	// CheckReminders returns every account whose status is due or overdue,
	// in repository order.
	CheckReminders(ctx context.Context) ([]*entity.AccountReminder, error)

	// CheckRemindersForOwner is the scoped variant for non-admin callers.
	CheckRemindersForOwner(ctx context.Context, ownerID string) ([]*entity.AccountReminder, error)
}

type AccountService interface {
	GetAccount(ctx context.Context, id int64) (*entity.Account, error)
	GetAllAccounts(ctx context.Context) ([]*entity.Account, error)
	GetAccountsByOwner(ctx context.Context, ownerID string) ([]*entity.Account, error)
	VisitAccount(ctx context.Context, id int64) error
}
