package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akulinichev/reminderhub/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

// TestClassify covers the three-state classification and its boundaries.
func TestClassify(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		account entity.Account
		want    entity.ReminderState
	}{
		{
			name: "inactive account is always ok",
			account: entity.Account{
				ID:                1,
				IsActive:          false,
				LastVisited:       timePtr(now.Add(-days(100))),
				ReminderCycleDays: 10,
			},
			want: entity.StateOK,
		},
		{
			name: "zero cycle disables reminders",
			account: entity.Account{
				ID:                2,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(100))),
				ReminderCycleDays: 0,
			},
			want: entity.StateOK,
		},
		{
			name: "never visited with positive cycle is overdue",
			account: entity.Account{
				ID:                3,
				IsActive:          true,
				LastVisited:       nil,
				ReminderCycleDays: 30,
			},
			want: entity.StateOverdue,
		},
		{
			name: "recently visited is ok",
			account: entity.Account{
				ID:                4,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(2))),
				ReminderCycleDays: 10,
			},
			want: entity.StateOK,
		},
		{
			name: "visited exactly at warning start is due",
			account: entity.Account{
				ID:                5,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(8))), // warning at 80% of 10 days
				ReminderCycleDays: 10,
			},
			want: entity.StateDue,
		},
		{
			name: "inside warning window is due",
			account: entity.Account{
				ID:                6,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(9))),
				ReminderCycleDays: 10,
			},
			want: entity.StateDue,
		},
		{
			name: "visited exactly one full cycle ago is overdue",
			account: entity.Account{
				ID:                7,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(10))),
				ReminderCycleDays: 10,
			},
			want: entity.StateOverdue,
		},
		{
			name: "long past the cycle is overdue",
			account: entity.Account{
				ID:                8,
				IsActive:          true,
				LastVisited:       timePtr(now.Add(-days(25))),
				ReminderCycleDays: 10,
			},
			want: entity.StateOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Classify(&tt.account, now)
			assert.Equal(t, tt.want, status.State)
			assert.Equal(t, tt.account.ID, status.AccountID)
		})
	}
}

// TestClassifyIntervals verifies the three intervals are contiguous:
// ok before the warning start, due up to the cycle end, overdue after.
func TestClassifyIntervals(t *testing.T) {
	lastVisited := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	account := entity.Account{
		ID:                1,
		IsActive:          true,
		LastVisited:       &lastVisited,
		ReminderCycleDays: 10,
	}

	warningStart := lastVisited.Add(days(8))
	cycleEnd := lastVisited.Add(days(10))

	probes := []struct {
		now  time.Time
		want entity.ReminderState
	}{
		{lastVisited, entity.StateOK},
		{warningStart.Add(-time.Second), entity.StateOK},
		{warningStart, entity.StateDue},
		{warningStart.Add(time.Second), entity.StateDue},
		{cycleEnd.Add(-time.Second), entity.StateDue},
		{cycleEnd, entity.StateOverdue},
		{cycleEnd.Add(time.Second), entity.StateOverdue},
	}

	for _, probe := range probes {
		status := Classify(&account, probe.now)
		assert.Equalf(t, probe.want, status.State, "at %s", probe.now)
	}
}

func TestClassifyComputesInstants(t *testing.T) {
	lastVisited := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	account := entity.Account{
		ID:                42,
		IsActive:          true,
		LastVisited:       &lastVisited,
		ReminderCycleDays: 10,
	}

	status := Classify(&account, lastVisited.Add(days(1)))

	assert.Equal(t, lastVisited.Add(days(8)), status.DueAt)
	assert.Equal(t, lastVisited.Add(days(10)), status.OverdueAt)
}

func TestClassifyIsDeterministic(t *testing.T) {
	lastVisited := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	account := entity.Account{
		ID:                9,
		IsActive:          true,
		LastVisited:       &lastVisited,
		ReminderCycleDays: 7,
	}
	now := lastVisited.Add(days(6))

	first := Classify(&account, now)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(&account, now))
	}
}

func TestClassifyAll(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	accounts := []*entity.Account{
		{ID: 1, OwnerID: "alice", IsActive: true, LastVisited: timePtr(now.Add(-days(1))), ReminderCycleDays: 10},  // ok
		{ID: 2, OwnerID: "alice", IsActive: true, LastVisited: timePtr(now.Add(-days(20))), ReminderCycleDays: 10}, // overdue
		{ID: 3, OwnerID: "bob", IsActive: true, LastVisited: timePtr(now.Add(-days(9))), ReminderCycleDays: 10},    // due
		{ID: 4, OwnerID: "bob", IsActive: false, LastVisited: nil, ReminderCycleDays: 10},                          // ok (inactive)
		{ID: 5, OwnerID: "alice", IsActive: true, LastVisited: nil, ReminderCycleDays: 5},                          // overdue
	}

	t.Run("filters out ok and preserves input order", func(t *testing.T) {
		reminders := ClassifyAll(accounts, now, "", DefaultWarningRatio)

		require.Len(t, reminders, 3)
		assert.Equal(t, int64(2), reminders[0].Account.ID)
		assert.Equal(t, int64(3), reminders[1].Account.ID)
		assert.Equal(t, int64(5), reminders[2].Account.ID)
	})

	t.Run("owner scope restricts the set", func(t *testing.T) {
		reminders := ClassifyAll(accounts, now, "alice", DefaultWarningRatio)

		require.Len(t, reminders, 2)
		for _, reminder := range reminders {
			assert.Equal(t, "alice", reminder.Account.OwnerID)
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		reminders := ClassifyAll(nil, now, "", DefaultWarningRatio)
		assert.Empty(t, reminders)
	})
}

// fakeAccountRepo is an in-memory AccountRepository for service tests.
type fakeAccountRepo struct {
	accounts []*entity.Account
	err      error
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	for _, account := range f.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, entity.ErrAccountNotFound
}

func (f *fakeAccountRepo) GetAll(ctx context.Context) ([]*entity.Account, error) {
	return f.accounts, f.err
}

func (f *fakeAccountRepo) GetByOwner(ctx context.Context, ownerID string) ([]*entity.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	var owned []*entity.Account
	for _, account := range f.accounts {
		if account.OwnerID == ownerID {
			owned = append(owned, account)
		}
	}
	return owned, nil
}

func (f *fakeAccountRepo) GetActive(ctx context.Context) ([]*entity.Account, error) {
	return f.accounts, f.err
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *entity.Account) error {
	f.accounts = append(f.accounts, account)
	return nil
}

func (f *fakeAccountRepo) TouchLastVisited(ctx context.Context, id int64) error {
	return nil
}

func TestCheckReminders(t *testing.T) {
	now := time.Now()

	repo := &fakeAccountRepo{
		accounts: []*entity.Account{
			{ID: 1, OwnerID: "alice", IsActive: true, LastVisited: timePtr(now.Add(-days(20))), ReminderCycleDays: 10},
			{ID: 2, OwnerID: "bob", IsActive: true, LastVisited: timePtr(now.Add(-days(1))), ReminderCycleDays: 10},
		},
	}
	svc := NewReminderService(repo, DefaultWarningRatio)

	reminders, err := svc.CheckReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, int64(1), reminders[0].Account.ID)
	assert.Equal(t, entity.StateOverdue, reminders[0].Status.State)
}

func TestCheckRemindersForOwner(t *testing.T) {
	now := time.Now()

	repo := &fakeAccountRepo{
		accounts: []*entity.Account{
			{ID: 1, OwnerID: "alice", IsActive: true, LastVisited: nil, ReminderCycleDays: 10},
			{ID: 2, OwnerID: "bob", IsActive: true, LastVisited: timePtr(now.Add(-days(30))), ReminderCycleDays: 10},
		},
	}
	svc := NewReminderService(repo, DefaultWarningRatio)

	reminders, err := svc.CheckRemindersForOwner(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, int64(2), reminders[0].Account.ID)
}

func TestCheckRemindersRepositoryError(t *testing.T) {
	repo := &fakeAccountRepo{err: errors.New("connection refused")}
	svc := NewReminderService(repo, DefaultWarningRatio)

	reminders, err := svc.CheckReminders(context.Background())
	assert.Error(t, err)
	assert.Nil(t, reminders)
}
