package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/akulinichev/reminderhub/internal/entity"
)

type accountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

const accountColumns = `id, owner_id, name, url, is_active, last_visited, reminder_cycle_days, created_at, updated_at`

func (r *accountRepository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *accountRepository) GetAll(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	return r.queryAccounts(ctx, query)
}

func (r *accountRepository) GetByOwner(ctx context.Context, ownerID string) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY id`
	return r.queryAccounts(ctx, query, ownerID)
}

func (r *accountRepository) GetActive(ctx context.Context) ([]*entity.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE is_active = TRUE ORDER BY id`
	return r.queryAccounts(ctx, query)
}

func (r *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	query := `
		INSERT INTO accounts (owner_id, name, url, is_active, last_visited, reminder_cycle_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		account.OwnerID,
		account.Name,
		account.URL,
		account.IsActive,
		account.LastVisited,
		account.ReminderCycleDays,
		now,
		now,
	).Scan(&account.ID)
}

func (r *accountRepository) TouchLastVisited(ctx context.Context, id int64) error {
	query := `UPDATE accounts SET last_visited = $1, updated_at = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to touch account: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return entity.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]*entity.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*entity.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*entity.Account, error) {
	var account entity.Account
	var lastVisited sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Name,
		&account.URL,
		&account.IsActive,
		&lastVisited,
		&account.ReminderCycleDays,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastVisited.Valid {
		account.LastVisited = &lastVisited.Time
	}
	return &account, nil
}
