package repository

import (
	"context"

	"github.com/akulinichev/reminderhub/internal/entity"
)

// AccountRepository is the read-mostly source of tracked accounts. Account
// rows are mutated by the account-management pages; the reminder core only
// reads them and touches last_visited.
type AccountRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	GetAll(ctx context.Context) ([]*entity.Account, error)
	GetByOwner(ctx context.Context, ownerID string) ([]*entity.Account, error)
	GetActive(ctx context.Context) ([]*entity.Account, error)

	Create(ctx context.Context, account *entity.Account) error
	TouchLastVisited(ctx context.Context, id int64) error
}
