package service

import (
	"context"
	"fmt"

	repository "github.com/akulinichev/reminderhub/internal/database/postgres"
	"github.com/akulinichev/reminderhub/internal/entity"
)

type accountService struct {
	repo repository.AccountRepository
}

func NewAccountService(repo repository.AccountRepository) AccountService {
	return &accountService{repo: repo}
}

func (s *accountService) GetAccount(ctx context.Context, id int64) (*entity.Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *accountService) GetAllAccounts(ctx context.Context) ([]*entity.Account, error) {
	accounts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) GetAccountsByOwner(ctx context.Context, ownerID string) ([]*entity.Account, error) {
	accounts, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner accounts: %w", err)
	}
	return accounts, nil
}

func (s *accountService) VisitAccount(ctx context.Context, id int64) error {
	if err := s.repo.TouchLastVisited(ctx, id); err != nil {
		return fmt.Errorf("failed to mark account visited: %w", err)
	}
	return nil
}
