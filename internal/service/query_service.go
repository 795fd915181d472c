package service

import (
	"context"
	"fmt"

	"fundflow/internal/core/domain"
	"fundflow/internal/core/ports"
	"fundflow/internal/gateway"
	"fundflow/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type queryService struct {
	repos    Repositories
	adapters AdapterSource
}

func NewQueryService(repos Repositories, adapters AdapterSource) ports.QueryService {
	return &queryService{repos: repos, adapters: adapters}
}

func (s *queryService) ListTransactions(ctx context.Context, params ports.TransactionListParams) ([]domain.Transaction, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if params.PageSize > maxPageSize {
		params.PageSize = maxPageSize
	}
	txns, total, err := s.repos.Transactions.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, total, nil
}

// GetTransactionDetail returns a transaction with every gateway attempt and its full history.
func (s *queryService) GetTransactionDetail(ctx context.Context, id uuid.UUID) (*ports.TransactionDetail, error) {
	tx, err := s.repos.load(ctx, id)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repos.Attempts.ListByTransaction(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list attempts: %w", err))
	}
	history, err := s.repos.History.ListByTransaction(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list history: %w", err))
	}
	if attempts == nil {
		attempts = []domain.GatewayAttempt{}
	}
	if history == nil {
		history = []domain.HistoryEntry{}
	}
	return &ports.TransactionDetail{Transaction: tx, Attempts: attempts, History: history}, nil
}

func (s *queryService) GatewayBalance(ctx context.Context, gatewayID uuid.UUID) (int64, error) {
	gw, err := s.repos.Gateways.GetByID(ctx, gatewayID)
	if err != nil {
		return 0, apperror.ErrDatabaseError(fmt.Errorf("get gateway: %w", err))
	}
	if gw == nil {
		return 0, apperror.ErrNotFound("gateway")
	}
	adapter, err := s.adapters.Get(gw.Provider)
	if err != nil {
		return 0, gateway.AsAppError(err)
	}
	balance, err := adapter.GetBalance(ctx, gw)
	if err != nil {
		return 0, gateway.AsAppError(err)
	}
	return balance, nil
}
