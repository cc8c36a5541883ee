package usecase

import (
	"context"
	"fmt"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/transaction"
)

// HistoryService merges deposits and bets into one ledger view.
type HistoryService struct {
	deposits deposit.Repository
	bets     bet.Repository
}

func NewHistoryService(deposits deposit.Repository, bets bet.Repository) *HistoryService {
	return &HistoryService{deposits: deposits, bets: bets}
}

func (s *HistoryService) ListByUser(ctx context.Context, userID string) ([]transaction.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "HistoryService.ListByUser")
	defer span.End()

	deposits, err := s.deposits.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	bets, err := s.bets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}

	return transaction.Merge(deposits, bets), nil
}
