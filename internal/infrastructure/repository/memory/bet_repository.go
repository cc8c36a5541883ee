package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
)

type BetRepository struct {
	mu    sync.RWMutex
	items map[string]bet.Bet
}

func NewBetRepository() *BetRepository {
	return &BetRepository{items: make(map[string]bet.Bet)}
}

func (r *BetRepository) Create(_ context.Context, b bet.Bet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[b.ID]; exists {
		return fmt.Errorf("bet %s already exists", b.ID)
	}

	r.items[b.ID] = b
	return nil
}

func (r *BetRepository) ListByUser(_ context.Context, userID string) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0, 8)
	for _, b := range r.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}

	sortBets(out)
	return out, nil
}

func (r *BetRepository) ListAll(_ context.Context) ([]bet.Bet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bet.Bet, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, b)
	}

	sortBets(out)
	return out, nil
}

func sortBets(items []bet.Bet) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
