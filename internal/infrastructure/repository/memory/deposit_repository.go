package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
)

type DepositRepository struct {
	mu    sync.RWMutex
	items map[string]deposit.Deposit
}

func NewDepositRepository() *DepositRepository {
	return &DepositRepository{items: make(map[string]deposit.Deposit)}
}

func (r *DepositRepository) Create(_ context.Context, d deposit.Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("deposit %s already exists", d.ID)
	}

	r.items[d.ID] = d
	return nil
}

func (r *DepositRepository) GetByID(_ context.Context, depositID string) (deposit.Deposit, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[depositID]
	if !ok {
		return deposit.Deposit{}, false, nil
	}

	return d, true, nil
}

func (r *DepositRepository) ListByUser(_ context.Context, userID string) ([]deposit.Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]deposit.Deposit, 0, 8)
	for _, d := range r.items {
		if d.UserID == userID {
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
