package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
)

type UserRepository struct {
	mu      sync.RWMutex
	items   map[string]user.Profile
	byPhone map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		items:   make(map[string]user.Profile),
		byPhone: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, profile user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[profile.ID]; exists {
		return fmt.Errorf("profile %s already exists", profile.ID)
	}
	if _, exists := r.byPhone[profile.Phone]; exists {
		return fmt.Errorf("phone %s already registered", profile.Phone)
	}

	r.items[profile.ID] = profile
	r.byPhone[profile.Phone] = profile.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, userID string) (user.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.items[userID]
	if !ok {
		return user.Profile{}, false, nil
	}

	return profile, true, nil
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (user.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.byPhone[phone]
	if !ok {
		return user.Profile{}, false, nil
	}

	return r.items[userID], true, nil
}

func (r *UserRepository) AddFunds(_ context.Context, userID string, amount int64, credits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.items[userID]
	if !ok {
		return fmt.Errorf("profile %s not found", userID)
	}

	profile.Balance += amount
	profile.Credits += credits
	profile.UpdatedAt = time.Now().UTC()
	r.items[userID] = profile
	return nil
}

func (r *UserRepository) SpendCredits(_ context.Context, userID string, credits int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.items[userID]
	if !ok {
		return false, fmt.Errorf("profile %s not found", userID)
	}
	if profile.Credits < credits {
		return false, nil
	}

	profile.Credits -= credits
	profile.UpdatedAt = time.Now().UTC()
	r.items[userID] = profile
	return true, nil
}
