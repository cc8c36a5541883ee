package user

import "context"

// Repository describes profile persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, profile Profile) error
	GetByID(ctx context.Context, userID string) (Profile, bool, error)
	GetByPhone(ctx context.Context, phone string) (Profile, bool, error)
	// AddFunds credits a completed deposit onto the profile.
	AddFunds(ctx context.Context, userID string, amount int64, credits int64) error
	// SpendCredits deducts credits only when the profile holds at least
	// that many. Returns false when the balance is insufficient.
	SpendCredits(ctx context.Context, userID string, credits int64) (bool, error)
}
