package bet

import "context"

// Repository describes bet persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, b Bet) error
	ListByUser(ctx context.Context, userID string) ([]Bet, error)
	ListAll(ctx context.Context) ([]Bet, error)
}
