package deposit

import "context"

// Repository describes deposit persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, d Deposit) error
	GetByID(ctx context.Context, depositID string) (Deposit, bool, error)
	ListByUser(ctx context.Context, userID string) ([]Deposit, error)
}
