package session

import "context"

// Repository describes session persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (Session, bool, error)
	Delete(ctx context.Context, token string) error
}
