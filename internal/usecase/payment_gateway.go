package usecase

import "context"

// PaymentGateway is the PIX charge provider as seen from deposit flows.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, amount int64, description string, customer PaymentCustomer) (PaymentCharge, error)
	CheckStatus(ctx context.Context, identifier string) (PaymentStatus, error)
}

// PaymentCustomer identifies the paying user on a charge request.
type PaymentCustomer struct {
	Name  string
	Phone string
}

// PaymentCharge is a created charge awaiting payment.
type PaymentCharge struct {
	PixCode    string
	Identifier string
}

// PaymentStatus is the provider's current view of a charge.
type PaymentStatus struct {
	Status string
	Amount int64
}

// PaymentStatusCompleted is the provider status that settles a charge.
const PaymentStatusCompleted = "completed"
