package deposit

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

var AllStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusCompleted: {},
	StatusExpired:   {},
}

// Deposit is a PIX top-up. Amount is the charged value in BRL, Credits
// the betting points it purchased.
type Deposit struct {
	ID         string
	UserID     string
	Amount     int64
	Credits    int64
	ProviderID string
	PixCode    string
	Status     Status
	CreatedAt  time.Time
}

func (d Deposit) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("deposit id is required")
	}
	if d.UserID == "" {
		return fmt.Errorf("deposit user id is required")
	}
	if d.Amount <= 0 {
		return fmt.Errorf("deposit amount must be greater than zero")
	}
	if d.Credits <= 0 {
		return fmt.Errorf("deposit credits must be greater than zero")
	}
	if _, ok := AllStatuses[d.Status]; !ok {
		return fmt.Errorf("invalid deposit status: %s", d.Status)
	}

	return nil
}
