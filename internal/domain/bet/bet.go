package bet

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

var AllStatuses = map[Status]struct{}{
	StatusPending: {},
	StatusWon:     {},
	StatusLost:    {},
}

// Bet is an immutable stake of credit points on one team winning the cup.
type Bet struct {
	ID        string
	UserID    string
	TeamID    string
	Amount    int64
	Status    Status
	CreatedAt time.Time
}

func (b Bet) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("bet id is required")
	}
	if b.UserID == "" {
		return fmt.Errorf("bet user id is required")
	}
	if b.TeamID == "" {
		return fmt.Errorf("bet team id is required")
	}
	if b.Amount <= 0 {
		return fmt.Errorf("bet amount must be greater than zero")
	}
	if _, ok := AllStatuses[b.Status]; !ok {
		return fmt.Errorf("invalid bet status: %s", b.Status)
	}

	return nil
}
