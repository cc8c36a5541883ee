package user

import (
	"fmt"
	"time"
)

// Profile is a registered bettor account. Balance tracks the lifetime
// deposited amount in BRL, Credits the spendable betting points.
type Profile struct {
	ID           string
	Name         string
	Phone        string
	PasswordHash string
	Balance      int64
	Credits      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("profile phone is required")
	}
	if p.PasswordHash == "" {
		return fmt.Errorf("profile password hash is required")
	}
	if p.Balance < 0 {
		return fmt.Errorf("profile balance must not be negative")
	}
	if p.Credits < 0 {
		return fmt.Errorf("profile credits must not be negative")
	}

	return nil
}

// Principal identifies the authenticated caller on a request context.
type Principal struct {
	UserID string
	Name   string
}
