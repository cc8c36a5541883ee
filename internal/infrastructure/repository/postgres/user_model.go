package postgres

import (
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
)

type profileTableModel struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Balance      int64     `db:"balance"`
	Credits      int64     `db:"credits"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (m profileTableModel) toDomain() user.Profile {
	return user.Profile{
		ID:           m.ID,
		Name:         m.Name,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		Balance:      m.Balance,
		Credits:      m.Credits,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
