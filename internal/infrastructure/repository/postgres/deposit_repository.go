package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	qb "github.com/gustavoo4544-commits/bolacup/internal/platform/querybuilder"
)

type depositTableModel struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Amount     int64     `db:"amount"`
	Credits    int64     `db:"credits"`
	ProviderID string    `db:"provider_id"`
	PixCode    string    `db:"pix_code"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
}

func (m depositTableModel) toDomain() deposit.Deposit {
	return deposit.Deposit{
		ID:         m.ID,
		UserID:     m.UserID,
		Amount:     m.Amount,
		Credits:    m.Credits,
		ProviderID: m.ProviderID,
		PixCode:    m.PixCode,
		Status:     deposit.Status(m.Status),
		CreatedAt:  m.CreatedAt,
	}
}

type DepositRepository struct {
	db *sqlx.DB
}

func NewDepositRepository(db *sqlx.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) Create(ctx context.Context, d deposit.Deposit) error {
	query, args, err := qb.InsertInto("deposits").
		Columns("id", "user_id", "amount", "credits", "provider_id", "pix_code", "status", "created_at").
		Values(d.ID, d.UserID, d.Amount, d.Credits, d.ProviderID, d.PixCode, string(d.Status), d.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create deposit query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create deposit: %w", err)
	}

	return nil
}

func (r *DepositRepository) GetByID(ctx context.Context, depositID string) (deposit.Deposit, bool, error) {
	query, args, err := qb.Select("*").From("deposits").
		Where(qb.Eq("id", depositID)).
		ToSQL()
	if err != nil {
		return deposit.Deposit{}, false, fmt.Errorf("build get deposit query: %w", err)
	}

	var row depositTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return deposit.Deposit{}, false, nil
		}
		return deposit.Deposit{}, false, fmt.Errorf("get deposit: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *DepositRepository) ListByUser(ctx context.Context, userID string) ([]deposit.Deposit, error) {
	query, args, err := qb.Select("*").From("deposits").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list deposits query: %w", err)
	}

	var rows []depositTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}

	out := make([]deposit.Deposit, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
