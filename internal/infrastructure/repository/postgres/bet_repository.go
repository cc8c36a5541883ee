package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	qb "github.com/gustavoo4544-commits/bolacup/internal/platform/querybuilder"
)

type betTableModel struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TeamID    string    `db:"team_id"`
	Amount    int64     `db:"amount"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (m betTableModel) toDomain() bet.Bet {
	return bet.Bet{
		ID:        m.ID,
		UserID:    m.UserID,
		TeamID:    m.TeamID,
		Amount:    m.Amount,
		Status:    bet.Status(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

func (r *BetRepository) Create(ctx context.Context, b bet.Bet) error {
	query, args, err := qb.InsertInto("bets").
		Columns("id", "user_id", "team_id", "amount", "status", "created_at").
		Values(b.ID, b.UserID, b.TeamID, b.Amount, string(b.Status), b.CreatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create bet query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create bet: %w", err)
	}

	return nil
}

func (r *BetRepository) ListByUser(ctx context.Context, userID string) ([]bet.Bet, error) {
	return r.list(ctx, qb.Eq("user_id", userID))
}

func (r *BetRepository) ListAll(ctx context.Context) ([]bet.Bet, error) {
	return r.list(ctx)
}

func (r *BetRepository) list(ctx context.Context, conditions ...qb.Condition) ([]bet.Bet, error) {
	builder := qb.Select("*").From("bets").OrderBy("created_at DESC", "id")
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list bets query: %w", err)
	}

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}

	out := make([]bet.Bet, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
