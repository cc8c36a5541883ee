package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	qb "github.com/gustavoo4544-commits/bolacup/internal/platform/querybuilder"
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, profile user.Profile) error {
	query, args, err := qb.InsertInto("profiles").
		Columns("id", "name", "phone", "password_hash", "balance", "credits", "created_at", "updated_at").
		Values(profile.ID, profile.Name, profile.Phone, profile.PasswordHash, profile.Balance, profile.Credits, profile.CreatedAt, profile.UpdatedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build create profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (user.Profile, bool, error) {
	return r.getBy(ctx, qb.Eq("id", userID))
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (user.Profile, bool, error) {
	return r.getBy(ctx, qb.Eq("phone", phone))
}

func (r *UserRepository) getBy(ctx context.Context, cond qb.Condition) (user.Profile, bool, error) {
	query, args, err := qb.Select("*").From("profiles").Where(cond).ToSQL()
	if err != nil {
		return user.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.Profile{}, false, nil
		}
		return user.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *UserRepository) AddFunds(ctx context.Context, userID string, amount int64, credits int64) error {
	query, args, err := qb.Update("profiles").
		SetExpr("balance", "balance + ?", amount).
		SetExpr("credits", "credits + ?", credits).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add funds query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("add funds: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected add funds: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("add funds: profile not found")
	}

	return nil
}

func (r *UserRepository) SpendCredits(ctx context.Context, userID string, credits int64) (bool, error) {
	query, args, err := qb.Update("profiles").
		SetExpr("credits", "credits - ?", credits).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", userID),
			qb.Expr("credits >= ?", credits),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build spend credits query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("spend credits: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected spend credits: %w", err)
	}

	return affected > 0, nil
}
