package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/observability"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/id"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

type BetService struct {
	bets   bet.Repository
	teams  team.Repository
	users  userCreditSpender
	ids    id.Generator
	feed   pubsub.ChangeFeed
	logger *logging.Logger
}

// userCreditSpender is the slice of user.Repository bet placement needs.
type userCreditSpender interface {
	SpendCredits(ctx context.Context, userID string, credits int64) (bool, error)
}

func NewBetService(
	bets bet.Repository,
	teams team.Repository,
	users userCreditSpender,
	ids id.Generator,
	feed pubsub.ChangeFeed,
	logger *logging.Logger,
) *BetService {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &BetService{
		bets:   bets,
		teams:  teams,
		users:  users,
		ids:    ids,
		feed:   feed,
		logger: logger,
	}
}

// Place spends credits on a team. The bet row is immutable once stored; a
// change notification nudges prize consumers to recompute.
func (s *BetService) Place(ctx context.Context, userID, teamID string, amount int64) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "BetService.Place")
	defer span.End()

	if amount <= 0 {
		return bet.Bet{}, fmt.Errorf("%w: bet amount must be greater than zero", ErrInvalidInput)
	}

	_, exists, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: team %s", ErrNotFound, teamID)
	}

	spent, err := s.users.SpendCredits(ctx, userID, amount)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("spend credits: %w", err)
	}
	if !spent {
		return bet.Bet{}, fmt.Errorf("%w: need %d credits", ErrInsufficientCredits, amount)
	}

	betID, err := s.ids.NewID()
	if err != nil {
		return bet.Bet{}, fmt.Errorf("new bet id: %w", err)
	}

	row := bet.Bet{
		ID:        betID,
		UserID:    userID,
		TeamID:    teamID,
		Amount:    amount,
		Status:    bet.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.bets.Create(ctx, row); err != nil {
		return bet.Bet{}, fmt.Errorf("create bet: %w", err)
	}
	observability.BetsPlacedTotal.Inc()

	if s.feed != nil {
		if err := s.feed.Publish(ctx, pubsub.ChannelBetsChanged, []byte(betID)); err != nil {
			// Consumers recompute from storage on their own cadence; a lost
			// notification only delays the refresh.
			s.logger.WarnContext(ctx, "publish bet change failed", "bet_id", betID, "error", err)
		}
	}

	return row, nil
}

// ListByUser returns the caller's bets, newest first.
func (s *BetService) ListByUser(ctx context.Context, userID string) ([]bet.Bet, error) {
	items, err := s.bets.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bets: %w", err)
	}
	return items, nil
}
