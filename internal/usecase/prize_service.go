package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/cache"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

// BettorCountMode selects how bettors are counted in prize aggregates.
type BettorCountMode string

const (
	// BettorCountRows counts bet rows, so one user betting twice on a team
	// counts twice. This matches the product's historical numbers.
	BettorCountRows BettorCountMode = "rows"
	// BettorCountDistinct counts each user once per team.
	BettorCountDistinct BettorCountMode = "distinct"
)

func ParseBettorCountMode(raw string) (BettorCountMode, error) {
	switch BettorCountMode(raw) {
	case BettorCountRows, "":
		return BettorCountRows, nil
	case BettorCountDistinct:
		return BettorCountDistinct, nil
	default:
		return "", fmt.Errorf("%w: unknown bettor count mode %q", ErrInvalidInput, raw)
	}
}

// TeamPrize is one team's slice of the pot.
type TeamPrize struct {
	TeamID   string
	TeamName string
	TeamFlag string
	Amount   int64
	Bettors  int
}

// PrizeSnapshot is the full aggregate over every stored bet.
type PrizeSnapshot struct {
	TotalPrize   int64
	TotalBettors int
	Teams        []TeamPrize
}

// ComputePrizeSnapshot recomputes the aggregate from scratch. It is a pure
// function of its inputs: no incremental state, no interpretation of change
// notifications.
func ComputePrizeSnapshot(bets []bet.Bet, teams []team.Team, mode BettorCountMode) PrizeSnapshot {
	teamsByID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	amounts := make(map[string]int64, len(teams))
	rowCounts := make(map[string]int, len(teams))
	distinctByTeam := make(map[string]map[string]struct{}, len(teams))
	allUsers := make(map[string]struct{}, len(bets))

	var totalPrize int64
	for _, b := range bets {
		totalPrize += b.Amount
		amounts[b.TeamID] += b.Amount
		rowCounts[b.TeamID]++
		users := distinctByTeam[b.TeamID]
		if users == nil {
			users = make(map[string]struct{})
			distinctByTeam[b.TeamID] = users
		}
		users[b.UserID] = struct{}{}
		allUsers[b.UserID] = struct{}{}
	}

	out := make([]TeamPrize, 0, len(amounts))
	for teamID, amount := range amounts {
		bettors := rowCounts[teamID]
		if mode == BettorCountDistinct {
			bettors = len(distinctByTeam[teamID])
		}

		row := TeamPrize{
			TeamID:  teamID,
			Amount:  amount,
			Bettors: bettors,
		}
		if t, ok := teamsByID[teamID]; ok {
			row.TeamName = t.Name
			row.TeamFlag = t.Flag
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].TeamID < out[j].TeamID
	})

	totalBettors := len(bets)
	if mode == BettorCountDistinct {
		totalBettors = len(allUsers)
	}

	return PrizeSnapshot{
		TotalPrize:   totalPrize,
		TotalBettors: totalBettors,
		Teams:        out,
	}
}

const prizeSnapshotCacheKey = "prize:snapshot"

type PrizeService struct {
	bets   bet.Repository
	teams  team.Repository
	cache  *cache.Store
	mode   BettorCountMode
	logger *logging.Logger
}

func NewPrizeService(
	bets bet.Repository,
	teams team.Repository,
	store *cache.Store,
	mode BettorCountMode,
	logger *logging.Logger,
) *PrizeService {
	if logger == nil {
		logger = logging.Default()
	}
	if mode == "" {
		mode = BettorCountRows
	}

	return &PrizeService{
		bets:   bets,
		teams:  teams,
		cache:  store,
		mode:   mode,
		logger: logger,
	}
}

// Snapshot serves the cached aggregate, recomputing on miss.
func (s *PrizeService) Snapshot(ctx context.Context) (PrizeSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "PrizeService.Snapshot")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, prizeSnapshotCacheKey, func(ctx context.Context) (any, error) {
		snapshot, err := s.compute(ctx)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	})
	if err != nil {
		return PrizeSnapshot{}, err
	}

	snapshot, ok := value.(PrizeSnapshot)
	if !ok {
		return PrizeSnapshot{}, fmt.Errorf("unexpected cached snapshot type %T", value)
	}

	return snapshot, nil
}

// SubscribeInvalidation drops the cached snapshot whenever the bet table
// changes. The payload is deliberately ignored; the next read recomputes
// everything from storage.
func (s *PrizeService) SubscribeInvalidation(ctx context.Context, feed pubsub.ChangeFeed) {
	feed.Subscribe(ctx, pubsub.ChannelBetsChanged, func([]byte) {
		s.cache.Delete(ctx, prizeSnapshotCacheKey)
	})
}

func (s *PrizeService) compute(ctx context.Context) (PrizeSnapshot, error) {
	bets, err := s.bets.ListAll(ctx)
	if err != nil {
		return PrizeSnapshot{}, fmt.Errorf("list bets: %w", err)
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return PrizeSnapshot{}, fmt.Errorf("list teams: %w", err)
	}

	return ComputePrizeSnapshot(bets, teams, s.mode), nil
}
