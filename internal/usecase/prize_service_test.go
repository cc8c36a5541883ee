package usecase

import (
	"testing"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/memory"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/cache"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

func exampleBets() []bet.Bet {
	return []bet.Bet{
		{ID: "b1", UserID: "u1", TeamID: "9", Amount: 1, Status: bet.StatusPending},
		{ID: "b2", UserID: "u2", TeamID: "9", Amount: 2, Status: bet.StatusPending},
		{ID: "b3", UserID: "u3", TeamID: "25", Amount: 1, Status: bet.StatusPending},
	}
}

func TestComputePrizeSnapshot_RowsMode(t *testing.T) {
	t.Parallel()

	snapshot := ComputePrizeSnapshot(exampleBets(), team.Catalog(), BettorCountRows)

	if snapshot.TotalPrize != 4 {
		t.Fatalf("expected total prize 4, got=%d", snapshot.TotalPrize)
	}
	if snapshot.TotalBettors != 3 {
		t.Fatalf("expected 3 bettors in rows mode, got=%d", snapshot.TotalBettors)
	}
	if len(snapshot.Teams) != 2 {
		t.Fatalf("expected two teams, got=%d", len(snapshot.Teams))
	}

	first := snapshot.Teams[0]
	if first.TeamID != "9" || first.Amount != 3 || first.Bettors != 2 {
		t.Fatalf("unexpected leading team: %+v", first)
	}
	if first.TeamName != "Argentina" || first.TeamFlag == "" {
		t.Fatalf("team metadata not resolved: %+v", first)
	}

	second := snapshot.Teams[1]
	if second.TeamID != "25" || second.Amount != 1 || second.Bettors != 1 {
		t.Fatalf("unexpected second team: %+v", second)
	}
}

func TestComputePrizeSnapshot_DistinctMode(t *testing.T) {
	t.Parallel()

	bets := []bet.Bet{
		{ID: "b1", UserID: "u1", TeamID: "9", Amount: 1},
		{ID: "b2", UserID: "u1", TeamID: "9", Amount: 2},
		{ID: "b3", UserID: "u2", TeamID: "25", Amount: 1},
	}

	rows := ComputePrizeSnapshot(bets, team.Catalog(), BettorCountRows)
	if rows.Teams[0].Bettors != 2 || rows.TotalBettors != 3 {
		t.Fatalf("rows mode counts rows: %+v total=%d", rows.Teams[0], rows.TotalBettors)
	}

	distinct := ComputePrizeSnapshot(bets, team.Catalog(), BettorCountDistinct)
	if distinct.Teams[0].Bettors != 1 || distinct.TotalBettors != 2 {
		t.Fatalf("distinct mode counts users: %+v total=%d", distinct.Teams[0], distinct.TotalBettors)
	}
}

func TestComputePrizeSnapshot_Empty(t *testing.T) {
	t.Parallel()

	snapshot := ComputePrizeSnapshot(nil, team.Catalog(), BettorCountRows)
	if snapshot.TotalPrize != 0 || snapshot.TotalBettors != 0 || len(snapshot.Teams) != 0 {
		t.Fatalf("expected empty snapshot, got=%+v", snapshot)
	}
}

func TestParseBettorCountMode(t *testing.T) {
	t.Parallel()

	if mode, err := ParseBettorCountMode(""); err != nil || mode != BettorCountRows {
		t.Fatalf("empty mode must default to rows, got=%s err=%v", mode, err)
	}
	if mode, err := ParseBettorCountMode("distinct"); err != nil || mode != BettorCountDistinct {
		t.Fatalf("expected distinct, got=%s err=%v", mode, err)
	}
	if _, err := ParseBettorCountMode("nope"); err == nil {
		t.Fatal("unknown mode must be rejected")
	}
}

func TestPrizeService_RecomputesAfterChangeNotification(t *testing.T) {
	bets := memory.NewBetRepository()
	teams := memory.NewTeamRepository(team.Catalog())
	feed := pubsub.NewMemoryFeed()

	service := NewPrizeService(bets, teams, cache.NewStore(time.Minute), BettorCountRows, logging.NewNop())
	service.SubscribeInvalidation(t.Context(), feed)

	if err := bets.Create(t.Context(), bet.Bet{ID: "b1", UserID: "u1", TeamID: "25", Amount: 2, Status: bet.StatusPending, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed bet: %v", err)
	}

	first, err := service.Snapshot(t.Context())
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if first.TotalPrize != 2 {
		t.Fatalf("expected total prize 2, got=%d", first.TotalPrize)
	}

	if err := bets.Create(t.Context(), bet.Bet{ID: "b2", UserID: "u2", TeamID: "9", Amount: 3, Status: bet.StatusPending, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("add bet: %v", err)
	}

	// Without a notification the cached snapshot is still served.
	cached, err := service.Snapshot(t.Context())
	if err != nil {
		t.Fatalf("cached snapshot: %v", err)
	}
	if cached.TotalPrize != 2 {
		t.Fatalf("expected cached total 2, got=%d", cached.TotalPrize)
	}

	// The payload content is irrelevant; any publish invalidates.
	if err := feed.Publish(t.Context(), pubsub.ChannelBetsChanged, []byte("whatever")); err != nil {
		t.Fatalf("publish change: %v", err)
	}

	refreshed, err := service.Snapshot(t.Context())
	if err != nil {
		t.Fatalf("refreshed snapshot: %v", err)
	}
	if refreshed.TotalPrize != 5 {
		t.Fatalf("expected recomputed total 5, got=%d", refreshed.TotalPrize)
	}
	if refreshed.Teams[0].TeamID != "9" {
		t.Fatalf("expected team 9 leading by amount, got=%s", refreshed.Teams[0].TeamID)
	}
}
