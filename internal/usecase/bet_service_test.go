package usecase

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/memory"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

func newBetFixture(t *testing.T, credits int64) (*BetService, *memory.UserRepository, *memory.BetRepository, *int64) {
	t.Helper()

	users := memory.NewUserRepository()
	if err := users.Create(t.Context(), user.Profile{
		ID:           "u1",
		Name:         "Ana",
		Phone:        "11999999999",
		PasswordHash: "x",
		Credits:      credits,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	bets := memory.NewBetRepository()
	feed := pubsub.NewMemoryFeed()

	var published int64
	feed.Subscribe(t.Context(), pubsub.ChannelBetsChanged, func([]byte) {
		atomic.AddInt64(&published, 1)
	})

	service := NewBetService(bets, memory.NewTeamRepository(team.Catalog()), users, nil, feed, logging.NewNop())
	return service, users, bets, &published
}

func TestBetService_PlaceSpendsCreditsAndNotifies(t *testing.T) {
	service, users, bets, published := newBetFixture(t, 5)

	placed, err := service.Place(t.Context(), "u1", "25", 2)
	if err != nil {
		t.Fatalf("place bet: %v", err)
	}
	if placed.TeamID != "25" || placed.Amount != 2 {
		t.Fatalf("unexpected bet: %+v", placed)
	}

	profile, _, err := users.GetByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Credits != 3 {
		t.Fatalf("expected 3 credits left, got=%d", profile.Credits)
	}

	rows, err := bets.ListByUser(t.Context(), "u1")
	if err != nil {
		t.Fatalf("list bets: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one bet row, got=%d", len(rows))
	}

	if atomic.LoadInt64(published) != 1 {
		t.Fatalf("expected one change notification, got=%d", atomic.LoadInt64(published))
	}
}

func TestBetService_InsufficientCredits(t *testing.T) {
	service, users, bets, published := newBetFixture(t, 1)

	_, err := service.Place(t.Context(), "u1", "25", 2)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got=%v", err)
	}

	profile, _, err := users.GetByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Credits != 1 {
		t.Fatalf("credits must be untouched, got=%d", profile.Credits)
	}

	rows, err := bets.ListByUser(t.Context(), "u1")
	if err != nil {
		t.Fatalf("list bets: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no bet rows, got=%d", len(rows))
	}
	if atomic.LoadInt64(published) != 0 {
		t.Fatalf("expected no notifications, got=%d", atomic.LoadInt64(published))
	}
}

func TestBetService_UnknownTeam(t *testing.T) {
	service, _, _, _ := newBetFixture(t, 5)

	_, err := service.Place(t.Context(), "u1", "99", 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestBetService_RejectsNonPositiveAmount(t *testing.T) {
	service, _, _, _ := newBetFixture(t, 5)

	_, err := service.Place(t.Context(), "u1", "25", 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
