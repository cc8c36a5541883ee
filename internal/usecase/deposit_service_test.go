package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/memory"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

type scriptedGateway struct {
	mu          sync.Mutex
	statuses    []PaymentStatus
	statusErrs  []error
	cursor      int
	chargeErr   error
	chargeCalls int
	statusCalls int
}

func (g *scriptedGateway) CreateCharge(_ context.Context, amount int64, _ string, _ PaymentCustomer) (PaymentCharge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.chargeCalls++
	if g.chargeErr != nil {
		return PaymentCharge{}, g.chargeErr
	}

	return PaymentCharge{
		PixCode:    fmt.Sprintf("pix-%d", amount),
		Identifier: "charge-1",
	}, nil
}

func (g *scriptedGateway) CheckStatus(context.Context, string) (PaymentStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.statusCalls++
	idx := g.cursor
	if idx >= len(g.statuses) {
		idx = len(g.statuses) - 1
	} else {
		g.cursor++
	}

	if idx < len(g.statusErrs) && g.statusErrs[idx] != nil {
		return PaymentStatus{}, g.statusErrs[idx]
	}

	return g.statuses[idx], nil
}

func (g *scriptedGateway) calls() (int, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.chargeCalls, g.statusCalls
}

type flakyDepositRepo struct {
	*memory.DepositRepository
	mu        sync.Mutex
	failures  int
	attempted int
}

func (r *flakyDepositRepo) Create(ctx context.Context, d deposit.Deposit) error {
	r.mu.Lock()
	r.attempted++
	fail := r.attempted <= r.failures
	r.mu.Unlock()

	if fail {
		return errors.New("storage hiccup")
	}
	return r.DepositRepository.Create(ctx, d)
}

func newDepositFixture(t *testing.T, gateway *scriptedGateway, deposits deposit.Repository) (*DepositService, *memory.UserRepository) {
	t.Helper()

	users := memory.NewUserRepository()
	if err := users.Create(t.Context(), user.Profile{
		ID:           "u1",
		Name:         "Ana",
		Phone:        "11999999999",
		PasswordHash: "x",
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	if deposits == nil {
		deposits = memory.NewDepositRepository()
	}

	service := NewDepositService(DepositServiceConfig{
		Gateway:         gateway,
		Users:           users,
		Deposits:        deposits,
		Logger:          logging.NewNop(),
		PollInterval:    5 * time.Millisecond,
		PollMaxAttempts: 50,
		PersistRetries:  3,
	})
	t.Cleanup(service.Shutdown)

	return service, users
}

func waitForState(t *testing.T, service *DepositService, sessionID string, want SessionState) DepositSnapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot, err := service.Session(t.Context(), "u1", sessionID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if snapshot.State == want {
			return snapshot
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never reached %s, state=%s", want, snapshot.State)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func waitForCredits(t *testing.T, users *memory.UserRepository, want int64) user.Profile {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		profile, _, err := users.GetByID(t.Context(), "u1")
		if err != nil {
			t.Fatalf("get profile: %v", err)
		}
		if profile.Credits == want {
			return profile
		}
		if time.Now().After(deadline) {
			t.Fatalf("credits never reached %d, got=%d", want, profile.Credits)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestCreditsForAmount(t *testing.T) {
	cases := map[int64]int64{20: 1, 40: 2, 80: 4, 100: 5, 200: 10}
	for amount, want := range cases {
		credits, ok := CreditsForAmount(amount)
		if !ok || credits != want {
			t.Fatalf("amount %d: expected %d credits, got=%d ok=%v", amount, want, credits, ok)
		}
	}

	if _, ok := CreditsForAmount(30); ok {
		t.Fatal("amount 30 must not be on the menu")
	}
}

func TestDepositService_ConfirmsExactlyOnce(t *testing.T) {
	gateway := &scriptedGateway{statuses: []PaymentStatus{
		{Status: "waiting"},
		{Status: "waiting"},
		{Status: PaymentStatusCompleted, Amount: 40},
		{Status: PaymentStatusCompleted, Amount: 40},
	}}
	deposits := memory.NewDepositRepository()
	service, users := newDepositFixture(t, gateway, deposits)

	snapshot, err := service.Start(t.Context(), "u1", 40)
	if err != nil {
		t.Fatalf("start deposit: %v", err)
	}
	if snapshot.State != SessionAwaitingPayment {
		t.Fatalf("expected awaiting_payment, got=%s", snapshot.State)
	}
	if snapshot.Credits != 2 {
		t.Fatalf("40 BRL must buy 2 credits, got=%d", snapshot.Credits)
	}

	waitForState(t, service, snapshot.SessionID, SessionConfirmed)
	profile := waitForCredits(t, users, 2)
	if profile.Balance != 40 {
		t.Fatalf("expected balance 40, got=%d", profile.Balance)
	}

	// The completed status keeps coming back if asked again; the ticker is
	// stopped before the grant, so credits must never double.
	time.Sleep(50 * time.Millisecond)
	profile, _, err = users.GetByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Credits != 2 {
		t.Fatalf("expected exactly 2 credits granted, got=%d", profile.Credits)
	}

	rows, err := deposits.ListByUser(t.Context(), "u1")
	if err != nil {
		t.Fatalf("list deposits: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one deposit row, got=%d", len(rows))
	}
	if rows[0].Status != deposit.StatusCompleted {
		t.Fatalf("expected completed deposit, got=%s", rows[0].Status)
	}
}

func TestDepositService_CancelStopsPollingDeterministically(t *testing.T) {
	gateway := &scriptedGateway{statuses: []PaymentStatus{{Status: "waiting"}}}
	service, users := newDepositFixture(t, gateway, nil)

	snapshot, err := service.Start(t.Context(), "u1", 20)
	if err != nil {
		t.Fatalf("start deposit: %v", err)
	}

	// Let at least one poll tick land first.
	time.Sleep(20 * time.Millisecond)

	cancelled, err := service.Cancel(t.Context(), "u1", snapshot.SessionID)
	if err != nil {
		t.Fatalf("cancel session: %v", err)
	}
	if cancelled.State != SessionCancelled {
		t.Fatalf("expected cancelled, got=%s", cancelled.State)
	}

	_, callsAfterCancel := gateway.calls()
	time.Sleep(50 * time.Millisecond)
	_, callsLater := gateway.calls()
	if callsLater > callsAfterCancel+1 {
		t.Fatalf("polling continued after cancel: %d -> %d", callsAfterCancel, callsLater)
	}

	profile, _, err := users.GetByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Credits != 0 {
		t.Fatalf("cancelled session must not grant credits, got=%d", profile.Credits)
	}
}

func TestDepositService_RejectsOffMenuAmount(t *testing.T) {
	gateway := &scriptedGateway{statuses: []PaymentStatus{{Status: "waiting"}}}
	service, _ := newDepositFixture(t, gateway, nil)

	_, err := service.Start(t.Context(), "u1", 30)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}

	chargeCalls, _ := gateway.calls()
	if chargeCalls != 0 {
		t.Fatalf("off-menu amount must not reach the provider, calls=%d", chargeCalls)
	}
}

func TestDepositService_ChargeFailureSurfacesAndLeavesNothing(t *testing.T) {
	gateway := &scriptedGateway{chargeErr: errors.New("provider down")}
	service, _ := newDepositFixture(t, gateway, nil)

	_, err := service.Start(t.Context(), "u1", 20)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got=%v", err)
	}
}

func TestDepositService_PollErrorsAreSwallowed(t *testing.T) {
	gateway := &scriptedGateway{
		statuses:   []PaymentStatus{{}, {}, {Status: PaymentStatusCompleted}},
		statusErrs: []error{errors.New("timeout"), errors.New("timeout"), nil},
	}
	service, users := newDepositFixture(t, gateway, nil)

	snapshot, err := service.Start(t.Context(), "u1", 20)
	if err != nil {
		t.Fatalf("start deposit: %v", err)
	}

	waitForState(t, service, snapshot.SessionID, SessionConfirmed)
	waitForCredits(t, users, 1)
}

func TestDepositService_ExpiresAfterMaxAttempts(t *testing.T) {
	gateway := &scriptedGateway{statuses: []PaymentStatus{{Status: "waiting"}}}
	users := memory.NewUserRepository()
	if err := users.Create(t.Context(), user.Profile{ID: "u1", Name: "Ana", Phone: "11999999999", PasswordHash: "x"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	service := NewDepositService(DepositServiceConfig{
		Gateway:         gateway,
		Users:           users,
		Deposits:        memory.NewDepositRepository(),
		Logger:          logging.NewNop(),
		PollInterval:    5 * time.Millisecond,
		PollMaxAttempts: 3,
	})
	t.Cleanup(service.Shutdown)

	snapshot, err := service.Start(t.Context(), "u1", 20)
	if err != nil {
		t.Fatalf("start deposit: %v", err)
	}

	final := waitForState(t, service, snapshot.SessionID, SessionExpired)
	if final.Attempts != 3 {
		t.Fatalf("expected 3 attempts before expiry, got=%d", final.Attempts)
	}

	profile, _, err := users.GetByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.Credits != 0 {
		t.Fatalf("expired session must not grant credits, got=%d", profile.Credits)
	}
}

func TestDepositService_PersistenceRetriesAfterSettlement(t *testing.T) {
	gateway := &scriptedGateway{statuses: []PaymentStatus{{Status: PaymentStatusCompleted}}}
	deposits := &flakyDepositRepo{DepositRepository: memory.NewDepositRepository(), failures: 2}
	service, users := newDepositFixture(t, gateway, deposits)

	snapshot, err := service.Start(t.Context(), "u1", 100)
	if err != nil {
		t.Fatalf("start deposit: %v", err)
	}

	waitForState(t, service, snapshot.SessionID, SessionConfirmed)

	deadline := time.Now().Add(2 * time.Second)
	for {
		rows, err := deposits.ListByUser(t.Context(), "u1")
		if err != nil {
			t.Fatalf("list deposits: %v", err)
		}
		if len(rows) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("deposit row never stored, rows=%d", len(rows))
		}
		time.Sleep(5 * time.Millisecond)
	}

	profile := waitForCredits(t, users, 5)
	if profile.Balance != 100 {
		t.Fatalf("expected balance 100, got=%d", profile.Balance)
	}
}
