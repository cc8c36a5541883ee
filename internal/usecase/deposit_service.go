package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/observability"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/id"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

// depositMenu maps the fixed BRL amounts to purchased credits. 20 BRL buys
// one credit; larger amounts scale linearly with a bonus at 200.
var depositMenu = map[int64]int64{
	20:  1,
	40:  2,
	80:  4,
	100: 5,
	200: 10,
}

// CreditsForAmount resolves a menu amount to credits. Amounts outside the
// menu are rejected before any charge is attempted.
func CreditsForAmount(amount int64) (int64, bool) {
	credits, ok := depositMenu[amount]
	return credits, ok
}

// DepositMenuOption is one selectable deposit amount.
type DepositMenuOption struct {
	Amount  int64
	Credits int64
}

func DepositMenu() []DepositMenuOption {
	out := make([]DepositMenuOption, 0, len(depositMenu))
	for amount, credits := range depositMenu {
		out = append(out, DepositMenuOption{Amount: amount, Credits: credits})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Amount < out[j].Amount })
	return out
}

// SessionState is the lifecycle of one deposit session. A session only
// becomes visible after charge creation succeeded, so the first stored
// state is awaiting_payment.
type SessionState string

const (
	SessionAwaitingPayment SessionState = "awaiting_payment"
	SessionConfirmed       SessionState = "confirmed"
	SessionCancelled       SessionState = "cancelled"
	SessionExpired         SessionState = "expired"
)

// DepositSnapshot is a point-in-time copy of a session for callers.
type DepositSnapshot struct {
	SessionID  string
	UserID     string
	Amount     int64
	Credits    int64
	PixCode    string
	Identifier string
	State      SessionState
	Attempts   int
	DepositID  string
	CreatedAt  time.Time
}

type depositSession struct {
	mu         sync.Mutex
	id         string
	userID     string
	amount     int64
	credits    int64
	pixCode    string
	identifier string
	state      SessionState
	attempts   int
	depositID  string
	createdAt  time.Time
	ctx        context.Context
	cancel     context.CancelFunc
}

func (s *depositSession) snapshot() DepositSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return DepositSnapshot{
		SessionID:  s.id,
		UserID:     s.userID,
		Amount:     s.amount,
		Credits:    s.credits,
		PixCode:    s.pixCode,
		Identifier: s.identifier,
		State:      s.state,
		Attempts:   s.attempts,
		DepositID:  s.depositID,
		CreatedAt:  s.createdAt,
	}
}

// transition moves the session from one state to another. Returns false when
// the session already left the expected state, which is how late poll results
// and cancellations after confirmation are discarded.
func (s *depositSession) transition(from, to SessionState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return false
	}
	s.state = to
	return true
}

type DepositServiceConfig struct {
	Gateway         PaymentGateway
	Users           user.Repository
	Deposits        deposit.Repository
	IDs             id.Generator
	Logger          *logging.Logger
	PollInterval    time.Duration
	PollMaxAttempts int
	PersistRetries  int
}

// DepositService runs the PIX deposit flow: create a charge, poll the
// provider until it settles, then grant credits exactly once.
type DepositService struct {
	gateway         PaymentGateway
	users           user.Repository
	deposits        deposit.Repository
	ids             id.Generator
	logger          *logging.Logger
	pollInterval    time.Duration
	pollMaxAttempts int
	persistRetries  int

	mu       sync.RWMutex
	sessions map[string]*depositSession
	workers  conc.WaitGroup
	closed   bool
}

func NewDepositService(cfg DepositServiceConfig) *DepositService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	pollMaxAttempts := cfg.PollMaxAttempts
	if pollMaxAttempts <= 0 {
		pollMaxAttempts = 100
	}
	persistRetries := cfg.PersistRetries
	if persistRetries <= 0 {
		persistRetries = 3
	}

	ids := cfg.IDs
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &DepositService{
		gateway:         cfg.Gateway,
		users:           cfg.Users,
		deposits:        cfg.Deposits,
		ids:             ids,
		logger:          logger,
		pollInterval:    pollInterval,
		pollMaxAttempts: pollMaxAttempts,
		persistRetries:  persistRetries,
		sessions:        make(map[string]*depositSession),
	}
}

// Start creates the PIX charge and opens a polling session. A charge
// creation failure surfaces to the caller and leaves nothing behind, so the
// user can simply pick an amount again.
func (s *DepositService) Start(ctx context.Context, userID string, amount int64) (DepositSnapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "DepositService.Start")
	defer span.End()

	credits, ok := CreditsForAmount(amount)
	if !ok {
		return DepositSnapshot{}, fmt.Errorf("%w: amount %d is not on the deposit menu", ErrInvalidInput, amount)
	}

	profile, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return DepositSnapshot{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return DepositSnapshot{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}

	charge, err := s.gateway.CreateCharge(ctx, amount, fmt.Sprintf("BolaCup deposit %d BRL", amount), PaymentCustomer{
		Name:  profile.Name,
		Phone: profile.Phone,
	})
	if err != nil {
		return DepositSnapshot{}, fmt.Errorf("%w: create charge: %v", ErrDependencyUnavailable, err)
	}
	observability.DepositsCreatedTotal.Inc()

	sessionID, err := s.ids.NewID()
	if err != nil {
		return DepositSnapshot{}, fmt.Errorf("new session id: %w", err)
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	sess := &depositSession{
		id:         sessionID,
		userID:     userID,
		amount:     amount,
		credits:    credits,
		pixCode:    charge.PixCode,
		identifier: charge.Identifier,
		state:      SessionAwaitingPayment,
		createdAt:  time.Now().UTC(),
		ctx:        pollCtx,
		cancel:     cancel,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return DepositSnapshot{}, fmt.Errorf("%w: deposit service is shutting down", ErrDependencyUnavailable)
	}
	s.sessions[sessionID] = sess
	s.mu.Unlock()

	s.workers.Go(func() {
		s.poll(sess)
	})

	return sess.snapshot(), nil
}

// Session returns the caller's view of one session.
func (s *DepositService) Session(_ context.Context, userID, sessionID string) (DepositSnapshot, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return DepositSnapshot{}, err
	}

	return sess.snapshot(), nil
}

// Cancel tears a session down. Cancellation is deterministic: the poll
// context is cancelled first, and confirmation checks the state flag before
// touching balances, so a cancelled session can never grant credits later.
func (s *DepositService) Cancel(_ context.Context, userID, sessionID string) (DepositSnapshot, error) {
	sess, err := s.lookup(userID, sessionID)
	if err != nil {
		return DepositSnapshot{}, err
	}

	sess.cancel()
	if sess.transition(SessionAwaitingPayment, SessionCancelled) {
		s.logger.Info("deposit session cancelled", "session_id", sessionID, "user_id", userID)
	}

	return sess.snapshot(), nil
}

// Shutdown cancels every live session and waits for pollers to exit.
func (s *DepositService) Shutdown() {
	s.mu.Lock()
	s.closed = true
	for _, sess := range s.sessions {
		sess.cancel()
	}
	s.mu.Unlock()

	if r := s.workers.WaitAndRecover(); r != nil {
		s.logger.Error("deposit poller panicked", "panic", r.Value)
	}
}

func (s *DepositService) lookup(userID, sessionID string) (*depositSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || sess.userID != userID {
		return nil, fmt.Errorf("%w: deposit session %s", ErrNotFound, sessionID)
	}

	return sess, nil
}

func (s *DepositService) poll(sess *depositSession) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-sess.ctx.Done():
			return
		case <-ticker.C:
		}

		sess.mu.Lock()
		sess.attempts = attempt
		sess.mu.Unlock()

		status, err := s.gateway.CheckStatus(sess.ctx, sess.identifier)
		switch {
		case err != nil:
			if sess.ctx.Err() != nil {
				return
			}
			// Transient provider trouble is not a session failure; the
			// next tick retries.
			observability.DepositPollsTotal.WithLabelValues("error").Inc()
			s.logger.WarnContext(sess.ctx, "deposit status poll failed",
				"session_id", sess.id,
				"identifier", sess.identifier,
				"attempt", attempt,
				"error", err,
			)
		case status.Status == PaymentStatusCompleted:
			// Stop ticking before granting so the settle path runs once.
			ticker.Stop()
			observability.DepositPollsTotal.WithLabelValues(status.Status).Inc()
			s.settle(sess)
			return
		default:
			observability.DepositPollsTotal.WithLabelValues(status.Status).Inc()
		}

		if attempt >= s.pollMaxAttempts {
			if sess.transition(SessionAwaitingPayment, SessionExpired) {
				s.logger.Info("deposit session expired",
					"session_id", sess.id,
					"identifier", sess.identifier,
					"attempts", attempt,
				)
			}
			return
		}
	}
}

// settle grants credits for a completed charge. It runs on a background
// context: once the money moved, caller-side cancellation must not stop the
// grant.
func (s *DepositService) settle(sess *depositSession) {
	if !sess.transition(SessionAwaitingPayment, SessionConfirmed) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	depositID, err := s.ids.NewID()
	if err != nil {
		s.logger.ErrorContext(ctx, "generate deposit id failed", "session_id", sess.id, "error", err)
		depositID = sess.identifier
	}

	row := deposit.Deposit{
		ID:         depositID,
		UserID:     sess.userID,
		Amount:     sess.amount,
		Credits:    sess.credits,
		ProviderID: sess.identifier,
		PixCode:    sess.pixCode,
		Status:     deposit.StatusCompleted,
		CreatedAt:  time.Now().UTC(),
	}

	stored := s.retryPersist(ctx, sess, "store deposit", func() error {
		return s.deposits.Create(ctx, row)
	})
	granted := s.retryPersist(ctx, sess, "credit profile", func() error {
		return s.users.AddFunds(ctx, sess.userID, sess.amount, sess.credits)
	})

	if stored && granted {
		sess.mu.Lock()
		sess.depositID = depositID
		sess.mu.Unlock()
		observability.DepositsConfirmedTotal.Inc()
		s.logger.Info("deposit confirmed",
			"session_id", sess.id,
			"deposit_id", depositID,
			"user_id", sess.userID,
			"amount", sess.amount,
			"credits", sess.credits,
		)
	}
}

// retryPersist runs a storage write that must not be lost: the provider
// already took the payment. Exhausted retries log at error level with the
// full reconciliation payload.
func (s *DepositService) retryPersist(ctx context.Context, sess *depositSession, op string, fn func() error) bool {
	var lastErr error
	for attempt := 1; attempt <= s.persistRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return true
		}

		s.logger.WarnContext(ctx, "deposit persistence attempt failed",
			"op", op,
			"session_id", sess.id,
			"attempt", attempt,
			"error", lastErr,
		)

		timer := time.NewTimer(time.Duration(attempt) * 100 * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
			attempt = s.persistRetries
		case <-timer.C:
		}
	}

	s.logger.ErrorContext(ctx, "deposit persistence failed after payment settled",
		"op", op,
		"session_id", sess.id,
		"identifier", sess.identifier,
		"user_id", sess.userID,
		"amount", sess.amount,
		"credits", sess.credits,
		"error", fmt.Errorf("%w: %s: %v", ErrPersistence, op, lastErr),
	)
	return false
}
