package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/gustavoo4544-commits/bolacup/internal/domain/session"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/notify"
	"github.com/gustavoo4544-commits/bolacup/internal/observability"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/id"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
)

const minPasswordLength = 6

// AccountNotifier receives account activity events. Delivery must never
// block or fail the calling flow.
type AccountNotifier interface {
	Notify(event notify.Event)
}

type AccountService struct {
	users      user.Repository
	sessions   session.Repository
	ids        id.Generator
	notifier   AccountNotifier
	sessionTTL time.Duration
	logger     *logging.Logger
}

func NewAccountService(
	users user.Repository,
	sessions session.Repository,
	ids id.Generator,
	notifier AccountNotifier,
	sessionTTL time.Duration,
	logger *logging.Logger,
) *AccountService {
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	if sessionTTL <= 0 {
		sessionTTL = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &AccountService{
		users:      users,
		sessions:   sessions,
		ids:        ids,
		notifier:   notifier,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Register creates a profile and opens a session for it. New accounts start
// with zero balance and zero credits; only settled deposits mint credits.
func (s *AccountService) Register(ctx context.Context, name, phone, password string) (user.Profile, string, error) {
	ctx, span := startUsecaseSpan(ctx, "AccountService.Register")
	defer span.End()

	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return user.Profile{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if phone == "" {
		return user.Profile{}, "", fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return user.Profile{}, "", fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	if _, exists, err := s.users.GetByPhone(ctx, phone); err != nil {
		return user.Profile{}, "", fmt.Errorf("get profile by phone: %w", err)
	} else if exists {
		return user.Profile{}, "", fmt.Errorf("%w: phone already registered", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.Profile{}, "", fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.ids.NewID()
	if err != nil {
		return user.Profile{}, "", fmt.Errorf("new profile id: %w", err)
	}

	now := time.Now().UTC()
	profile := user.Profile{
		ID:           userID,
		Name:         name,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return user.Profile{}, "", fmt.Errorf("create profile: %w", err)
	}

	token, err := s.openSession(ctx, userID, now)
	if err != nil {
		return user.Profile{}, "", err
	}

	s.announce(notify.EventRegister, profile, now)
	return profile, token, nil
}

// Login verifies the phone+password pair and opens a session.
func (s *AccountService) Login(ctx context.Context, phone, password string) (user.Profile, string, error) {
	ctx, span := startUsecaseSpan(ctx, "AccountService.Login")
	defer span.End()

	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return user.Profile{}, "", fmt.Errorf("%w: phone and password are required", ErrInvalidInput)
	}

	profile, exists, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return user.Profile{}, "", fmt.Errorf("get profile by phone: %w", err)
	}
	if !exists {
		return user.Profile{}, "", fmt.Errorf("%w: unknown phone or wrong password", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return user.Profile{}, "", fmt.Errorf("%w: unknown phone or wrong password", ErrUnauthorized)
	}

	now := time.Now().UTC()
	token, err := s.openSession(ctx, profile.ID, now)
	if err != nil {
		return user.Profile{}, "", err
	}

	s.announce(notify.EventLogin, profile, now)
	return profile, token, nil
}

// Logout invalidates one session token.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidInput)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// VerifyToken resolves a bearer token to its principal.
func (s *AccountService) VerifyToken(ctx context.Context, token string) (user.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", ErrUnauthorized)
	}

	sess, exists, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return user.Principal{}, fmt.Errorf("get session: %w", err)
	}
	if !exists || sess.Expired(time.Now().UTC()) {
		return user.Principal{}, fmt.Errorf("%w: session is invalid or expired", ErrUnauthorized)
	}

	profile, exists, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return user.Principal{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return user.Principal{}, fmt.Errorf("%w: profile no longer exists", ErrUnauthorized)
	}

	return user.Principal{UserID: profile.ID, Name: profile.Name}, nil
}

// Profile returns the full profile for the authenticated user.
func (s *AccountService) Profile(ctx context.Context, userID string) (user.Profile, error) {
	profile, exists, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return user.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, userID)
	}

	return profile, nil
}

func (s *AccountService) openSession(ctx context.Context, userID string, now time.Time) (string, error) {
	token, err := id.NewToken()
	if err != nil {
		return "", fmt.Errorf("new session token: %w", err)
	}

	if err := s.sessions.Create(ctx, session.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

func (s *AccountService) announce(kind notify.EventKind, profile user.Profile, at time.Time) {
	if s.notifier == nil {
		return
	}

	observability.WebhookEventsTotal.WithLabelValues(string(kind)).Inc()
	s.notifier.Notify(notify.Event{
		Kind:  kind,
		Name:  profile.Name,
		Phone: profile.Phone,
		At:    at,
	})
}
