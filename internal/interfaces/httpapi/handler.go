package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/bet"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/deposit"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/transaction"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/user"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/logging"
	"github.com/gustavoo4544-commits/bolacup/internal/usecase"
)

type Handler struct {
	accountService *usecase.AccountService
	teamService    *usecase.TeamService
	depositService *usecase.DepositService
	betService     *usecase.BetService
	historyService *usecase.HistoryService
	prizeService   *usecase.PrizeService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	accountService *usecase.AccountService,
	teamService *usecase.TeamService,
	depositService *usecase.DepositService,
	betService *usecase.BetService,
	historyService *usecase.HistoryService,
	prizeService *usecase.PrizeService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		accountService: accountService,
		teamService:    teamService,
		depositService: depositService,
		betService:     betService,
		historyService: historyService,
		prizeService:   prizeService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Phone    string `json:"phone" validate:"required,min=8,max=20"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type startDepositRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type placeBetRequest struct {
	TeamID string `json:"team_id" validate:"required"`
	Points int64  `json:"points" validate:"required,gt=0"`
}

type profileDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Balance   int64     `json:"balance"`
	Credits   int64     `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

type authDTO struct {
	Token   string     `json:"token"`
	Profile profileDTO `json:"profile"`
}

type teamDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Flag  string `json:"flag"`
	Group string `json:"group"`
}

type depositMenuOptionDTO struct {
	Amount  int64 `json:"amount"`
	Credits int64 `json:"credits"`
}

type depositSessionDTO struct {
	SessionID  string    `json:"session_id"`
	Amount     int64     `json:"amount"`
	Credits    int64     `json:"credits"`
	PixCode    string    `json:"pix_code"`
	Identifier string    `json:"identifier"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

type betDTO struct {
	ID        string    `json:"id"`
	TeamID    string    `json:"team_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionDTO struct {
	Kind       string      `json:"kind"`
	OccurredAt time.Time   `json:"occurred_at"`
	Deposit    *depositDTO `json:"deposit,omitempty"`
	Bet        *betDTO     `json:"bet,omitempty"`
}

type depositDTO struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Credits   int64     `json:"credits"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type teamPrizeDTO struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	TeamFlag string `json:"team_flag"`
	Amount   int64  `json:"amount"`
	Bettors  int    `json:"bettors"`
}

type prizeSnapshotDTO struct {
	TotalPrize   int64          `json:"total_prize"`
	TotalBettors int            `json:"total_bettors"`
	Teams        []teamPrizeDTO `json:"teams"`
}

func profileToDTO(p user.Profile) profileDTO {
	return profileDTO{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Balance:   p.Balance,
		Credits:   p.Credits,
		CreatedAt: p.CreatedAt,
	}
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{ID: t.ID, Name: t.Name, Flag: t.Flag, Group: t.Group}
}

func depositSnapshotToDTO(s usecase.DepositSnapshot) depositSessionDTO {
	return depositSessionDTO{
		SessionID:  s.SessionID,
		Amount:     s.Amount,
		Credits:    s.Credits,
		PixCode:    s.PixCode,
		Identifier: s.Identifier,
		State:      string(s.State),
		CreatedAt:  s.CreatedAt,
	}
}

func betToDTO(b bet.Bet) betDTO {
	return betDTO{
		ID:        b.ID,
		TeamID:    b.TeamID,
		Amount:    b.Amount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

func depositToDTO(d deposit.Deposit) depositDTO {
	return depositDTO{
		ID:        d.ID,
		Amount:    d.Amount,
		Credits:   d.Credits,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

func transactionToDTO(t transaction.Transaction) transactionDTO {
	dto := transactionDTO{
		Kind:       string(t.Kind),
		OccurredAt: t.OccurredAt,
	}
	if t.Deposit != nil {
		d := depositToDTO(*t.Deposit)
		dto.Deposit = &d
	}
	if t.Bet != nil {
		b := betToDTO(*t.Bet)
		dto.Bet = &b
	}
	return dto
}

func prizeSnapshotToDTO(s usecase.PrizeSnapshot) prizeSnapshotDTO {
	teams := make([]teamPrizeDTO, 0, len(s.Teams))
	for _, t := range s.Teams {
		teams = append(teams, teamPrizeDTO{
			TeamID:   t.TeamID,
			TeamName: t.TeamName,
			TeamFlag: t.TeamFlag,
			Amount:   t.Amount,
			Bettors:  t.Bettors,
		})
	}
	return prizeSnapshotDTO{
		TotalPrize:   s.TotalPrize,
		TotalBettors: s.TotalBettors,
		Teams:        teams,
	}
}
