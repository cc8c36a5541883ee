package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/gustavoo4544-commits/bolacup/internal/usecase"
)

func (h *Handler) GetDepositMenu(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDepositMenu")
	defer span.End()

	menu := usecase.DepositMenu()
	items := make([]depositMenuOptionDTO, 0, len(menu))
	for _, option := range menu {
		items = append(items, depositMenuOptionDTO{Amount: option.Amount, Credits: option.Credits})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) StartDeposit(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartDeposit")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req startDepositRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.depositService.Start(ctx, principal.UserID, req.Amount)
	if err != nil {
		h.logger.WarnContext(ctx, "start deposit failed", "user_id", principal.UserID, "amount", req.Amount, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, depositSnapshotToDTO(snapshot))
}

func (h *Handler) GetDepositSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDepositSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	snapshot, err := h.depositService.Session(ctx, principal.UserID, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get deposit session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, depositSnapshotToDTO(snapshot))
}

func (h *Handler) CancelDepositSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelDepositSession")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	sessionID := strings.TrimSpace(r.PathValue("sessionID"))
	snapshot, err := h.depositService.Cancel(ctx, principal.UserID, sessionID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel deposit session failed", "user_id", principal.UserID, "session_id", sessionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, depositSnapshotToDTO(snapshot))
}
