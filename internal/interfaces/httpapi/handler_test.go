package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gustavoo4544-commits/bolacup/internal/domain/team"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/pubsub"
	"github.com/gustavoo4544-commits/bolacup/internal/infrastructure/repository/memory"
	"github.com/gustavoo4544-commits/bolacup/internal/notify"
	"github.com/gustavoo4544-commits/bolacup/internal/platform/cache"
	"github.com/gustavoo4544-commits/bolacup/internal/usecase"
)

type idleGateway struct{}

func (idleGateway) CreateCharge(context.Context, int64, string, usecase.PaymentCustomer) (usecase.PaymentCharge, error) {
	return usecase.PaymentCharge{PixCode: "pix-code", Identifier: "charge-1"}, nil
}

func (idleGateway) CheckStatus(context.Context, string) (usecase.PaymentStatus, error) {
	return usecase.PaymentStatus{Status: "waiting"}, nil
}

type dropNotifier struct{}

func (dropNotifier) Notify(notify.Event) {}

type apiFixture struct {
	router   http.Handler
	users    *memory.UserRepository
	deposits *usecase.DepositService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	teams := memory.NewTeamRepository(team.Catalog())
	depositRepo := memory.NewDepositRepository()
	betRepo := memory.NewBetRepository()
	feed := pubsub.NewMemoryFeed()

	accountService := usecase.NewAccountService(users, sessions, nil, dropNotifier{}, time.Hour, nil)
	teamService := usecase.NewTeamService(teams)
	depositService := usecase.NewDepositService(usecase.DepositServiceConfig{
		Gateway:      idleGateway{},
		Users:        users,
		Deposits:     depositRepo,
		PollInterval: time.Hour,
	})
	t.Cleanup(depositService.Shutdown)
	betService := usecase.NewBetService(betRepo, teams, users, nil, feed, nil)
	historyService := usecase.NewHistoryService(depositRepo, betRepo)
	prizeService := usecase.NewPrizeService(betRepo, teams, cache.NewStore(time.Hour), usecase.BettorCountRows, nil)

	handler := NewHandler(accountService, teamService, depositService, betService, historyService, prizeService, nil)
	router := NewRouter(handler, accountService, nil, nil)

	return &apiFixture{router: router, users: users, deposits: depositService}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return envelope.Data
}

func decodeDataList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()

	var envelope struct {
		Data []any `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return envelope.Data
}

func registerUser(t *testing.T, f *apiFixture, name, phone string) (userID, token string) {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/v1/auth/register", "",
		`{"name":"`+name+`","phone":"`+phone+`","password":"secret123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	token, _ = data["token"].(string)
	profile, _ := data["profile"].(map[string]any)
	userID, _ = profile["id"].(string)
	if token == "" || userID == "" {
		t.Fatalf("register: missing token or profile id in %s", rec.Body.String())
	}
	return userID, token
}

func TestRegisterLoginAndMe(t *testing.T) {
	f := newAPIFixture(t)

	_, token := registerUser(t, f, "Gustavo", "5511998877001")

	rec := f.do(t, http.MethodGet, "/v1/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["name"] != "Gustavo" {
		t.Fatalf("expected profile name Gustavo, got %v", data["name"])
	}
	if data["credits"] != float64(0) {
		t.Fatalf("expected zero credits for new account, got %v", data["credits"])
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "",
		`{"phone":"5511998877001","password":"wrong-pass"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/login", "",
		`{"phone":"5511998877001","password":"secret123"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	f := newAPIFixture(t)

	_, token := registerUser(t, f, "Ana", "5511998877002")

	rec := f.do(t, http.MethodPost, "/v1/auth/logout", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/v1/me", token, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredRoutes(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("non-bearer header: expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/v1/me", "made-up-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token: expected 401, got %d", rec.Code)
	}
}

func TestTeamRoutes(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/v1/teams", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list teams: expected 200, got %d", rec.Code)
	}
	if items := decodeDataList(t, rec); len(items) != 32 {
		t.Fatalf("expected 32 teams, got %d", len(items))
	}

	rec = f.do(t, http.MethodGet, "/v1/teams/25", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get team: expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["name"] != "Brasil" {
		t.Fatalf("expected team 25 to be Brasil, got %v", data["name"])
	}

	rec = f.do(t, http.MethodGet, "/v1/teams/99", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown team: expected 404, got %d", rec.Code)
	}
}

func TestDepositRoutes(t *testing.T) {
	f := newAPIFixture(t)

	_, token := registerUser(t, f, "Caio", "5511998877003")

	rec := f.do(t, http.MethodGet, "/v1/deposits/menu", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("menu: expected 200, got %d", rec.Code)
	}
	if items := decodeDataList(t, rec); len(items) != 5 {
		t.Fatalf("expected 5 menu options, got %d", len(items))
	}

	rec = f.do(t, http.MethodPost, "/v1/deposits", token, `{"amount":30}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("off-menu amount: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPost, "/v1/deposits", token, `{"amount":40}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start deposit: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	sessionID, _ := data["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("expected session_id in %s", rec.Body.String())
	}
	if data["pix_code"] != "pix-code" {
		t.Fatalf("expected pix_code from provider, got %v", data["pix_code"])
	}
	if data["identifier"] != "charge-1" {
		t.Fatalf("expected provider identifier, got %v", data["identifier"])
	}
	if data["state"] != "awaiting_payment" {
		t.Fatalf("expected awaiting_payment, got %v", data["state"])
	}

	rec = f.do(t, http.MethodGet, "/v1/deposits/sessions/"+sessionID, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/v1/deposits/sessions/"+sessionID, token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel session: expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["state"] != "cancelled" {
		t.Fatalf("expected cancelled, got %v", data["state"])
	}

	rec = f.do(t, http.MethodGet, "/v1/deposits/sessions/no-such-session", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown session: expected 404, got %d", rec.Code)
	}
}

func TestDepositSessionIsolatedPerUser(t *testing.T) {
	f := newAPIFixture(t)

	_, ownerToken := registerUser(t, f, "Dono", "5511998877004")
	_, otherToken := registerUser(t, f, "Outro", "5511998877005")

	rec := f.do(t, http.MethodPost, "/v1/deposits", ownerToken, `{"amount":20}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start deposit: expected 201, got %d", rec.Code)
	}
	sessionID, _ := decodeData(t, rec)["session_id"].(string)

	rec = f.do(t, http.MethodGet, "/v1/deposits/sessions/"+sessionID, otherToken, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("other user's session: expected 404, got %d", rec.Code)
	}
}

func TestBetAndHistoryRoutes(t *testing.T) {
	f := newAPIFixture(t)

	userID, token := registerUser(t, f, "Rita", "5511998877006")

	rec := f.do(t, http.MethodPost, "/v1/bets", token, `{"team_id":"25","points":2}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("bet without credits: expected 409, got %d: %s", rec.Code, rec.Body.String())
	}

	if err := f.users.AddFunds(context.Background(), userID, 40, 2); err != nil {
		t.Fatalf("seed credits: %v", err)
	}

	rec = f.do(t, http.MethodPost, "/v1/bets", token, `{"team_id":"99","points":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("bet on unknown team: expected 404, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/bets", token, `{"team_id":"25","points":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place bet: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if data := decodeData(t, rec); data["status"] != "pending" {
		t.Fatalf("expected pending bet, got %v", data["status"])
	}

	rec = f.do(t, http.MethodGet, "/v1/bets/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list bets: expected 200, got %d", rec.Code)
	}
	if items := decodeDataList(t, rec); len(items) != 1 {
		t.Fatalf("expected 1 bet, got %d", len(items))
	}

	rec = f.do(t, http.MethodGet, "/v1/transactions/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list transactions: expected 200, got %d", rec.Code)
	}
	items := decodeDataList(t, rec)
	if len(items) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(items))
	}
	first, _ := items[0].(map[string]any)
	if first["kind"] != "bet" {
		t.Fatalf("expected bet transaction, got %v", first["kind"])
	}
}

func TestPrizeRoute(t *testing.T) {
	f := newAPIFixture(t)

	userID, token := registerUser(t, f, "Leo", "5511998877007")
	if err := f.users.AddFunds(context.Background(), userID, 100, 5); err != nil {
		t.Fatalf("seed credits: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/v1/bets", token, `{"team_id":"9","points":3}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place bet: expected 201, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/v1/prize", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("prize: expected 200, got %d", rec.Code)
	}
	data := decodeData(t, rec)
	if data["total_prize"] != float64(3) {
		t.Fatalf("expected total_prize 3, got %v", data["total_prize"])
	}
	teams, _ := data["teams"].([]any)
	if len(teams) != 1 {
		t.Fatalf("expected 1 team with bets, got %d", len(teams))
	}
	top, _ := teams[0].(map[string]any)
	if top["team_name"] != "Argentina" {
		t.Fatalf("expected Argentina leading, got %v", top["team_name"])
	}
}

func TestRejectsMalformedAndUnknownFields(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/auth/register", "", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed JSON: expected 400, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/register", "",
		`{"name":"X","phone":"5511998877008","password":"secret123","admin":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/auth/register", "",
		`{"name":"X","phone":"5511998877008","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("short password: expected 400, got %d", rec.Code)
	}
}

func TestHealthzRoute(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}
	if data := decodeData(t, rec); data["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", data["status"])
	}
}
