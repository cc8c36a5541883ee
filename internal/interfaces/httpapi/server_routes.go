package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/auth/register", handler.Register)
	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
	mux.HandleFunc("GET /v1/deposits/menu", handler.GetDepositMenu)
	mux.HandleFunc("GET /v1/prize", handler.GetPrize)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/auth/logout", RequireAuth(verifier, http.HandlerFunc(handler.Logout)))
	mux.Handle("GET /v1/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMe)))
	mux.Handle("POST /v1/deposits", RequireAuth(verifier, http.HandlerFunc(handler.StartDeposit)))
	mux.Handle("GET /v1/deposits/sessions/{sessionID}", RequireAuth(verifier, http.HandlerFunc(handler.GetDepositSession)))
	mux.Handle("DELETE /v1/deposits/sessions/{sessionID}", RequireAuth(verifier, http.HandlerFunc(handler.CancelDepositSession)))
	mux.Handle("POST /v1/bets", RequireAuth(verifier, http.HandlerFunc(handler.PlaceBet)))
	mux.Handle("GET /v1/bets/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyBets)))
	mux.Handle("GET /v1/transactions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyTransactions)))
}
