package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/users", handler.RegisterUser)
	mux.HandleFunc("GET /v1/games", handler.ListGames)
	mux.HandleFunc("POST /v1/games", handler.CreateGame)
	mux.HandleFunc("POST /v1/users/{userID}/scores", handler.SubmitScore)
	mux.HandleFunc("GET /v1/games/{gameID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/games/{gameID}/leaders", handler.GetTopPlayers)
	mux.HandleFunc("GET /v1/users/{userID}/rankings", handler.GetUserRankings)
	mux.HandleFunc("GET /v1/users/{userID}/rankings/{gameID}", handler.GetUserGameRank)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/rebuild", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRebuild)))
}
