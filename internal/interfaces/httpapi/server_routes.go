package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/gameweeks", handler.ListGameweeks)
	mux.HandleFunc("GET /v1/gameweeks/{gameweekID}/scores", handler.ListGameweekScores)
	mux.HandleFunc("GET /v1/players/{username}", handler.GetPlayerProfile)
	mux.HandleFunc("GET /v1/players/{username}/history", handler.GetPlayerHistory)
	mux.HandleFunc("GET /v1/players/{username}/predictions", handler.GetPlayerPredictions)
	mux.HandleFunc("GET /v1/table", handler.GetLeagueTable)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncJob)))
	mux.Handle("POST /v1/internal/jobs/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
	mux.Handle("POST /v1/internal/jobs/import-predictions", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPredictionImportJob)))
	mux.Handle("POST /v1/internal/scheduler/start", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.StartScheduler)))
	mux.Handle("POST /v1/internal/scheduler/stop", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.StopScheduler)))
	mux.Handle("GET /v1/internal/scheduler/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.SchedulerStatus)))
}
