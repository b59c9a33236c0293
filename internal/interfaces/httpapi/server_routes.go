package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerIngestRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/ingest/round", RequireAuth(verifier, http.HandlerFunc(handler.IngestRound)))
	mux.Handle("POST /v1/ingest/report", RequireAuth(verifier, http.HandlerFunc(handler.ImportReport)))
}

func registerStatsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/stats/players", RequireAuth(verifier, http.HandlerFunc(handler.ListPlayerStats)))
	mux.Handle("GET /v1/stats/hosts", RequireAuth(verifier, http.HandlerFunc(handler.ListHostStats)))
	mux.Handle("GET /v1/stats/combos", RequireAuth(verifier, http.HandlerFunc(handler.ListComboStats)))
	mux.Handle("GET /v1/stats/overview", RequireAuth(verifier, http.HandlerFunc(handler.GetStatsOverview)))
}
