package server

import (
	"net/http"

	"greenlens/internal/handler"
	"greenlens/internal/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/analyze", h.HandleAnalyze)
	mux.HandleFunc("/api/analyze-project", h.HandleAnalyzeProject)
	mux.HandleFunc("/api/history", h.HandleHistory)
	mux.HandleFunc("/api/dashboard", h.HandleDashboard)
	mux.HandleFunc("/api/health", h.HandleHealth)
	mux.HandleFunc("/api/events", h.HandleEvents)

	return middleware.CORS(mux)
}
