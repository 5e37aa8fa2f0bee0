package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"greenlens/internal/history"
	"greenlens/internal/service"
)

const maxSnippetBytes = 1 << 20

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// HandleAnalyze is POST /api/analyze.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxSnippetBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	res, err := h.svc.AnalyzeSnippet(r.Context(), req.Code, strings.TrimSpace(req.Language))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("handler: analyze failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleHistory is GET /api/history. The optional n query parameter caps the
// result; out-of-range values fall back to the maximum.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	n := history.MaxRecent
	if raw := strings.TrimSpace(r.URL.Query().Get("n")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			n = v
		}
	}
	records, err := h.svc.History(r.Context(), n)
	if err != nil {
		log.Printf("handler: history read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

// HandleDashboard is GET /api/dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		log.Printf("handler: dashboard read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "dashboard unavailable")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleHealth is GET /api/health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
