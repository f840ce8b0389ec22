package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"writeflow/internal/analysis"
	"writeflow/internal/chat"
	"writeflow/internal/parse"
	"writeflow/internal/pipeline"
	"writeflow/internal/scrape"
	"writeflow/internal/session"
)

// Handler bundles the service layer behind the HTTP surface.
type Handler struct {
	Orchestrator *pipeline.Orchestrator
	Refiner      *pipeline.SectionRefiner
	Writer       *pipeline.SectionWriter
	Coherence    *pipeline.CoherenceRefiner
	Assistant    *chat.Assistant
	Analyzer     *analysis.Analyzer
	Parser       *parse.Client
	Scraper      *scrape.Client
	Runs         *session.Store
	Log          *log.Logger
}

func (h *Handler) logf(format string, args ...any) {
	if h.Log != nil {
		h.Log.Printf(format, args...)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	body := errorBody{Error: msg}
	if len(details) > 0 {
		body.Details = details[0]
	}
	writeJSON(w, status, body)
}

// successBody is the {success, data} envelope used by the content endpoints.
type successBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successBody{Success: true, Data: data})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}
