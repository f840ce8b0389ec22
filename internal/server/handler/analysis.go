package handler

import (
	"net/http"
)

type analysisRequest struct {
	Text string `json:"text"`
}

// HandleAnalysis runs the contract risk analysis over the posted text.
func (h *Handler) HandleAnalysis(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req analysisRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Contract text is required")
		return
	}
	report := h.Analyzer.Analyze(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, report)
}
