package handler

import (
	"net/http"
	"net/url"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

// HandleScrape pulls the main content of a web page for use as source
// material.
func (h *Handler) HandleScrape(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req scrapeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "No URL provided")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || u.Scheme == "" || u.Host == "" {
		writeError(w, http.StatusBadRequest, "Invalid URL format")
		return
	}
	if !h.Scraper.Enabled() {
		writeError(w, http.StatusInternalServerError, "Scraping not configured")
		return
	}

	page, err := h.Scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		h.logf("scrape failed for %s: %v", req.URL, err)
		writeError(w, http.StatusInternalServerError, "Internal server error during URL scraping")
		return
	}
	writeSuccess(w, page)
}
