package server

import (
	"net/http"

	"writeflow/internal/middleware"
	"writeflow/internal/server/handler"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/write", h.HandleWrite)
	mux.HandleFunc("/api/chat", h.HandleChat)
	mux.HandleFunc("/api/upload", h.HandleUpload)
	mux.HandleFunc("/api/scrape", h.HandleScrape)
	mux.HandleFunc("/api/analysis", h.HandleAnalysis)
	mux.HandleFunc("/api/watch/", h.HandleWatchSSE)
	mux.HandleFunc("/api/ws/", h.HandleWatchWS)

	return middleware.CORS(mux)
}
