package handler

import (
	"net/http"

	"writeflow/internal/chat"
)

type chatRequest struct {
	chat.Request
	Stream bool `json:"stream"`
}

type chatResponse struct {
	Response         string `json:"response"`
	UpdatedContent   any    `json:"updatedContent"`
	HasContentUpdate bool   `json:"hasContentUpdate"`
}

// HandleChat answers one refinement chat turn, streaming when requested.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" || req.UserMessage == "" || req.ProjectTitle == "" || req.ContentType == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: content, userMessage, projectTitle, contentType")
		return
	}

	if req.Stream {
		stream, err := h.Assistant.RespondStream(r.Context(), req.Request)
		if err != nil {
			h.logf("chat stream failed: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error during content refinement")
			return
		}
		streamDeltas(w, stream)
		return
	}

	reply, err := h.Assistant.Respond(r.Context(), req.Request)
	if err != nil {
		h.logf("chat failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error during content refinement")
		return
	}
	resp := chatResponse{Response: reply.Response, HasContentUpdate: reply.HasUpdate}
	if reply.HasUpdate {
		resp.UpdatedContent = reply.UpdatedContent
	}
	writeSuccess(w, resp)
}
