package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"writeflow/internal/llmclient"
	"writeflow/internal/pipeline"
)

type writeRequest struct {
	Action string `json:"action"`
	Stream bool   `json:"stream"`

	// refine-sections and run
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Context     string `json:"context"`

	// Outline titles for refine-sections/run, {title, content} pairs for
	// refine-coherence. Decoded per action.
	Sections json.RawMessage `json:"sections"`

	// write-section
	SectionTitle       string   `json:"sectionTitle"`
	SectionDescription string   `json:"sectionDescription"`
	KeyPoints          []string `json:"keyPoints"`
	ProjectTitle       string   `json:"projectTitle"`
	ProjectContentType string   `json:"projectContentType"`
	ProjectContext     string   `json:"projectContext"`
	EstimatedLength    int      `json:"estimatedLength"`
}

func (req *writeRequest) outline(w http.ResponseWriter) ([]string, bool) {
	var titles []string
	if len(req.Sections) > 0 {
		if err := json.Unmarshal(req.Sections, &titles); err != nil {
			writeError(w, http.StatusBadRequest, "sections must be an array of titles", err.Error())
			return nil, false
		}
	}
	return titles, true
}

type coherenceSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleWrite dispatches the content generation actions. Stream variants
// reply as Server-Sent Events, buffered variants as a {success, data}
// envelope.
func (h *Handler) HandleWrite(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var req writeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	switch req.Action {
	case "refine-sections":
		h.refineSections(w, r, req)
	case "write-section":
		h.writeSection(w, r, req)
	case "refine-coherence":
		h.refineCoherence(w, r, req)
	case "run":
		h.startRun(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, "Invalid action specified")
	}
}

func (h *Handler) refineSections(w http.ResponseWriter, r *http.Request, req writeRequest) {
	outline, ok := req.outline(w)
	if !ok {
		return
	}
	proj := pipeline.ProjectSpec{
		Title:       req.Title,
		ContentType: req.ContentType,
		SourceText:  req.Context,
		Outline:     outline,
	}
	specs, err := h.Refiner.Refine(r.Context(), proj)
	if err != nil {
		h.logf("refine-sections failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error during content generation")
		return
	}
	writeSuccess(w, specs)
}

func (h *Handler) writeSection(w http.ResponseWriter, r *http.Request, req writeRequest) {
	spec := pipeline.SectionSpec{
		Title:           req.SectionTitle,
		Description:     req.SectionDescription,
		KeyPoints:       req.KeyPoints,
		EstimatedLength: req.EstimatedLength,
	}
	proj := pipeline.ProjectSpec{
		Title:       req.ProjectTitle,
		ContentType: req.ProjectContentType,
		SourceText:  req.ProjectContext,
	}

	if req.Stream {
		sse, ok := startSSE(w)
		if !ok {
			return
		}
		for ev := range h.Writer.WriteStream(r.Context(), spec, proj) {
			sse.send(ev)
		}
		return
	}

	content, err := h.Writer.Write(r.Context(), spec, proj)
	if err != nil {
		h.logf("write-section failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error during content generation")
		return
	}
	writeSuccess(w, map[string]string{"content": content})
}

func (h *Handler) refineCoherence(w http.ResponseWriter, r *http.Request, req writeRequest) {
	var pairs []coherenceSection
	if len(req.Sections) > 0 {
		if err := json.Unmarshal(req.Sections, &pairs); err != nil {
			writeError(w, http.StatusBadRequest, "sections must be an array of {title, content}", err.Error())
			return
		}
	}
	sections := make([]pipeline.Section, len(pairs))
	for i, s := range pairs {
		sections[i] = pipeline.Section{Title: s.Title, Content: s.Content, Status: pipeline.StatusCompleted}
	}

	if req.Stream {
		stream, err := h.Coherence.RefineStream(r.Context(), req.ProjectTitle, req.ContentType, sections)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, pipeline.ErrNoContent) {
				status = http.StatusBadRequest
			}
			writeError(w, status, "Internal server error during content generation", err.Error())
			return
		}
		streamDeltas(w, stream)
		return
	}

	content, err := h.Coherence.Refine(r.Context(), req.ProjectTitle, req.ContentType, sections)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoContent) {
			writeError(w, http.StatusBadRequest, "No completed sections to refine")
			return
		}
		h.logf("refine-coherence failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error during content generation")
		return
	}
	writeSuccess(w, map[string]string{"content": content})
}

// startRun launches a full orchestrated run in the background and returns its
// ID. Progress is observed through the watch endpoints.
func (h *Handler) startRun(w http.ResponseWriter, r *http.Request, req writeRequest) {
	outline, ok := req.outline(w)
	if !ok {
		return
	}
	if req.Title == "" || req.ContentType == "" || len(outline) == 0 {
		writeError(w, http.StatusBadRequest, "Missing required fields: title, contentType, sections")
		return
	}
	proj := pipeline.ProjectSpec{
		Title:       req.Title,
		ContentType: req.ContentType,
		SourceText:  req.Context,
		Outline:     outline,
	}
	// The run outlives the start request.
	run := h.Orchestrator.Start(context.Background(), proj)
	h.Runs.Put(run)
	writeSuccess(w, map[string]string{"runId": run.ID})
}

type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func startSSE(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &sseWriter{w: w, flusher: flusher}, true
}

func (s *sseWriter) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}

func (s *sseWriter) close() {
	fmt.Fprintf(s.w, "event: close\ndata: {}\n\n")
	s.flusher.Flush()
}

// streamDeltas forwards model deltas as {content} SSE frames.
func streamDeltas(w http.ResponseWriter, stream *llmclient.Stream) {
	defer stream.Close()
	sse, ok := startSSE(w)
	if !ok {
		return
	}
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			sse.send(map[string]string{"type": "error", "message": "Content generation failed"})
			return
		}
		sse.send(map[string]string{"content": delta})
	}
}
