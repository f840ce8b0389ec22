package handler

import (
	"net/http"
)

// maxUploadBytes bounds in-memory multipart parsing.
const maxUploadBytes = 32 << 20

var allowedUploadTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain": true,
}

type uploadResponse struct {
	Text        string `json:"text"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	PageCount   int    `json:"pageCount"`
	TableCount  int    `json:"tableCount"`
	FigureCount int    `json:"figureCount"`
}

// HandleUpload accepts a document upload and returns its extracted text.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided", err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !allowedUploadTypes[header.Header.Get("Content-Type")] {
		writeError(w, http.StatusBadRequest, "Unsupported file type. Please upload PDF, DOC, DOCX, or TXT files.")
		return
	}
	if !h.Parser.Enabled() {
		writeError(w, http.StatusInternalServerError, "Document parsing not configured")
		return
	}

	doc, err := h.Parser.Parse(r.Context(), header.Filename, file)
	if err != nil {
		h.logf("document parse failed for %q: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "Internal server error during file processing")
		return
	}

	writeSuccess(w, uploadResponse{
		Text:        doc.Text,
		FileName:    header.Filename,
		FileSize:    header.Size,
		PageCount:   doc.PageCount,
		TableCount:  doc.TableCount,
		FigureCount: doc.FigureCount,
	})
}
