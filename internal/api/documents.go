package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nikhil/procurement-ai-agent/backend/internal/procure"
	"github.com/nikhil/procurement-ai-agent/backend/internal/session"
)

// UploadDocument accepts a multipart compliance document, registers it,
// and makes it the session's active document.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}

	id, err := h.registry.Upload(r.Context(), header.Filename, data, time.Now())
	if err != nil {
		log.Printf("compliance upload error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sid := h.sessionID(w, r)
	if err := h.sessions.SetActiveDocument(r.Context(), sid, id); err != nil {
		log.Printf("session write error: %v", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      id,
		"message": "File uploaded successfully and added to the compliance index",
	})
}

// ListDocuments returns every uploaded compliance document with its
// cached metadata.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.registry.List(r.Context())
	if err != nil {
		log.Printf("compliance list error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"compliance_files": docs})
}

// ViewDocument returns a document's raw content.
func (h *Handler) ViewDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	content, err := h.registry.GetContent(r.Context(), id)
	if err != nil {
		if errors.Is(err, procure.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// DeleteDocument removes a document from the store and clears the
// session's active pointer when it referenced the deleted id.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sid := h.sessionID(w, r)
	pointer := session.Pointer{Store: h.sessions, SessionID: sid}

	deleted, err := h.registry.Delete(r.Context(), id, pointer)
	if err != nil {
		log.Printf("compliance delete error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "Failed to delete file"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "File deleted successfully"})
}
