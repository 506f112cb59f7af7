package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notesfs/notes-service/internal/middleware"
	"github.com/notesfs/notes-service/internal/policy"
	"github.com/notesfs/notes-service/internal/service"
)

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// noteID validates the path id before anything touches the store. A
// malformed id is a 400, distinct from the 404 for a well-formed absent one.
func noteID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid ID format")
		return "", false
	}
	return id, true
}

// noteError maps service and policy failures to envelope responses.
func (h *Handler) noteError(w http.ResponseWriter, err error) {
	var denial *policy.Denial
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "Note not found")
	case errors.As(err, &denial):
		respondError(w, http.StatusUnauthorized, denial.Error())
	default:
		h.serverError(w, err)
	}
}

// PublicNotes lists every note without requiring authentication
func (h *Handler) PublicNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.PublicNotes(r.Context())
	if err != nil {
		h.serverError(w, err)
		return
	}
	respond(w, http.StatusOK, "Public notes fetched successfully!", notes)
}

// PublicNote fetches a single note by id without requiring authentication
func (h *Handler) PublicNote(w http.ResponseWriter, r *http.Request) {
	h.getNote(w, r, true)
}

// UserNotes lists the caller's notes
func (h *Handler) UserNotes(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	notes, err := h.svc.UserNotes(r.Context(), caller.ID)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respond(w, http.StatusOK, "Notes fetched successfully!", notes)
}

// GetNote fetches a single note the caller owns
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	h.getNote(w, r, false)
}

func (h *Handler) getNote(w http.ResponseWriter, r *http.Request, isPublic bool) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var requesterID string
	if caller := middleware.UserFrom(r.Context()); caller != nil {
		requesterID = caller.ID
	}

	note, err := h.svc.Note(r.Context(), id, requesterID, isPublic)
	if err != nil {
		h.noteError(w, err)
		return
	}
	respond(w, http.StatusOK, "Note fetched successfully", note)
}

// CreateNote creates a note owned by the caller
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" || req.Content == "" {
		respondError(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	note, err := h.svc.CreateNote(r.Context(), middleware.UserFrom(r.Context()), req.Title, req.Content)
	if err != nil {
		h.serverError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Note created successfully", note)
}

// UpdateNote applies title/content changes to a note the caller owns
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Title == "" && req.Content == "") {
		respondError(w, http.StatusBadRequest, "No fields to update provided")
		return
	}

	caller := middleware.UserFrom(r.Context())
	note, err := h.svc.UpdateNote(r.Context(), id, caller.ID, req.Title, req.Content)
	if err != nil {
		h.noteError(w, err)
		return
	}
	respond(w, http.StatusOK, "Note updated successfully", note)
}

// DeleteNote removes a note the caller owns and returns the deleted record
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := noteID(w, r)
	if !ok {
		return
	}

	caller := middleware.UserFrom(r.Context())
	note, err := h.svc.DeleteNote(r.Context(), id, caller.ID)
	if err != nil {
		h.noteError(w, err)
		return
	}
	respond(w, http.StatusOK, "Note deleted successfully", note)
}
