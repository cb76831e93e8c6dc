package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/AbdullaK123/notes-api/internal/auth"
	"github.com/AbdullaK123/notes-api/internal/models"
	"github.com/AbdullaK123/notes-api/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NoteHandler handles HTTP requests for notes. All routes sit behind the
// auth gate; the owner id always comes from the session, never the client.
type NoteHandler struct {
	service services.NoteServiceProvider
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(service services.NoteServiceProvider) *NoteHandler {
	return &NoteHandler{service: service}
}

// CreateNotePayload defines the structure for note creation requests.
type CreateNotePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetAll lists the caller's notes, or searches them when ?search= is set.
func (h *NoteHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	var notes []models.Note
	var err error
	if search := r.URL.Query().Get("search"); search != "" {
		notes, err = h.service.SearchNotes(r.Context(), userID, search, limit)
	} else {
		notes, err = h.service.GetUserNotes(r.Context(), userID, limit, offset)
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list notes")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, map[string][]models.Note{"notes": notes})
}

// Get retrieves a single note owned by the caller.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	noteID := chi.URLParam(r, "noteID")
	note, err := h.service.GetNoteByID(r.Context(), userID, noteID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		log.Error().Err(err).Str("note_id", noteID).Msg("Failed to get note")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// Create stores a new note for the caller.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	var payload CreateNotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.service.CreateNote(r.Context(), userID, payload.Title, payload.Content)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create note")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// Update applies a partial update to a note owned by the caller.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	var payload models.UpdateNote
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	noteID := chi.URLParam(r, "noteID")
	note, err := h.service.UpdateNote(r.Context(), userID, noteID, payload)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		log.Error().Err(err).Str("note_id", noteID).Msg("Failed to update note")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// Delete removes a note owned by the caller.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}

	noteID := chi.URLParam(r, "noteID")
	if err := h.service.DeleteNote(r.Context(), userID, noteID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondMessage(w, http.StatusNotFound, "Note not found")
			return
		}
		log.Error().Err(err).Str("note_id", noteID).Msg("Failed to delete note")
		respondMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}
