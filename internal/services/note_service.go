package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/AbdullaK123/notes-api/internal/models"
	"github.com/google/uuid"
)

const defaultNoteLimit = 50

// NoteServiceProvider defines the interface for note services. Every
// operation takes the authenticated user's id as its first parameter;
// a note id alone never authorizes access.
type NoteServiceProvider interface {
	CreateNote(ctx context.Context, userID, title, content string) (models.Note, error)
	GetNoteByID(ctx context.Context, userID, noteID string) (models.Note, error)
	GetUserNotes(ctx context.Context, userID string, limit, offset int) ([]models.Note, error)
	SearchNotes(ctx context.Context, userID, query string, limit int) ([]models.Note, error)
	UpdateNote(ctx context.Context, userID, noteID string, update models.UpdateNote) (models.Note, error)
	DeleteNote(ctx context.Context, userID, noteID string) error
}

// NoteService provides owner-scoped note CRUD and search. Reads and writes
// filter by (note id, owner id) jointly, so another user's note is
// indistinguishable from a note that does not exist.
type NoteService struct {
	db *sql.DB
}

// NewNoteService creates a new NoteService.
func NewNoteService(db *sql.DB) *NoteService {
	return &NoteService{db: db}
}

// CreateNote stores a new note stamped with the caller's user id.
func (s *NoteService) CreateNote(ctx context.Context, userID, title, content string) (models.Note, error) {
	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes(id, user_id, title, content, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		note.ID, note.UserID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

// GetNoteByID retrieves a note owned by the caller.
func (s *NoteService) GetNoteByID(ctx context.Context, userID, noteID string) (models.Note, error) {
	var note models.Note
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, title, content, created_at, updated_at FROM notes WHERE id = ? AND user_id = ?",
		noteID, userID)
	err := row.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Note{}, ErrNotFound
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to look up note: %w", err)
	}
	return note, nil
}

// GetUserNotes lists the caller's notes, newest first.
func (s *NoteService) GetUserNotes(ctx context.Context, userID string, limit, offset int) ([]models.Note, error) {
	if limit <= 0 {
		limit = defaultNoteLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// SearchNotes runs a full-text search over the caller's notes, best match
// first. FTS operator characters in the query are neutralized so user
// input can never change the query structure.
func (s *NoteService) SearchNotes(ctx context.Context, userID, query string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = defaultNoteLimit
	}

	match := ftsQuery(query)
	if match == "" {
		return []models.Note{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT n.id, n.user_id, n.title, n.content, n.created_at, n.updated_at
		 FROM notes n
		 JOIN notes_fts ON notes_fts.rowid = n.rowid
		 WHERE n.user_id = ? AND notes_fts MATCH ?
		 ORDER BY bm25(notes_fts)
		 LIMIT ?`,
		userID, match, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()

	return scanNotes(rows)
}

// UpdateNote applies a partial update to a note owned by the caller. Nil
// fields keep their stored value.
func (s *NoteService) UpdateNote(ctx context.Context, userID, noteID string, update models.UpdateNote) (models.Note, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notes
		 SET title = COALESCE(?, title),
		     content = COALESCE(?, content),
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		update.Title, update.Content, time.Now().UTC(), noteID, userID)
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Note{}, err
	}
	if affected == 0 {
		return models.Note{}, ErrNotFound
	}

	return s.GetNoteByID(ctx, userID, noteID)
}

// DeleteNote removes a note owned by the caller.
func (s *NoteService) DeleteNote(ctx context.Context, userID, noteID string) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM notes WHERE id = ? AND user_id = ?", noteID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanNotes(rows *sql.Rows) ([]models.Note, error) {
	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// ftsQuery turns free text into an FTS5 match expression: each term is
// double-quoted (terms AND together), embedded quotes stripped.
func ftsQuery(query string) string {
	var terms []string
	for _, field := range strings.Fields(query) {
		term := strings.ReplaceAll(field, `"`, "")
		if term != "" {
			terms = append(terms, `"`+term+`"`)
		}
	}
	return strings.Join(terms, " ")
}
