package models

import "time"

// Note is a single note owned by a user.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateNote carries a partial note update. A nil field leaves the stored
// value unchanged; a pointer to the empty string clears it.
type UpdateNote struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}
