package models

import "time"

// Note represents a text note. The owner is fixed at creation and never
// reassigned; User carries the owner's display fields for responses.
type Note struct {
	ID        string     `json:"_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	UserID    string     `json:"-"`
	User      *NoteOwner `json:"user,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NoteOwner is the subset of the owning user exposed on note responses.
type NoteOwner struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
