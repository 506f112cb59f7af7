// Package repository provides persistence for users and notes.
package repository

import (
	"context"
	"errors"

	"github.com/notesfs/notes-service/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("record not found")

// Store is the persistence surface consumed by the service layer.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)

	CreateNote(ctx context.Context, note *models.Note) error
	FindNoteByID(ctx context.Context, id string) (*models.Note, error)
	FindAllNotes(ctx context.Context) ([]models.Note, error)
	FindNotesByUser(ctx context.Context, userID string) ([]models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, id string) error
}
