// Package service implements the business logic behind the HTTP handlers:
// registration and login, profile lookup, and policy-gated note CRUD.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/notesfs/notes-service/internal/credential"
	"github.com/notesfs/notes-service/internal/models"
	"github.com/notesfs/notes-service/internal/policy"
	"github.com/notesfs/notes-service/internal/repository"
	"github.com/notesfs/notes-service/internal/token"
	"github.com/sirupsen/logrus"
)

// Service handles business logic
type Service struct {
	store  repository.Store
	tokens *token.Manager
	creds  *credential.Store
	log    *logrus.Logger
}

// NewService initializes a new service
func NewService(store repository.Store, tokens *token.Manager, creds *credential.Store, log *logrus.Logger) *Service {
	return &Service{store: store, tokens: tokens, creds: creds, log: log}
}

// Register creates a new user with a hashed password and returns it together
// with a freshly issued identity token. The email is normalized before the
// uniqueness check. Hashing happens here and only here: this is the single
// code path that sets a credential.
func (s *Service) Register(ctx context.Context, name, email, username, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	if username != "" {
		if _, err := s.store.FindUserByUsername(ctx, username); err == nil {
			return nil, "", ErrUsernameTaken
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, "", err
		}
	}

	hashed, err := s.creds.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, tok, nil
}

// Login authenticates a user and returns it with an identity token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if !s.creds.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return user, tok, nil
}

// Profile retrieves a user by id.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return user, err
}

// PublicNotes returns every note, newest first, owners populated.
func (s *Service) PublicNotes(ctx context.Context) ([]models.Note, error) {
	return s.store.FindAllNotes(ctx)
}

// UserNotes returns the caller's notes, newest first.
func (s *Service) UserNotes(ctx context.Context, userID string) ([]models.Note, error) {
	return s.store.FindNotesByUser(ctx, userID)
}

// Note retrieves a single note. requesterID is empty on public paths; access
// is decided by the note access policy.
func (s *Service) Note(ctx context.Context, id, requesterID string, isPublic bool) (*models.Note, error) {
	note, err := s.findNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccess(note, requesterID, policy.OpRead, isPublic); err != nil {
		return nil, err
	}
	return note, nil
}

// CreateNote creates a note owned by user.
func (s *Service) CreateNote(ctx context.Context, user *models.User, title, content string) (*models.Note, error) {
	note := &models.Note{
		Title:   title,
		Content: content,
		UserID:  user.ID,
		User:    &models.NoteOwner{ID: user.ID, Name: user.Name, Email: user.Email},
	}
	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	s.log.Infof("Note created for user %s", user.ID)
	return note, nil
}

// UpdateNote applies the provided fields to a note the requester owns. Empty
// fields are left unchanged.
func (s *Service) UpdateNote(ctx context.Context, id, requesterID, title, content string) (*models.Note, error) {
	note, err := s.findNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccess(note, requesterID, policy.OpUpdate, false); err != nil {
		return nil, err
	}

	if title != "" {
		note.Title = title
	}
	if content != "" {
		note.Content = content
	}
	if err := s.store.UpdateNote(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note the requester owns and returns the deleted record.
func (s *Service) DeleteNote(ctx context.Context, id, requesterID string) (*models.Note, error) {
	note, err := s.findNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CanAccess(note, requesterID, policy.OpDelete, false); err != nil {
		return nil, err
	}

	if err := s.store.DeleteNote(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.log.Infof("Note %s deleted by user %s", id, requesterID)
	return note, nil
}

func (s *Service) findNote(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.store.FindNoteByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return note, err
}
