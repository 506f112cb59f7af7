package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/notesfs/notes-service/internal/models"
	"github.com/pressly/goose/v3"

	"github.com/notesfs/notes-service/internal/repository/migrations"
)

// Postgres implements Store over database/sql.
type Postgres struct {
	db *sql.DB
}

// NewPostgres initializes a Postgres-backed store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// CreateUser creates a new user in the database
func (r *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	username := sql.NullString{String: user.Username, Valid: user.Username != ""}
	err := r.db.QueryRowContext(ctx, query, user.Name, username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `id, name, username, email, password_hash, created_at, updated_at`

func (r *Postgres) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var username sql.NullString
	err := row.Scan(&user.ID, &user.Name, &username, &user.Email,
		&user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user.Username = username.String
	return user, nil
}

// FindUserByID retrieves a user by id
func (r *Postgres) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// FindUserByEmail retrieves a user by email
func (r *Postgres) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// FindUserByUsername retrieves a user by username
func (r *Postgres) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, username))
}

// CreateNote creates a new note owned by note.UserID
func (r *Postgres) CreateNote(ctx context.Context, note *models.Note) error {
	query := `
		INSERT INTO notes (user_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, note.UserID, note.Title, note.Content).
		Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

const noteColumns = `
	n.id, n.title, n.content, n.user_id, n.created_at, n.updated_at,
	u.id, u.name, u.email`

func scanNote(note *models.Note, scan func(dest ...any) error) error {
	owner := &models.NoteOwner{}
	err := scan(&note.ID, &note.Title, &note.Content, &note.UserID,
		&note.CreatedAt, &note.UpdatedAt, &owner.ID, &owner.Name, &owner.Email)
	if err != nil {
		return err
	}
	note.User = owner
	return nil
}

// FindNoteByID retrieves a note by id with its owner's name and email
func (r *Postgres) FindNoteByID(ctx context.Context, id string) (*models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.user_id
		WHERE n.id = $1`
	note := &models.Note{}
	err := scanNote(note, r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return note, nil
}

func (r *Postgres) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := scanNote(&note, rows.Scan); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// FindAllNotes retrieves every note, newest first
func (r *Postgres) FindAllNotes(ctx context.Context) ([]models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.user_id
		ORDER BY n.created_at DESC`
	return r.queryNotes(ctx, query)
}

// FindNotesByUser retrieves a user's notes, newest first
func (r *Postgres) FindNotesByUser(ctx context.Context, userID string) ([]models.Note, error) {
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		JOIN users u ON u.id = n.user_id
		WHERE n.user_id = $1
		ORDER BY n.created_at DESC`
	return r.queryNotes(ctx, query, userID)
}

// UpdateNote persists the note's title and content
func (r *Postgres) UpdateNote(ctx context.Context, note *models.Note) error {
	query := `
		UPDATE notes
		SET title = $1, content = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, note.Title, note.Content, note.ID).
		Scan(&note.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by id
func (r *Postgres) DeleteNote(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
