package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/notesfs/notes-service/internal/credential"
	"github.com/notesfs/notes-service/internal/middleware"
	"github.com/notesfs/notes-service/internal/models"
	"github.com/notesfs/notes-service/internal/repository"
	"github.com/notesfs/notes-service/internal/service"
	"github.com/notesfs/notes-service/internal/token"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory repository.Store that counts calls, so tests can
// verify that rejected requests never reach the store.
type fakeStore struct {
	users map[string]*models.User
	notes map[string]*models.Note
	calls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*models.User{}, notes: map[string]*models.Note{}}
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.calls++
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	u := *user
	f.users[user.ID] = &u
	return nil
}

func (f *fakeStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	f.calls++
	if u, ok := f.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.calls++
	for _, u := range f.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.calls++
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) CreateNote(ctx context.Context, note *models.Note) error {
	f.calls++
	note.ID = uuid.NewString()
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	n := *note
	f.notes[note.ID] = &n
	return nil
}

func (f *fakeStore) FindNoteByID(ctx context.Context, id string) (*models.Note, error) {
	f.calls++
	n, ok := f.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *n
	if owner, ok := f.users[n.UserID]; ok {
		c.User = &models.NoteOwner{ID: owner.ID, Name: owner.Name, Email: owner.Email}
	}
	return &c, nil
}

func (f *fakeStore) FindAllNotes(ctx context.Context) ([]models.Note, error) {
	f.calls++
	notes := []models.Note{}
	for id := range f.notes {
		n, _ := f.FindNoteByID(ctx, id)
		notes = append(notes, *n)
	}
	return notes, nil
}

func (f *fakeStore) FindNotesByUser(ctx context.Context, userID string) ([]models.Note, error) {
	f.calls++
	notes := []models.Note{}
	for id, n := range f.notes {
		if n.UserID == userID {
			full, _ := f.FindNoteByID(ctx, id)
			notes = append(notes, *full)
		}
	}
	return notes, nil
}

func (f *fakeStore) UpdateNote(ctx context.Context, note *models.Note) error {
	f.calls++
	stored, ok := f.notes[note.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = note.Title
	stored.Content = note.Content
	stored.UpdatedAt = time.Now()
	note.UpdatedAt = stored.UpdatedAt
	return nil
}

func (f *fakeStore) DeleteNote(ctx context.Context, id string) error {
	f.calls++
	if _, ok := f.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

// fakeLimiter allows everything until denied.
type fakeLimiter struct {
	deny bool
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return !f.deny, nil
}

type testEnv struct {
	store   *fakeStore
	limiter *fakeLimiter
	tokens  *token.Manager
	router  http.Handler
}

// newTestEnv wires the router exactly as the server does.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store := newFakeStore()
	limiter := &fakeLimiter{}
	tokens := token.NewManager("test-secret")
	svc := service.NewService(store, tokens, credential.NewStore(), log)
	h := NewHandler(svc, log, false)

	r := mux.NewRouter()
	r.Use(middleware.RateLimit(limiter, log))
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users", h.Register).Methods("POST")
	api.HandleFunc("/users/login", h.Login).Methods("POST")
	api.HandleFunc("/notes/public", h.PublicNotes).Methods("GET")
	api.HandleFunc("/notes/public/{id}", h.PublicNote).Methods("GET")

	authRouter := api.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.Auth(tokens, store, log))
	authRouter.HandleFunc("/users/logout", h.Logout).Methods("POST")
	authRouter.HandleFunc("/users/profile", h.Profile).Methods("GET")
	authRouter.HandleFunc("/notes", h.UserNotes).Methods("GET")
	authRouter.HandleFunc("/notes", h.CreateNote).Methods("POST")
	authRouter.HandleFunc("/notes/{id}", h.GetNote).Methods("GET")
	authRouter.HandleFunc("/notes/{id}", h.UpdateNote).Methods("PUT")
	authRouter.HandleFunc("/notes/{id}", h.DeleteNote).Methods("DELETE")

	return &testEnv{store: store, limiter: limiter, tokens: tokens, router: r}
}

type responseBody struct {
	Status  bool            `json:"status"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, bearer string, body any) (*httptest.ResponseRecorder, responseBody) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp responseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func (e *testEnv) register(t *testing.T, name, email, password string) (id, tok string) {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var data struct {
		ID    string `json:"_id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID, data.Token
}

func (e *testEnv) createNote(t *testing.T, tok, title, content string) string {
	t.Helper()
	rec, resp := e.do(t, http.MethodPost, "/api/notes", tok, map[string]string{
		"title": title, "content": content,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var data struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data.ID
}

func TestRegisterReturnsVerifiableTokenAndCookie(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "pass123",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "User registered successfully", resp.Message)

	var data struct {
		ID    string `json:"_id"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))

	userID, err := env.tokens.Verify(data.Token)
	require.NoError(t, err)
	assert.Equal(t, data.ID, userID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.CookieName, cookies[0].Name)
	assert.Equal(t, data.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestRegisterMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodPost, "/api/users", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", resp.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ann", "a@x.com", "pass123")

	rec, resp := env.do(t, http.MethodPost, "/api/users", "", map[string]string{
		"name": "Twin", "email": "a@x.com", "password": "pass456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", resp.Message)
}

func TestLoginWrongPasswordSetsNoCookie(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Ann", "a@x.com", "pass123")

	rec, resp := env.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", resp.Message)
	assert.Empty(t, rec.Result().Cookies())
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")

	rec, resp := env.do(t, http.MethodPost, "/api/users/logout", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", resp.Message)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	id, tok := env.register(t, "Ann", "a@x.com", "pass123")

	rec, resp := env.do(t, http.MethodGet, "/api/users/profile", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User profile retrieved successfully", resp.Message)

	var user models.User
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	assert.Equal(t, id, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.NotContains(t, string(resp.Data), "password")
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/notes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized, no token", resp.Message)
}

func TestPublicNotesWithoutToken(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")
	env.createNote(t, tok, "T", "C")

	rec, resp := env.do(t, http.MethodGet, "/api/notes/public", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Public notes fetched successfully!", resp.Message)

	var notes []models.Note
	require.NoError(t, json.Unmarshal(resp.Data, &notes))
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].User)
	assert.Equal(t, "Ann", notes[0].User.Name)
}

func TestPublicNoteByIDWithoutToken(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")
	noteID := env.createNote(t, tok, "T", "C")

	rec, resp := env.do(t, http.MethodGet, "/api/notes/public/"+noteID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note fetched successfully", resp.Message)
}

func TestMalformedIDRejectedBeforeStore(t *testing.T) {
	env := newTestEnv(t)

	before := env.store.calls
	rec, resp := env.do(t, http.MethodGet, "/api/notes/public/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid ID format", resp.Message)
	assert.Equal(t, before, env.store.calls, "store must not be touched for malformed ids")
}

func TestMissingNoteIs404(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := env.do(t, http.MethodGet, "/api/notes/public/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Note not found", resp.Message)
}

func TestGetNoteIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")
	noteID := env.createNote(t, tok, "T", "C")

	rec1, resp1 := env.do(t, http.MethodGet, "/api/notes/"+noteID, tok, nil)
	rec2, resp2 := env.do(t, http.MethodGet, "/api/notes/"+noteID, tok, nil)
	require.Equal(t, http.StatusOK, rec1.Code)
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.JSONEq(t, string(resp1.Data), string(resp2.Data))
}

func TestOwnershipScenario(t *testing.T) {
	env := newTestEnv(t)
	_, tokA := env.register(t, "A", "a@x.com", "pass123")
	_, tokB := env.register(t, "B", "b@x.com", "pass456")
	noteID := env.createNote(t, tokA, "T", "C")

	// B may not update A's note.
	rec, resp := env.do(t, http.MethodPut, "/api/notes/"+noteID, tokB, map[string]string{"title": "T2"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized to update this note", resp.Message)

	// A updates the title; content stays untouched.
	rec, resp = env.do(t, http.MethodPut, "/api/notes/"+noteID, tokA, map[string]string{"title": "T2"})
	require.Equal(t, http.StatusOK, rec.Code)

	var note models.Note
	require.NoError(t, json.Unmarshal(resp.Data, &note))
	assert.Equal(t, "T2", note.Title)
	assert.Equal(t, "C", note.Content)
}

func TestPrivateNoteReadByNonOwner(t *testing.T) {
	env := newTestEnv(t)
	_, tokA := env.register(t, "A", "a@x.com", "pass123")
	_, tokB := env.register(t, "B", "b@x.com", "pass456")
	noteID := env.createNote(t, tokA, "T", "C")

	rec, resp := env.do(t, http.MethodGet, "/api/notes/"+noteID, tokB, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authorized to access this note", resp.Message)
}

func TestUserNotesListsOnlyCallers(t *testing.T) {
	env := newTestEnv(t)
	_, tokA := env.register(t, "A", "a@x.com", "pass123")
	_, tokB := env.register(t, "B", "b@x.com", "pass456")
	env.createNote(t, tokA, "mine", "C")
	env.createNote(t, tokB, "theirs", "C")

	rec, resp := env.do(t, http.MethodGet, "/api/notes", tokA, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notes []models.Note
	require.NoError(t, json.Unmarshal(resp.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "mine", notes[0].Title)
}

func TestCreateNoteValidation(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")

	rec, resp := env.do(t, http.MethodPost, "/api/notes", tok, map[string]string{"title": "T"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Title and content are required", resp.Message)
}

func TestUpdateNoteRequiresAField(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")
	noteID := env.createNote(t, tok, "T", "C")

	rec, resp := env.do(t, http.MethodPut, "/api/notes/"+noteID, tok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No fields to update provided", resp.Message)
}

func TestDeleteNoteReturnsDeletedPayload(t *testing.T) {
	env := newTestEnv(t)
	_, tok := env.register(t, "Ann", "a@x.com", "pass123")
	noteID := env.createNote(t, tok, "T", "C")

	rec, resp := env.do(t, http.MethodDelete, "/api/notes/"+noteID, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Note deleted successfully", resp.Message)

	var note models.Note
	require.NoError(t, json.Unmarshal(resp.Data, &note))
	assert.Equal(t, noteID, note.ID)

	rec, _ = env.do(t, http.MethodGet, "/api/notes/"+noteID, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimiterDenialReachesNoStore(t *testing.T) {
	env := newTestEnv(t)
	env.limiter.deny = true

	before := env.store.calls
	rec, resp := env.do(t, http.MethodGet, "/api/notes/public", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later.", resp.Message)
	assert.Equal(t, before, env.store.calls, "denied requests must not reach the store")
}
