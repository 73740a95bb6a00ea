package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/linkmark/internal/common"
	"github.com/dmitrijs2005/linkmark/internal/dbx"
	"github.com/dmitrijs2005/linkmark/internal/logging"
	"github.com/dmitrijs2005/linkmark/internal/server/models"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/users"
	"github.com/dmitrijs2005/linkmark/internal/server/services"
	"github.com/dmitrijs2005/linkmark/internal/server/session"
)

// --- in-memory repositories backing real services ---

type memUsers struct {
	byEmail map[string]*models.User
}

func (m *memUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return nil, common.ErrorConflict
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = u
	return u, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &models.User{ID: u.ID, Email: u.Email, Salt: u.Salt, PasswordHash: u.PasswordHash}, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return &models.User{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memBookmarks struct {
	items map[string]*models.Bookmark
}

func (m *memBookmarks) find(userID, id string) (*models.Bookmark, error) {
	b, ok := m.items[id]
	if !ok || b.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (m *memBookmarks) Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {
	stored := *b
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.items[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memBookmarks) GetByID(ctx context.Context, userID, id string) (*models.Bookmark, error) {
	b, err := m.find(userID, id)
	if err != nil {
		return nil, err
	}
	out := *b
	return &out, nil
}

func (m *memBookmarks) Update(ctx context.Context, b *models.Bookmark) error {
	if _, err := m.find(b.UserID, b.ID); err != nil {
		return err
	}
	stored := *b
	stored.UpdatedAt = time.Now()
	m.items[b.ID] = &stored
	return nil
}

func (m *memBookmarks) Delete(ctx context.Context, userID, id string) error {
	if _, err := m.find(userID, id); err != nil {
		return err
	}
	delete(m.items, id)
	return nil
}

func (m *memBookmarks) SetPinned(ctx context.Context, userID, id string, pinned bool) error {
	b, err := m.find(userID, id)
	if err != nil {
		return err
	}
	b.Pinned = pinned
	return nil
}

func (m *memBookmarks) SetArchived(ctx context.Context, userID, id string, archived bool) error {
	b, err := m.find(userID, id)
	if err != nil {
		return err
	}
	b.IsArchived = archived
	return nil
}

func (m *memBookmarks) RecordVisit(ctx context.Context, userID, id string) error {
	b, err := m.find(userID, id)
	if err != nil {
		return err
	}
	b.VisitCount++
	now := time.Now()
	b.LastVisitedAt = &now
	return nil
}

func (m *memBookmarks) List(ctx context.Context, userID string, archived bool) ([]*models.Bookmark, error) {
	var out []*models.Bookmark
	for _, b := range m.items {
		if b.UserID == userID && b.IsArchived == archived {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type memRepos struct {
	users     *memUsers
	bookmarks *memBookmarks
}

func (m *memRepos) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *memRepos) Users(dbx.DBTX) users.Repository { return m.users }

func (m *memRepos) Bookmarks(dbx.DBTX) bookmarks.Repository { return m.bookmarks }

// --- fixture ---

type serverFixture struct {
	srv  *Server
	mock sqlmock.Sqlmock
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := &memRepos{
		users:     &memUsers{byEmail: map[string]*models.User{}},
		bookmarks: &memBookmarks{items: map[string]*models.Bookmark{}},
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	sessions := session.NewManager(session.NewMemoryStore(), time.Hour, false)

	authSvc := services.NewAuthService(db, repos, sessions, logger)
	bookmarkSvc := services.NewBookmarkService(db, repos, logger)

	return &serverFixture{
		srv:  NewServer(":0", authSvc, bookmarkSvc, logger),
		mock: mock,
	}
}

func (f *serverFixture) do(t *testing.T, method, target, cookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	}

	resp, err := f.srv.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

func (f *serverFixture) signUp(t *testing.T, email string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/sign-up", "", map[string]string{
		"name": "Ada", "email": email, "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotEmpty(t, cookie)
	return cookie
}

// --- auth flow ---

func TestSignUpMeLogOutFlow(t *testing.T) {
	f := newServerFixture(t)

	cookie := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodGet, "/api/me", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decodeBody[map[string]any](t, resp)
	assert.NotEmpty(t, me["user_id"])
	assert.Nil(t, me["user"])

	resp = f.do(t, http.MethodGet, "/api/me?userdata=1", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ada@example.com")
	assert.NotContains(t, strings.ToLower(string(raw)), "password")
	assert.NotContains(t, strings.ToLower(string(raw)), "salt")

	resp = f.do(t, http.MethodPost, "/api/auth/log-out", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	// the cleared cookie is expired and empty
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			assert.Empty(t, c.Value)
			assert.True(t, c.Expires.Before(time.Now()))
		}
	}

	resp = f.do(t, http.MethodGet, "/api/me", cookie, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignUpRejectsBadForm(t *testing.T) {
	f := newServerFixture(t)

	resp := f.do(t, http.MethodPost, "/api/auth/sign-up", "", map[string]string{
		"name": "Ada", "email": "not-an-email", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Invalid form data.", body["error"])
}

func TestSignUpDuplicateEmail(t *testing.T) {
	f := newServerFixture(t)
	f.signUp(t, "dup@example.com")

	resp := f.do(t, http.MethodPost, "/api/auth/sign-up", "", map[string]string{
		"name": "Eve", "email": "Dup@Example.com", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Email is already registered.", body["error"])
}

func TestSignInFailuresAreUniform(t *testing.T) {
	f := newServerFixture(t)
	f.signUp(t, "ada@example.com")

	for _, payload := range []map[string]string{
		{"email": "ada@example.com", "password": "Wr0ng-pass!X"},
		{"email": "ghost@example.com", "password": "Wr0ng-pass!X"},
	} {
		resp := f.do(t, http.MethodPost, "/api/auth/sign-in", "", payload)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody[map[string]string](t, resp)
		assert.Equal(t, "Invalid credentials.", body["error"])
	}
}

func TestSignInIssuesFreshSession(t *testing.T) {
	f := newServerFixture(t)
	first := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodPost, "/api/auth/sign-in", "", map[string]string{
		"email": "ada@example.com", "password": "Sup3r$ecret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := sessionCookie(resp)
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)

	// both sessions stay valid
	for _, cookie := range []string{first, second} {
		resp := f.do(t, http.MethodGet, "/api/me", cookie, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
}

func TestHomeRedirectsAnonymousVisitors(t *testing.T) {
	f := newServerFixture(t)

	resp := f.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/sign-in", resp.Header.Get("Location"))

	resp = f.do(t, http.MethodGet, "/sign-in", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHomeShowsSignedInUser(t *testing.T) {
	f := newServerFixture(t)
	cookie := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodGet, "/", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ada@example.com")
}

// --- bookmarks ---

func validBookmarkBody() map[string]any {
	return map[string]any{
		"title":       "Go Blog",
		"url":         "https://go.dev/blog",
		"description": "Release notes and articles",
		"tags":        []string{"go", "reading"},
	}
}

func TestBookmarksRequireAuthentication(t *testing.T) {
	f := newServerFixture(t)

	resp := f.do(t, http.MethodGet, "/api/bookmarks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/bookmarks", "", validBookmarkBody())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBookmarkLifecycle(t *testing.T) {
	f := newServerFixture(t)
	cookie := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodPost, "/api/bookmarks", cookie, validBookmarkBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[bookmarkPayload](t, resp)
	require.NotEmpty(t, created.ID)

	resp = f.do(t, http.MethodGet, "/api/bookmarks", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]bookmarkPayload](t, resp)
	require.Len(t, list, 1)

	resp = f.do(t, http.MethodPost, "/api/bookmarks/"+created.ID+"/pin", cookie, map[string]bool{"value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/bookmarks/"+created.ID+"/visit", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[bookmarkPayload](t, resp)
	assert.True(t, got.Pinned)
	assert.Equal(t, int64(1), got.VisitCount)
	require.NotNil(t, got.LastVisitedAt)

	resp = f.do(t, http.MethodPost, "/api/bookmarks/"+created.ID+"/archive", cookie, map[string]bool{"value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/bookmarks?archived=1", cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list = decodeBody[[]bookmarkPayload](t, resp)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsArchived)

	resp = f.do(t, http.MethodDelete, "/api/bookmarks/"+created.ID, cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, cookie, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookmarkEditOverHTTP(t *testing.T) {
	f := newServerFixture(t)
	cookie := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodPost, "/api/bookmarks", cookie, validBookmarkBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[bookmarkPayload](t, resp)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	resp = f.do(t, http.MethodPatch, "/api/bookmarks/"+created.ID, cookie, map[string]string{
		"title": "Go Blog, annotated",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, cookie, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[bookmarkPayload](t, resp)
	assert.Equal(t, "Go Blog, annotated", got.Title)
	assert.Equal(t, created.URL, got.URL)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestBookmarkMalformedIDIsNotFound(t *testing.T) {
	f := newServerFixture(t)
	cookie := f.signUp(t, "ada@example.com")

	resp := f.do(t, http.MethodGet, "/api/bookmarks/not-a-uuid", cookie, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Bookmark not found.", body["error"])
}

func TestBookmarkOwnershipIsolation(t *testing.T) {
	f := newServerFixture(t)
	owner := f.signUp(t, "ada@example.com")
	other := f.signUp(t, "eve@example.com")

	resp := f.do(t, http.MethodPost, "/api/bookmarks", owner, validBookmarkBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[bookmarkPayload](t, resp)

	resp = f.do(t, http.MethodGet, "/api/bookmarks/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodDelete, "/api/bookmarks/"+created.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/bookmarks", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]bookmarkPayload](t, resp)
	assert.Empty(t, list)
}

func TestInvalidBookmarkBody(t *testing.T) {
	f := newServerFixture(t)
	cookie := f.signUp(t, "ada@example.com")

	body := validBookmarkBody()
	body["tags"] = []string{}
	resp := f.do(t, http.MethodPost, "/api/bookmarks", cookie, body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	decoded := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Invalid bookmark data.", decoded["error"])
}
