package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epitaphe360/cms-backend/auth"
	"github.com/epitaphe360/cms-backend/config"
	"github.com/epitaphe360/cms-backend/database"
	"github.com/epitaphe360/cms-backend/database/dbtest"
	"github.com/epitaphe360/cms-backend/models"
	"github.com/epitaphe360/cms-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type testServer struct {
	handler http.Handler
	svc     *services.Services
	tokens  *auth.Tokens
	admin   *models.User
	editor  *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens := auth.NewTokens(testSecret, time.Hour, "test")
	svc := services.New(database.New(dbtest.Open(t)), nil, tokens)
	cfg := &config.Config{
		AcceptedOrigins: []string{"http://localhost:3000"},
		MaxUploadMB:     1,
		LogFormat:       "json",
	}

	system := auth.Actor{Role: models.RoleAdmin}
	admin, err := svc.Users.Create(context.Background(), []byte(`{"email":"admin@epitaphe360.com","name":"Admin","password":"admin-password","role":"ADMIN"}`), system)
	require.NoError(t, err)
	editor, err := svc.Users.Create(context.Background(), []byte(`{"email":"redaction@epitaphe360.com","name":"Rédaction","password":"editor-password"}`), system)
	require.NoError(t, err)

	return &testServer{
		handler: NewRouter(cfg, svc),
		svc:     svc,
		tokens:  tokens,
		admin:   admin,
		editor:  editor,
	}
}

func (s *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, _, err := s.tokens.Issue(user)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type listBody[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/login", "", `{"email":"ADMIN@epitaphe360.com","password":"admin-password"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	session := decode[auth.Session](t, rec)
	assert.NotEmpty(t, session.Token)
	assert.NotContains(t, rec.Body.String(), "argon2id")

	me := s.do(t, http.MethodGet, "/api/admin/me", session.Token, "")
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, s.admin.ID, decode[models.User](t, me).ID)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)

	unknown := s.do(t, http.MethodPost, "/api/admin/login", "", `{"email":"nobody@epitaphe360.com","password":"admin-password"}`)
	wrong := s.do(t, http.MethodPost, "/api/admin/login", "", `{"email":"admin@epitaphe360.com","password":"wrong-password"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Equal(t, "Identifiants invalides", decode[ErrorResponse](t, wrong).Error)
}

func TestSessionFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)

	past := auth.NewTokens(testSecret, time.Hour, "test").WithClock(func() time.Time { return time.Now().Add(-3 * time.Hour) })
	expired, _, err := past.Issue(s.admin)
	require.NoError(t, err)

	missing := s.do(t, http.MethodGet, "/api/admin/articles", "", "")
	malformed := s.do(t, http.MethodGet, "/api/admin/articles", "garbage", "")
	stale := s.do(t, http.MethodGet, "/api/admin/articles", expired, "")

	for _, rec := range []*httptest.ResponseRecorder{missing, malformed, stale} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, missing.Body.String(), rec.Body.String())
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	editorToken := s.token(t, s.editor)
	adminToken := s.token(t, s.admin)

	for _, path := range []string{"/api/admin/users", "/api/admin/audit-logs"} {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, editorToken, "").Code, path)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, adminToken, "").Code, path)
	}

	users := s.do(t, http.MethodGet, "/api/admin/users", adminToken, "")
	assert.NotContains(t, users.Body.String(), "password")
	assert.NotContains(t, users.Body.String(), "argon2id")
	assert.Equal(t, int64(2), decode[listBody[models.User]](t, users).Total)
}

func TestArticleLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.editor)

	rec := s.do(t, http.MethodPost, "/api/admin/articles", token, `{"title":"Salon Expo 2024","slug":"salon-expo-2024","content":"<p>Rendez-vous</p>"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Article](t, rec)
	assert.Equal(t, s.editor.ID, created.AuthorID)
	assert.Nil(t, created.PublishedAt)

	public := decode[listBody[models.Article]](t, s.do(t, http.MethodGet, "/api/articles?status=DRAFT", "", ""))
	assert.Equal(t, int64(0), public.Total)

	rec = s.do(t, http.MethodPost, "/api/admin/articles/"+created.ID.String()+"/publish", token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	published := decode[models.Article](t, rec)
	require.NotNil(t, published.PublishedAt)

	rec = s.do(t, http.MethodPut, "/api/admin/articles/"+created.ID.String(), token, `{"excerpt":"Trois jours","sections":{"gallery":["a.jpg"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[models.Article](t, rec)
	assert.Equal(t, "Trois jours", updated.Excerpt)
	assert.Equal(t, "Salon Expo 2024", updated.Title)
	assert.True(t, published.PublishedAt.Equal(*updated.PublishedAt))

	public = decode[listBody[models.Article]](t, s.do(t, http.MethodGet, "/api/articles", "", ""))
	require.Equal(t, int64(1), public.Total)
	assert.Equal(t, created.ID, public.Data[0].ID)

	rec = s.do(t, http.MethodPost, "/api/admin/articles/"+created.ID.String()+"/unpublish", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	public = decode[listBody[models.Article]](t, s.do(t, http.MethodGet, "/api/articles", "", ""))
	assert.Equal(t, int64(0), public.Total)

	rec = s.do(t, http.MethodDelete, "/api/admin/articles/"+created.ID.String(), token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	audit := s.do(t, http.MethodGet, "/api/admin/audit-logs?entityId="+created.ID.String(), s.token(t, s.admin), "")
	require.Equal(t, http.StatusOK, audit.Code)
	entries := decode[listBody[models.AuditLog]](t, audit)
	assert.Equal(t, int64(5), entries.Total)
	actions := map[models.AuditAction]int{}
	for _, entry := range entries.Data {
		actions[entry.Action]++
		assert.Equal(t, s.editor.ID, entry.UserID)
	}
	assert.Equal(t, map[models.AuditAction]int{models.AuditCreate: 1, models.AuditUpdate: 3, models.AuditDelete: 1}, actions)
}

func TestErrorsAreMapped(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.editor)

	rec := s.do(t, http.MethodDelete, "/api/admin/articles/4f0e8f7e-3f55-4c61-a3f4-2cf4f0a4f5b1", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Article non trouvé", decode[ErrorResponse](t, rec).Error)

	articles, err := s.svc.AuditLogs.List(context.Background(), database.AuditQuery{EntityType: "article"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), articles.Total)

	rec = s.do(t, http.MethodGet, "/api/admin/articles/not-a-uuid", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decode[ErrorResponse](t, rec).Field)

	rec = s.do(t, http.MethodPost, "/api/admin/events", token, `{"title":"Soirée","slug":"soiree","startDate":"2024-09-10T18:00:00Z","endDate":"2024-09-09T18:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "endDate", decode[ErrorResponse](t, rec).Field)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/admin/categories", token, `{"name":"Presse","type":"ARTICLE"}`).Code)
	rec = s.do(t, http.MethodPost, "/api/admin/categories", token, `{"name":"Presse","type":"ARTICLE"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "error", decode[ErrorResponse](t, rec).Status)

	rec = s.do(t, http.MethodPost, "/api/admin/pages", token, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/articles?limit=abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "limit", decode[ErrorResponse](t, rec).Field)
}

func TestMalformedUUIDFilters(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.editor)

	for _, path := range []string{"/api/articles?categoryId=abc", "/api/events?categoryId=1%27%20OR%201=1"} {
		rec := s.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "categoryId", decode[ErrorResponse](t, rec).Field, path)
	}

	rec := s.do(t, http.MethodGet, "/api/admin/articles?categoryId=not-a-uuid", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/articles?categoryId=4f0e8f7e-3f55-4c61-a3f4-2cf4f0a4f5b1", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(0), decode[listBody[models.Article]](t, rec).Total)
}

func TestGrapesDocuments(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.editor)

	rec := s.do(t, http.MethodPost, "/api/admin/pages", token, `{"title":"Nos solutions","slug":"nos-solutions","sections":{"customData":{"tiles":4}}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	page := decode[models.Page](t, rec)

	rec = s.do(t, http.MethodPut, "/api/grapes/pages/"+page.ID.String(), token,
		`{"name":"Nos solutions","path":"/nos-solutions","html":"<main>Solutions</main>","css":"main{}","status":"published"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := decode[map[string]any](t, rec)
	assert.Equal(t, "published", doc["status"])
	assert.Equal(t, "/nos-solutions", doc["path"])

	stored := decode[models.Page](t, s.do(t, http.MethodGet, "/api/admin/pages/"+page.ID.String(), token, ""))
	assert.Equal(t, map[string]any{"tiles": float64(4)}, stored.Sections["customData"])
	assert.Equal(t, models.TemplateVisualEditor, stored.Template)
	assert.NotNil(t, stored.PublishedAt)

	rec = s.do(t, http.MethodGet, "/api/grapes/pages/by-path?path=/nos-solutions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<main>Solutions</main>", decode[map[string]any](t, rec)["html"])

	rec = s.do(t, http.MethodPost, "/api/grapes/pages", token, `{"name":"Brouillon","path":"brouillon","html":"<p>wip</p>","status":"draft"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/grapes/pages/by-path?path=brouillon", "", "").Code)

	rec = s.do(t, http.MethodPost, "/api/grapes/pages", token, `{"name":"Événementiel","path":"/nos-services/evenementiel","html":"<p>events</p>","status":"published"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/nos-services/evenementiel", decode[map[string]any](t, rec)["path"])
	rec = s.do(t, http.MethodGet, "/api/grapes/pages/by-path?path=/nos-services/evenementiel", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "<p>events</p>", decode[map[string]any](t, rec)["html"])

	rec = s.do(t, http.MethodGet, "/api/grapes/pages", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 3)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/grapes/pages", "", "").Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, s.editor)

	upload := func(field string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		form := multipart.NewWriter(&body)
		part, err := form.CreateFormFile(field, "logo.png")
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\n0000"))
		require.NoError(t, err)
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/admin/media/upload", &body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	missing := upload("attachment")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "file", decode[ErrorResponse](t, missing).Field)

	rec := upload("file")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Stockage des médias non configuré", decode[ErrorResponse](t, rec).Error)

	media := decode[listBody[models.Media]](t, s.do(t, http.MethodGet, "/api/admin/media", token, ""))
	assert.Equal(t, int64(0), media.Total)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/admin/articles", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	allowed := preflight("http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", allowed.Header().Get("Access-Control-Allow-Origin"))

	blocked := preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, blocked.Code)
}
