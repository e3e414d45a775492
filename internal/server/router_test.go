package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskhub-backend/internal/analytics"
	"taskhub-backend/internal/db"
	"taskhub-backend/internal/metrics"
	"taskhub-backend/internal/suggest"
	"taskhub-backend/internal/tasks"
)

func newTestRouter(t *testing.T, secret string) http.Handler {
	t.Helper()
	ctx := context.Background()
	dbx, err := db.Connect(ctx, db.DriverSQLite, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })
	require.NoError(t, db.Migrate(ctx, dbx, db.DriverSQLite))

	logger := zap.NewNop()
	m := metrics.New(nil)
	store := tasks.NewStore(dbx)
	cfg := suggest.DefaultConfig()
	cfg.Threshold = 0.5

	return New(Deps{
		DB:          dbx,
		Logger:      logger,
		Metrics:     m,
		Tasks:       store,
		Suggest:     suggest.NewService(store, cfg, logger, suggest.WithMetrics(m)),
		Events:      analytics.NewRecorder(dbx, logger),
		JWTSecret:   []byte(secret),
		CORSOrigins: []string{"*"},
	})
}

func send(t *testing.T, srv http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func createTask(t *testing.T, srv http.Handler, token, title, description, status string) {
	t.Helper()
	body := `{"title":"` + title + `","description":"` + description + `","due_date":"2024-01-01T00:00:00Z","status":"` + status + `"}`
	require.Equal(t, http.StatusCreated, send(t, srv, http.MethodPost, "/tasks", token, body).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestRouter(t, "")

	assert.Equal(t, http.StatusOK, send(t, srv, http.MethodGet, "/health", "", "").Code)

	w := send(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taskhub_http_requests_total")
}

func TestOpenTaskRoutesAndSuggestions(t *testing.T) {
	srv := newTestRouter(t, "")

	createTask(t, srv, "", "Buy milk", "Buy milk from store", "completed")
	createTask(t, srv, "", "Buy bread", "Buy bread from store", "completed")
	createTask(t, srv, "", "Write report", "Write quarterly report", "pending")

	w := send(t, srv, http.MethodGet, "/tasks/suggestions", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var words []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&words))
	assert.Contains(t, words, "consider tasks related to 'buy'")
	assert.Contains(t, words, "consider a follow-up like 'Buy milk' often completed after 'Buy bread'")

	w = send(t, srv, http.MethodGet, "/tasks/suggestions/clusters?threshold=0.5&top_k=100", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var clusters [][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&clusters))
	assert.Equal(t, [][]string{{"Buy milk", "Buy bread"}}, clusters)

	w = send(t, srv, http.MethodGet, "/tasks/suggestions/combined?count=3", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var combined []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&combined))
	assert.Equal(t, []string{"these tasks appear related: Buy milk, Buy bread"}, combined)

	assert.Equal(t, http.StatusBadRequest,
		send(t, srv, http.MethodGet, "/tasks/suggestions/clusters?top_k=0", "", "").Code)

	assert.Equal(t, http.StatusOK,
		send(t, srv, http.MethodPost, "/events/suggestions", "", `{"action":"accepted","kind":"combined","position":0}`).Code)
}

func TestTaskRoutesRequireTokenWhenSecretSet(t *testing.T) {
	srv := newTestRouter(t, "s3cret")

	assert.Equal(t, http.StatusUnauthorized, send(t, srv, http.MethodGet, "/tasks", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, http.MethodGet, "/tasks/suggestions", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized,
		send(t, srv, http.MethodPost, "/events/suggestions", "", `{"action":"accepted","kind":"combined","position":0}`).Code)

	w := send(t, srv, http.MethodPost, "/auth/register", "", `{"email":"dev@example.com","password":"password1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reg))

	createTask(t, srv, reg.Token, "Plan sprint", "Plan next sprint", "pending")
	w = send(t, srv, http.MethodGet, "/tasks", reg.Token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []tasks.Task
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestAuthRoutesAbsentWithoutSecret(t *testing.T) {
	srv := newTestRouter(t, "")
	assert.Equal(t, http.StatusNotFound,
		send(t, srv, http.MethodPost, "/auth/register", "", `{"email":"dev@example.com","password":"password1"}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestRouter(t, "")

	r := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	r.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
