package suggest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(p SnapshotProvider) http.Handler {
	h := NewHandler(newService(p), nil, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/tasks", h.Routes)
	return r
}

func get(t *testing.T, srv http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestWordsEndpoint(t *testing.T) {
	w := get(t, newTestRouter(&fakeProvider{tasks: groceries()}), "/tasks/suggestions")
	require.Equal(t, http.StatusOK, w.Code)

	var out []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "consider tasks related to 'buy'", out[0])
}

func TestClustersEndpoint(t *testing.T) {
	srv := newTestRouter(&fakeProvider{tasks: groceries()})

	w := get(t, srv, "/tasks/suggestions/clusters?threshold=0.5&top_k=3")
	require.Equal(t, http.StatusOK, w.Code)
	var out [][]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, [][]string{{"Buy milk", "Buy bread"}}, out)

	for _, q := range []string{"top_k=0", "threshold=1.5", "threshold=abc", "top_k=x"} {
		assert.Equal(t, http.StatusBadRequest, get(t, srv, "/tasks/suggestions/clusters?"+q).Code, q)
	}
}

func TestCombinedEndpoint(t *testing.T) {
	srv := newTestRouter(&fakeProvider{tasks: groceries()})

	w := get(t, srv, "/tasks/suggestions/combined?count=1")
	require.Equal(t, http.StatusOK, w.Code)
	var out []string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Len(t, out, 1)

	assert.Equal(t, http.StatusBadRequest, get(t, srv, "/tasks/suggestions/combined?count=0").Code)
}

func TestEmptyCorpusEndpoints(t *testing.T) {
	srv := newTestRouter(&fakeProvider{})

	for _, path := range []string{"/tasks/suggestions", "/tasks/suggestions/clusters", "/tasks/suggestions/combined"} {
		w := get(t, srv, path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `[]`, w.Body.String(), path)
	}
}

func TestUpstreamUnavailableEndpoint(t *testing.T) {
	srv := newTestRouter(&fakeProvider{err: errors.New("db down")})

	w := get(t, srv, "/tasks/suggestions/combined")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
}
