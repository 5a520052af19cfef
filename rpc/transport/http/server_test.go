package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	tr := &httpServerTransport{
		handler: func(shardId uint64, req []byte) []byte {
			return append([]byte{byte(shardId)}, req...)
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{shardId}", loggerMiddleware(tr.handleRequest))
	mux.HandleFunc("GET /metrics", HandleMetrics)
	return mux
}

func TestHandleRequest(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/7", bytes.NewReader([]byte("abc"))))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, append([]byte{7}, "abc"...), rec.Body.Bytes())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/not-a-number", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/7", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleMetrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestMux(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	// process metrics are always part of the output
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
