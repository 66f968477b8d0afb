package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libracatalog/internal/circulation"
	"libracatalog/internal/config"
	"libracatalog/internal/logger"
	"libracatalog/pkg/eventstore"
)

func newTestServer(limit float64, burst int) http.Handler {
	cfg := &config.Config{ListenPort: ":0", RateLimit: limit, RateBurst: burst}
	svc := circulation.NewService(eventstore.NewEventStore(), logger.NewNop())
	return New(cfg, logger.NewNop(), svc).Handler()
}

func TestServerRoutesThroughMiddleware(t *testing.T) {
	h := newTestServer(100, 100)

	body := strings.NewReader(`{"kind":"DVD","title":"Alien","author":"Scott","duration":"117"}`)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items", body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestServerRateLimits(t *testing.T) {
	h := newTestServer(0.001, 1)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
