package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
)

type stubPhotos struct{}

func (stubPhotos) List(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
	return []photo.View{{Photo: photo.Photo{PhotoID: "p1"}}}, nil
}

type stubChats struct{}

func (stubChats) Query(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
	return []chat.Row{{MessageID: "m1"}}, nil
}

type stubHealth struct{ err error }

func (s stubHealth) Health(ctx context.Context) error { return s.err }

func newTestServer(health HealthChecker) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{ServiceName: "lifelog-api", CORSOrigins: []string{"*"}}
	return New(cfg, zerolog.Nop(), stubPhotos{}, stubChats{}, nil, health).Handler()
}

func TestRoutes(t *testing.T) {
	handler := newTestServer(stubHealth{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/health/auth", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/swagger/index.html", http.StatusOK},
		{http.MethodGet, "/v1/photos", http.StatusOK},
		{http.MethodGet, "/v1/chats", http.StatusOK},
		{http.MethodGet, "/photos", http.StatusOK},
		{http.MethodGet, "/chats?limit=3", http.StatusOK},
		{http.MethodOptions, "/v1/photos", http.StatusNoContent},
		{http.MethodOptions, "/chats", http.StatusNoContent},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestReadyzReportsStorageFailure(t *testing.T) {
	handler := newTestServer(stubHealth{err: errors.New("bucket gone")})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "bucket gone")
}
