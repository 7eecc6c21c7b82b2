package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

func newEngine(origins []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), CORSMiddleware(origins), LoggingMiddleware(zerolog.Nop()), MetricsMiddleware())
	engine.GET("/v1/chats", func(c *gin.Context) {
		err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeInternal, "x", nil, "")
		c.JSON(http.StatusOK, gin.H{"request_id": RequestIDFromContext(c), "error_request_id": err.RequestID})
	})
	return engine
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine([]string{"*"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	id := rec.Header().Get("X-Request-Id")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_id":"`+id+`","error_request_id":"`+id+`"}`, rec.Body.String())
}

func TestRequestIDKeepsIncomingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	newEngine([]string{"*"}).ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
}

func TestCORSWildcard(t *testing.T) {
	engine := newEngine([]string{"*"})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chats", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	preflight := httptest.NewRequest(http.MethodOptions, "/v1/chats", nil)
	preflight.Header.Set("Origin", "https://app.example")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORSAllowList(t *testing.T) {
	engine := newEngine([]string{"https://app.example"})

	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
