package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/config"
)

// newStaticValidator builds a validator around a fixed key function.
func newStaticValidator(cfg *config.Config, keyfunc jwt.Keyfunc, log zerolog.Logger) *Validator {
	v := &Validator{cfg: cfg, log: log, keyfunc: keyfunc}
	v.ready.Store(true)
	return v
}

func newTestEngine(t *testing.T, key *rsa.PrivateKey, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	v := newStaticValidator(cfg, func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }, zerolog.Nop())

	engine := gin.New()
	engine.Use(v.Middleware())
	engine.GET("/v1/photos", func(c *gin.Context) {
		_, ok := c.Get(ContextKeyToken)
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})
	engine.OPTIONS("/v1/photos", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return engine
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestMiddleware(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	cfg := &config.Config{AuthEnabled: true, AuthIssuer: "https://id.example", AuthAudience: "lifelog"}
	engine := newTestEngine(t, key, cfg)

	valid := jwt.MapClaims{
		"iss": "https://id.example",
		"aud": "lifelog",
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	wrongIssuer := jwt.MapClaims{"iss": "https://other.example", "aud": "lifelog", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"iss": "https://id.example", "aud": "lifelog", "exp": time.Now().Add(-time.Hour).Unix()}

	tests := []struct {
		name   string
		method string
		header string
		want   int
	}{
		{"valid token", http.MethodGet, "Bearer " + signToken(t, key, valid), http.StatusOK},
		{"lowercase scheme", http.MethodGet, "bearer " + signToken(t, key, valid), http.StatusOK},
		{"missing header", http.MethodGet, "", http.StatusUnauthorized},
		{"not bearer", http.MethodGet, "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong issuer", http.MethodGet, "Bearer " + signToken(t, key, wrongIssuer), http.StatusUnauthorized},
		{"expired", http.MethodGet, "Bearer " + signToken(t, key, expired), http.StatusUnauthorized},
		{"garbage", http.MethodGet, "Bearer not.a.jwt", http.StatusUnauthorized},
		{"preflight passes through", http.MethodOptions, "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/photos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := &Validator{cfg: &config.Config{AuthEnabled: false}}
	engine := gin.New()
	engine.Use(v.Middleware())
	engine.GET("/v1/chats", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/chats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("BEARER  abc "))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}

func TestReady(t *testing.T) {
	var nilValidator *Validator
	assert.True(t, nilValidator.Ready())
	assert.False(t, (&Validator{}).Ready())
}
