package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/middlewares"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/responses"
)

type mockPhotoLister struct {
	ListFunc func(ctx context.Context, filter photo.Filter) ([]photo.View, error)
}

func (m *mockPhotoLister) List(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
	return m.ListFunc(ctx, filter)
}

type mockChatQuerier struct {
	QueryFunc func(ctx context.Context, f chat.Filter) ([]chat.Row, error)
}

func (m *mockChatQuerier) Query(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
	return m.QueryFunc(ctx, f)
}

func newTestRouter(photos PhotoLister, chats ChatQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	provider := NewProvider(&config.Config{}, photos, chats, zerolog.Nop())
	engine := gin.New()
	engine.Use(middlewares.RequestID())
	engine.GET("/v1/photos", provider.Photos.List)
	engine.GET("/v1/chats", provider.Chats.Search)
	return engine
}

func serve(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Request-Id", "req-1")
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) responses.ErrorResponse {
	t.Helper()
	var body responses.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestPhotoListPassesFilter(t *testing.T) {
	var got photo.Filter
	lister := &mockPhotoLister{ListFunc: func(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
		got = filter
		return []photo.View{{
			Photo:        photo.Photo{PhotoID: "p1", Tags: []string{"gps"}},
			ThumbnailURL: "https://signed/thumb",
			OriginalURL:  "https://signed/original",
		}}, nil
	}}

	rec := serve(newTestRouter(lister, nil), "/v1/photos?sort_by=taken_at&tag=gps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, photo.Filter{SortBy: "taken_at", Tag: "gps"}, got)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "p1", body[0]["photo_id"])
	assert.Equal(t, "https://signed/thumb", body[0]["thumbnail_url"])
	assert.Equal(t, "https://signed/original", body[0]["original_url"])
	assert.NotContains(t, body[0], "taken_at")
}

func TestPhotoListEmptyIsArray(t *testing.T) {
	lister := &mockPhotoLister{ListFunc: func(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
		return nil, nil
	}}
	rec := serve(newTestRouter(lister, nil), "/v1/photos")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPhotoListInvalidSort(t *testing.T) {
	lister := &mockPhotoLister{ListFunc: func(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
		_, err := photo.ParseSortBy(filter.SortBy)
		return nil, err
	}}
	rec := serve(newTestRouter(lister, nil), "/v1/photos?sort_by=size")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, responses.CodeInvalidSort, body.Code)
	assert.Equal(t, "VALIDATION", body.Type)
	assert.Equal(t, "req-1", body.RequestID)
}

func TestPhotoListStoreFailure(t *testing.T) {
	lister := &mockPhotoLister{ListFunc: func(ctx context.Context, filter photo.Filter) ([]photo.View, error) {
		return nil, errors.New("scan failed")
	}}
	rec := serve(newTestRouter(lister, nil), "/v1/photos")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to list photos", decodeError(t, rec).Error)
}

func TestChatSearchParsesQuery(t *testing.T) {
	tests := []struct {
		target string
		want   chat.Filter
	}{
		{"/v1/chats", chat.Filter{Limit: chat.DefaultLimit}},
		{"/v1/chats?sender=Alice&search=hello&date=2024-03-15&limit=5", chat.Filter{Date: "2024-03-15", Sender: "Alice", Search: "hello", Limit: 5}},
		{"/v1/chats?limit=abc", chat.Filter{Limit: chat.DefaultLimit}},
		{"/v1/chats?limit=5000", chat.Filter{Limit: chat.MaxLimit}},
		{"/v1/chats?limit=0", chat.Filter{Limit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var got chat.Filter
			querier := &mockChatQuerier{QueryFunc: func(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
				got = f
				return nil, nil
			}}
			rec := serve(newTestRouter(nil, querier), tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `[]`, rec.Body.String())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChatSearchReturnsRows(t *testing.T) {
	querier := &mockChatQuerier{QueryFunc: func(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
		return []chat.Row{{MessageID: "abc", Date: "2024-03-15", Time: "10:00", Sender: "Alice", Text: "hi", WordCount: 1}}, nil
	}}
	rec := serve(newTestRouter(nil, querier), "/v1/chats")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"message_id":"abc","date":"2024-03-15","time":"10:00","sender":"Alice","text":"hi","word_count":1}]`, rec.Body.String())
}

func TestChatSearchEngineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantType string
	}{
		{"failed", fmt.Errorf("%w: FAILED: SYNTAX_ERROR", chat.ErrQueryFailed), responses.CodeQueryFailed, "QUERY_FAILED"},
		{"timeout", fmt.Errorf("%w after 60 polls", chat.ErrQueryTimeout), responses.CodeQueryTimeout, "QUERY_TIMEOUT"},
		{"other", errors.New("network unreachable"), "", "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			querier := &mockChatQuerier{QueryFunc: func(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
				return nil, tt.err
			}}
			rec := serve(newTestRouter(nil, querier), "/v1/chats")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestHandlerFailuresAreLoggedAsPlatformErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  string
		wantUUID  string
		wantLevel string
	}{
		{"timeout", fmt.Errorf("%w after 60 polls", chat.ErrQueryTimeout), "QUERY_TIMEOUT", responses.CodeQueryTimeout, "error"},
		{"unexpected", errors.New("network unreachable"), "INTERNAL", responses.CodeUnexpected, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			querier := &mockChatQuerier{QueryFunc: func(ctx context.Context, f chat.Filter) ([]chat.Row, error) {
				return nil, tt.err
			}}
			gin.SetMode(gin.TestMode)
			provider := NewProvider(&config.Config{}, nil, querier, zerolog.New(&buf))
			engine := gin.New()
			engine.Use(middlewares.RequestID())
			engine.GET("/v1/chats", provider.Chats.Search)

			rec := serve(engine, "/v1/chats")
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.wantType, entry["error_type"])
			assert.Equal(t, tt.wantUUID, entry["error_uuid"])
			assert.Equal(t, "req-1", entry["request_id"])
			assert.Equal(t, "chat-handler", entry["component"])
		})
	}
}
