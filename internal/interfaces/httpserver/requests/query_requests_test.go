package requests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
)

func bindQuery(t *testing.T, target string, dst any) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c.ShouldBindQuery(dst)
}

func TestListPhotosRequestBinding(t *testing.T) {
	var req ListPhotosRequest
	require.NoError(t, bindQuery(t, "/v1/photos?sort_by=taken_at&tag=%20gps%20", &req))
	assert.Equal(t, photo.Filter{SortBy: "taken_at", Tag: "gps"}, req.ToDomain())

	req = ListPhotosRequest{}
	require.NoError(t, bindQuery(t, "/v1/photos", &req))
	assert.Equal(t, photo.Filter{}, req.ToDomain())

	req = ListPhotosRequest{}
	assert.Error(t, bindQuery(t, "/v1/photos?sort_by=size", &req))
}

func TestSearchChatsRequestBinding(t *testing.T) {
	var req SearchChatsRequest
	require.NoError(t, bindQuery(t, "/v1/chats?date=2024-01-02&sender=%20alice&search=lunch&limit=5", &req))
	assert.Equal(t, chat.Filter{Date: "2024-01-02", Sender: "alice", Search: "lunch", Limit: 5}, req.ToDomain())

	req = SearchChatsRequest{}
	require.NoError(t, bindQuery(t, "/v1/chats?limit=lots", &req))
	assert.Equal(t, chat.DefaultLimit, req.ToDomain().Limit)
}
