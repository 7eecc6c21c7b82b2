package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/requests"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/responses"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// ChatQuerier runs chat message queries, implemented by chat.QueryService.
type ChatQuerier interface {
	Query(ctx context.Context, f chat.Filter) ([]chat.Row, error)
}

// ChatHandler exposes the chat message search endpoint.
type ChatHandler struct {
	cfg     *config.Config
	service ChatQuerier
	log     zerolog.Logger
}

func NewChatHandler(cfg *config.Config, service ChatQuerier, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "chat-handler").Logger(),
	}
}

// Search godoc
// @Summary      Search chat messages
// @Description  Returns chat messages matching the optional filters, newest date first.
// @Description  An unparsable limit falls back to the default rather than failing the request.
// @Tags         chats
// @Produce      json
// @Param        date    query     string  false  "Exact message date, YYYY-MM-DD"
// @Param        sender  query     string  false  "Case-insensitive sender substring"
// @Param        search  query     string  false  "Case-insensitive text substring"
// @Param        limit   query     int     false  "Maximum rows (1-1000, default 200)"
// @Success      200     {array}   chat.Row
// @Failure      500     {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/chats [get]
func (h *ChatHandler) Search(c *gin.Context) {
	var req requests.SearchChatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid chat query", "")
		return
	}
	filter := req.ToDomain()

	rows, err := h.service.Query(c.Request.Context(), filter)
	if err != nil {
		responses.HandleErrorWithLog(c, h.log, err, "failed to query chat messages")
		return
	}
	if rows == nil {
		rows = []chat.Row{}
	}
	c.JSON(http.StatusOK, rows)
}
