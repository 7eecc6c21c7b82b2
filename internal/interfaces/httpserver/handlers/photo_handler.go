package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/config"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/requests"
	"jan-server/services/lifelog-api/internal/interfaces/httpserver/responses"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// PhotoLister is the photo listing the handler serves, implemented by photo.Service.
type PhotoLister interface {
	List(ctx context.Context, filter photo.Filter) ([]photo.View, error)
}

// PhotoHandler exposes photo metadata endpoints.
type PhotoHandler struct {
	cfg     *config.Config
	service PhotoLister
	log     zerolog.Logger
}

func NewPhotoHandler(cfg *config.Config, service PhotoLister, log zerolog.Logger) *PhotoHandler {
	return &PhotoHandler{
		cfg:     cfg,
		service: service,
		log:     log.With().Str("component", "photo-handler").Logger(),
	}
}

// List godoc
// @Summary      List photos
// @Description  Returns every processed photo with short lived thumbnail and original download URLs.
// @Tags         photos
// @Produce      json
// @Param        sort_by  query     string  false  "uploaded_at (default) or taken_at"
// @Param        tag      query     string  false  "Only photos carrying this tag"
// @Success      200      {array}   photo.View
// @Failure      400      {object}  responses.ErrorResponse
// @Failure      500      {object}  responses.ErrorResponse
// @Security     BearerAuth
// @Router       /v1/photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	var req requests.ListPhotosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, photo.ErrInvalidSort.Error(), responses.CodeInvalidSort)
		return
	}
	filter := req.ToDomain()

	views, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		responses.HandleErrorWithLog(c, h.log, err, "failed to list photos")
		return
	}
	if views == nil {
		views = []photo.View{}
	}
	c.JSON(http.StatusOK, views)
}
