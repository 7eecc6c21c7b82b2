package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"jan-server/services/lifelog-api/internal/domain/chat"
	"jan-server/services/lifelog-api/internal/domain/photo"
	"jan-server/services/lifelog-api/internal/utils/platformerrors"
)

// ErrorResponse represents an error response with platform error details
type ErrorResponse struct {
	Code          string `json:"code"` // UUID from PlatformError
	Type          string `json:"type,omitempty"`
	Error         string `json:"error"`
	Message       string `json:"message,omitempty"`
	ErrorInstance error  `json:"-"`
	RequestID     string `json:"request_id,omitempty"`
}

// Stable codes for the domain sentinels, so clients can tell the failure modes apart.
const (
	CodeQueryFailed  = "6c1f0e7a-3b2d-4e9a-8f5c-1d7b2a9e4c30"
	CodeQueryTimeout = "9a4e2c7b-5d1f-4b8e-a3c6-7f0d2e9b1a58"
	CodeInvalidSort  = "2b8d4f1e-7c3a-4a5d-9e6b-0c1f3a7d5e92"
	CodeUnexpected   = "d3e8a6b2-1f4c-4c7e-9a0d-5b6f2e8c1a47"
)

// FromDomainError lifts the domain sentinels into typed platform errors. Other errors pass through.
func FromDomainError(c *gin.Context, err error) error {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		return err
	}
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, chat.ErrQueryTimeout):
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeQueryTimeout,
			"chat query did not complete in time", err, CodeQueryTimeout)
	case errors.Is(err, chat.ErrQueryFailed):
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeQueryFailed,
			"chat query failed", err, CodeQueryFailed)
	case errors.Is(err, photo.ErrInvalidSort):
		return platformerrors.NewError(ctx, platformerrors.LayerHandler, platformerrors.ErrorTypeValidation,
			photo.ErrInvalidSort.Error(), err, CodeInvalidSort)
	}
	return err
}

// HandleErrorWithLog logs err as a platform error, then responds like HandleError.
func HandleErrorWithLog(reqCtx *gin.Context, log zerolog.Logger, err error, message string) {
	err = FromDomainError(reqCtx, err)

	var platformErr *platformerrors.PlatformError
	if !errors.As(err, &platformErr) {
		platformErr = platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeInternal, message, err, CodeUnexpected)
	}
	platformerrors.LogError(log, platformErr)

	HandleError(reqCtx, err, message)
}

// HandleError handles domain errors and returns appropriate HTTP responses
func HandleError(reqCtx *gin.Context, err error, message string) {
	err = FromDomainError(reqCtx, err)
	_ = reqCtx.Error(err)

	var domainErr *platformerrors.PlatformError
	if errors.As(err, &domainErr) {
		statusCode := platformerrors.ErrorTypeToHTTPStatus(domainErr.GetErrorType())

		errorMessage := domainErr.Message
		if errorMessage == "" {
			errorMessage = message
		}
		requestID := domainErr.GetRequestID()
		if requestID == "" {
			requestID = reqCtx.GetString("request_id")
		}

		reqCtx.AbortWithStatusJSON(statusCode, ErrorResponse{
			Code:          domainErr.GetUUID(),
			Type:          string(domainErr.GetErrorType()),
			Error:         errorMessage,
			Message:       message,
			ErrorInstance: domainErr,
			RequestID:     requestID,
		})
		return
	}
	// Non-platform errors
	reqCtx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Type:          string(platformerrors.ErrorTypeInternal),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     reqCtx.GetString("request_id"),
	})
}

// HandleNewError creates a new typed error at the route layer and handles it
func HandleNewError(reqCtx *gin.Context, errorType platformerrors.ErrorType, message string, uuid string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerRoute, errorType, message, nil, uuid)

	reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(err.GetErrorType()), ErrorResponse{
		Code:          err.GetUUID(),
		Type:          string(err.GetErrorType()),
		Error:         message,
		Message:       message,
		ErrorInstance: err,
		RequestID:     err.GetRequestID(),
	})
}
