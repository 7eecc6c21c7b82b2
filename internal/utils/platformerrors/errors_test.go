package platformerrors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogErrorLevels(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      string
	}{
		{ErrorTypeRejected, "info"},
		{ErrorTypeValidation, "warn"},
		{ErrorTypeQueryTimeout, "error"},
		{ErrorTypeInternal, "error"},
	}
	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithRequestID(context.Background(), "req-7")
			err := NewErrorWithContext(ctx, LayerDomain, tt.errorType, "something happened", errors.New("cause"), "code-1",
				map[string]any{"key": "uploads/a.txt"})

			LogError(zerolog.New(&buf), err)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.want, entry["level"])
			assert.Equal(t, string(tt.errorType), entry["error_type"])
			assert.Equal(t, "code-1", entry["error_uuid"])
			assert.Equal(t, "req-7", entry["request_id"])
			assert.Equal(t, "uploads/a.txt", entry["key"])
			assert.Equal(t, "cause", entry["error"])
			assert.Equal(t, "something happened", entry["message"])
		})
	}
}

func TestLogErrorIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	LogError(zerolog.New(&buf), nil)
	assert.Empty(t, buf.String())
}

func TestAsErrorKeepsTypeAndCode(t *testing.T) {
	inner := NewError(context.Background(), LayerRepository, ErrorTypeDatabaseError, "put failed", nil, "db-1")
	wrapped := AsError(context.Background(), LayerHandler, inner, "list photos")
	assert.Equal(t, ErrorTypeDatabaseError, wrapped.GetErrorType())
	assert.Equal(t, "db-1", wrapped.GetUUID())

	plain := AsError(context.Background(), LayerHandler, errors.New("boom"), "list photos")
	assert.Equal(t, ErrorTypeInternal, plain.GetErrorType())
	assert.Nil(t, AsError(context.Background(), LayerHandler, nil, "noop"))
}

func TestErrorTypeToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrorTypeToHTTPStatus(ErrorTypeRejected))
	assert.Equal(t, http.StatusBadRequest, ErrorTypeToHTTPStatus(ErrorTypeValidation))
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeToHTTPStatus(ErrorTypeQueryTimeout))
	assert.Equal(t, http.StatusInternalServerError, ErrorTypeToHTTPStatus("SOMETHING_NEW"))
}
