package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, http.StatusInternalServerError, wrappedErr.HTTPStatus)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))
	assert.Nil(t, Wrap(nil, DatabaseError, "unused"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Form", "f-1")
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Form not found", err.Message)
	assert.Equal(t, "ID: f-1", err.Detail)
	assert.Equal(t, http.StatusNotFound, err.GetHTTPStatus())
}

func TestNewDatabaseError_Sanitizes(t *testing.T) {
	raw := fmt.Errorf("pq: relation forms does not exist")
	err := NewDatabaseError(raw)
	assert.Equal(t, "Database operation failed", err.Message)
	assert.NotContains(t, err.Error(), "relation")
	assert.Equal(t, raw, err.Raw)
}

func TestWithData(t *testing.T) {
	err := ValidationFailed("Missing required fields", "").
		WithData("fields", []string{"name"})
	assert.Equal(t, []string{"name"}, err.Data["fields"])
}

func TestGetHTTPStatus_Defaults(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{EmbedDeniedError, http.StatusForbidden},
		{ConflictError, http.StatusConflict},
		{RateLimitError, http.StatusTooManyRequests},
		{MediaTypeError, http.StatusUnsupportedMediaType},
		{ErrorType("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.want, (&AppError{Type: tt.errType}).GetHTTPStatus())
		})
	}
}
