package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorToHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrNotFound:           http.StatusNotFound,
		ErrInvalidInput:       http.StatusBadRequest,
		ErrInvalidCredentials: http.StatusUnauthorized,
		ErrForbidden:          http.StatusForbidden,
		ErrDuplicate:          http.StatusConflict,
		ErrActorTimeout:       http.StatusGatewayTimeout,
		ErrDatabase:           http.StatusInternalServerError,
		"SOMETHING_ELSE":      http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, AppErrorToHTTPStatus(code), code)
	}
}

func TestErrorCodeThroughWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("loading post: %w", NewAppError(ErrDatabase, "query failed", cause))

	assert.True(t, IsErrorCode(err, ErrDatabase))
	assert.False(t, IsErrorCode(err, ErrNotFound))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsErrorCode(cause, ErrDatabase))

	appErr, ok := AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, "query failed: connection reset", appErr.Error())
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{"text": "required"})
	assert.Equal(t, ErrInvalidInput, err.Code)
	assert.Equal(t, "required", err.Fields["text"])
	assert.True(t, IsAuthError(NewForbiddenError("no")))
	assert.False(t, IsAuthError(err))
}
