package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
	assert.Equal(t, "User not found", NewNotFoundError("user", "User not found").Error())
	assert.Equal(t, "Users are already friends", NewConflictError("Users are already friends").Error())
	assert.Equal(t, "validation failed: username - is required", NewValidationError("username", "is required").Error())
	assert.Equal(t, "validation failed: invalid argument", NewValidationError("", "invalid argument").Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NewNotFoundError("user", ""), http.StatusNotFound},
		{NewConflictError("conflict"), http.StatusConflict},
		{NewValidationError("", "bad input"), http.StatusBadRequest},
		{NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		statuser, ok := tt.err.(HTTPStatuser)
		assert.True(t, ok)
		assert.Equal(t, tt.status, statuser.HTTPStatus())
	}
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("store failure", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store failure")

	wrapped := fmt.Errorf("outer: %w", err)
	var internal *InternalError
	assert.True(t, errors.As(wrapped, &internal))
}
