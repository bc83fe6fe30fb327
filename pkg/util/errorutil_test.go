package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	upstream := errors.New("stream api error (status 500)")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        NewValidationError("firstName is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantMsg:    "firstName is required",
		},
		{
			name:       "wrapped domain error",
			err:        fmt.Errorf("handler: %w", NewValidationError("lastName must be a string")),
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantMsg:    "lastName must be a string",
		},
		{
			name:       "fiber not found",
			err:        fiber.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
			wantMsg:    "Not Found",
		},
		{
			name:       "plain error keeps raw message",
			err:        upstream,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantMsg:    "stream api error (status 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantMsg, de.Message)
			assert.Equal(t, fiber.Map{"error": tt.wantMsg}, ErrorBody(de))
		})
	}
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestNewInternalErrorWithoutCause(t *testing.T) {
	de := ToDomainError(NewInternalError(nil))
	assert.Equal(t, "internal server error", de.Message)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
}
