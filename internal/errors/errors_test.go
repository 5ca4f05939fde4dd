package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap(ErrInternalServer, cause)

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrInternalServer)
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrAccountNotFound, "destination account not found")

	assert.Equal(t, "destination account not found", err.Error())
	assert.True(t, stderrors.Is(err, ErrAccountNotFound))
	assert.False(t, stderrors.Is(err, ErrTagNotFound))
}

func TestAs_ThroughFmtWrap(t *testing.T) {
	wrapped := fmt.Errorf("update: %w", ErrInvalidTransfer)

	var appErr *AppError
	assert.True(t, stderrors.As(wrapped, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
}
