package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAppError(t *testing.T) {
	wrapped := fmt.Errorf("loading invoice: %w", NewNotFoundError("Invoice"))
	appErr := GetAppError(wrapped)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Invoice not found", appErr.Message)

	plain := GetAppError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, plain.Code)
	assert.Equal(t, "boom", plain.Message)
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(NewUnprocessableError("Insufficient payment")))
	assert.False(t, IsAppError(errors.New("x")))
}
