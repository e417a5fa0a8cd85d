package usecase

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsHTTPError(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", ErrEmptyCart)

	he, ok := AsHTTPError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	assert.Equal(t, "cart empty", he.Message)

	_, ok = AsHTTPError(assert.AnError)
	assert.False(t, ok)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrCheckoutFailed))
	assert.True(t, IsRetryable(fmt.Errorf("tx: %w", ErrCheckoutFailed)))
	assert.False(t, IsRetryable(ErrEmptyCart))
	assert.False(t, IsRetryable(ErrInternal))
	assert.False(t, IsRetryable(nil))
}

func TestHTTPError_Error(t *testing.T) {
	assert.Equal(t, "404: order not found", ErrOrderNotFound.Error())
}
