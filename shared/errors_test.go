package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppErrorUnwrapsChain(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("loading record: %w", NewInternalError(cause, "Failed to load streak record"))

	appErr, ok := GetAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
	assert.ErrorIs(t, appErr, cause)
}

func TestGetAppErrorPlainError(t *testing.T) {
	_, ok := GetAppError(errors.New("boom"))
	assert.False(t, ok)
}

func TestNormalizeTier(t *testing.T) {
	assert.Equal(t, TierPremium, NormalizeTier(TierPremium))
	assert.Equal(t, TierBasic, NormalizeTier(TierBasic))
	assert.Equal(t, TierBasic, NormalizeTier("free"))
	assert.Equal(t, TierBasic, NormalizeTier(""))
}
