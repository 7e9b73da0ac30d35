package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatError_Format(t *testing.T) {
	err := InvalidArgument("userId is required")
	assert.Equal(t, "[INVALID_ARGUMENT] userId is required", err.Error())

	wrapped := DispatchFailed(fmt.Errorf("gateway down"))
	assert.Equal(t, "[DISPATCH_FAILED] escalation dispatch failed: gateway down", wrapped.Error())
	assert.Equal(t, ErrCodeDispatchFailed, wrapped.GetCode())
}

func TestChatError_UnwrapsToCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	require.ErrorIs(t, StateUnavailable(cause), cause)
}
