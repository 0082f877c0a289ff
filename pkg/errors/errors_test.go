package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound_WrappedError(t *testing.T) {
	err := fmt.Errorf("speaker 42 in recording 20240101120000: %w", ErrNotFound)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsConflict(err))
}

func TestIsRewriteFailed_WrappedError(t *testing.T) {
	err := fmt.Errorf("merge aborted: %w", ErrRewriteFailed)
	assert.True(t, IsRewriteFailed(err))
	assert.False(t, IsNotFound(err))
}

func TestIsPipelineBusy(t *testing.T) {
	assert.True(t, IsPipelineBusy(ErrPipelineBusy))
	assert.False(t, IsPipelineBusy(ErrConflict))
}

func TestSentinels_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrConflict, ErrValidation, ErrAlreadyExists,
		ErrInvalidState, ErrRewriteFailed, ErrPipelineBusy,
	}
	seen := make(map[string]bool)
	for _, s := range sentinels {
		assert.False(t, seen[s.Error()], "duplicate sentinel message: %s", s.Error())
		seen[s.Error()] = true
	}
}
