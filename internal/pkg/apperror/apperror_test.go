package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	t.Run("Sentinel Matching", func(t *testing.T) {
		sentinel := New(404, "thing not found")
		assert.ErrorIs(t, sentinel, sentinel)
		assert.Equal(t, "thing not found", sentinel.Error())
	})

	t.Run("Wrap Preserves Cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		wrapped := Wrap(cause, 500, "internal error")

		assert.ErrorIs(t, wrapped, cause)
		assert.Equal(t, "internal error", wrapped.Error())
	})
}
