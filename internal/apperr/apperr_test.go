package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("classified errors report their kind", func(t *testing.T) {
		assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
		assert.Equal(t, KindNotFound, KindOf(NotFound("box not found")))
		assert.Equal(t, KindForbidden, KindOf(Forbidden("not yours")))
		assert.Equal(t, KindInvalidTransition, KindOf(InvalidTransition("already started")))
		assert.Equal(t, KindUnavailable, KindOf(Unavailable("AI not configured")))
	})

	t.Run("unclassified errors are internal", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
	})

	t.Run("wrapped domain errors survive fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("start box: %w", InvalidTransition("already started"))
		assert.Equal(t, KindInvalidTransition, KindOf(err))
		assert.True(t, Is(err, KindInvalidTransition))
	})
}

func TestInternalPreservesCause(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Internal("update box", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "constraint failed")
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestValidationFields(t *testing.T) {
	err := Validation("validation failed",
		FieldError{Field: "taskName", Message: "must not be empty"},
		FieldError{Field: "duration", Message: "must be between 1 and 480"},
	)

	var ae *Error
	require.ErrorAs(t, error(err), &ae)
	require.Len(t, ae.Fields, 2)
	assert.Equal(t, "taskName", ae.Fields[0].Field)
}
