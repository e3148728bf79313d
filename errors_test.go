package orecl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOreclErrorUnwrap(t *testing.T) {
	cause := errors.New("queue closed")
	err := newEnqueueFailedError("Context.FinalizeCalculation", cause)

	var oe *OreclError
	a := assert.New(t)
	a.True(errors.As(err, &oe))
	a.Equal(ErrKindEnqueueFailed, oe.Kind)
	a.ErrorIs(err, cause)
}

func TestIsKind(t *testing.T) {
	err := newBadIDError("Context.DisposeCalculation", "already disposed")
	assert.True(t, IsKind(err, ErrKindBadID))
	assert.False(t, IsKind(err, ErrKindBadState))
	assert.False(t, IsKind(errors.New("plain"), ErrKindBadID))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "NoDevice", ErrKindNoDevice.String())
	assert.Equal(t, "UnknownOpcode", ErrKindUnknownOpcode.String())
}
