package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	err := NewNotFound("sequence %q missing", "chr1")
	assert.True(t, errors.Is(err, NotFound))
	assert.False(t, errors.Is(err, GzipError))

	var fxErr *Error
	assert.True(t, errors.As(err, &fxErr))
	assert.Equal(t, CodeNotFound, fxErr.Code())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk exploded")
	err := WrapIoError(cause, "reading %s", "index.fxi")
	assert.True(t, errors.Is(err, IoError))

	var fxErr *Error
	require := assert.New(t)
	require.True(errors.As(err, &fxErr))
	require.Error(fxErr.Unwrap())
	require.Contains(err.Error(), "disk exploded")
}

func TestCodeStrings(t *testing.T) {
	assert.Equal(t, "NotFound", CodeNotFound.String())
	assert.Equal(t, "Unknown", Code(99).String())
}
