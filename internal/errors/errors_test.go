package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adamancini/brewfile/internal/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrDeclarationConflict, "vim is already in Brewfile")
	assert.Equal(t, "[DECLARATION_CONFLICT] vim is already in Brewfile", err.Error())
	assert.Equal(t, errors.ErrDeclarationConflict, err.Code)
	assert.NotNil(t, err.Details)
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("exit status 1")
	err := errors.Wrap(base, errors.ErrCommandFailed, "brew tap foo/bar")
	require.NotNil(t, err)

	assert.Equal(t, "[COMMAND_FAILED] brew tap foo/bar: exit status 1", err.Error())
	assert.True(t, stderrors.Is(err, base))
	assert.Nil(t, errors.Wrap(nil, errors.ErrCommandFailed, "ignored"))
}

func TestIsErrorCode(t *testing.T) {
	err := fmt.Errorf("loading set: %w", errors.Newf(errors.ErrIncludeCycle, "%s includes itself", "a"))

	assert.True(t, errors.IsErrorCode(err, errors.ErrIncludeCycle))
	assert.False(t, errors.IsErrorCode(err, errors.ErrMissingFile))
	assert.Equal(t, errors.ErrIncludeCycle, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
}

func TestIsMatchesCode(t *testing.T) {
	err := errors.New(errors.ErrMissingFile, "no Brewfile").WithDetail("path", "/tmp/Brewfile")

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrMissingFile, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrConfigLoad, "other")))
	assert.Equal(t, "/tmp/Brewfile", errors.GetErrorDetails(err)["path"])
}
